package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/wager-engine/engine"
	"github.com/warp/wager-engine/games"
	"github.com/warp/wager-engine/matchfile"
	"github.com/warp/wager-engine/parser"
	"github.com/warp/wager-engine/wager"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wagerctl",
		Short: "Parse golf side bets and settle rounds",
		Long: `wagerctl reads side bets (Nassau, skins, birdies, eagles) from plain
text, settles rounds from match files and prints who pays whom.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("output", "o", "", "Output format: json or text")

	root.AddCommand(newParseCmd(), newDescribeCmd(), newSettleCmd())
	return root
}

// outputFormat returns the --output flag or the command's default.
func outputFormat(cmd *cobra.Command, fallback string) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	if format == "" {
		format = fallback
	}
	switch format {
	case "json", "text":
		return format, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or text)", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ─── parse ──────────────────────────────────────────────────────────────────

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse TEXT...",
		Short: "Read bets from free-form text",
		Long: `Read bets from free-form text such as "$5 Nassau, $2 skins" or "5/5/10".
When nothing is recognized the command exits with status 2: ask the
players again rather than settle a zero-stakes match.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, "json")
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	cfg := parser.Parse(text)
	if cfg == nil {
		return &exitError{code: 2, err: fmt.Errorf("%w in %q, ask again", wager.ErrUnparseableWager, text)}
	}

	if format == "text" {
		fmt.Fprintln(cmd.OutOrStdout(), parser.Describe(*cfg))
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), parser.ToJSON(*cfg))
}

// ─── describe ───────────────────────────────────────────────────────────────

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe -f CONFIG",
		Short: "Print the canonical description of a JSON wager config",
		Args:  cobra.NoArgs,
		RunE:  runDescribe,
	}
	cmd.Flags().StringP("file", "f", "", `Config file ("-" for stdin)`)
	cmd.MarkFlagRequired("file")
	return cmd
}

func runDescribe(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, "text")
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("file")

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := parser.ParseConfig(data)
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"description": parser.Describe(cfg),
			"bets":        parser.Phrases(cfg),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), parser.Describe(cfg))
	return nil
}

// ─── settle ─────────────────────────────────────────────────────────────────

func newSettleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle (-f MATCH | --scenario ID)",
		Short: "Settle a match file and print who pays whom",
		Long: `Settle a match described in a YAML or JSON match file, or one of the
embedded demo scenarios. Every enabled game is calculated and the
obligations are netted into the fewest payments the greedy order allows.`,
		Args: cobra.NoArgs,
		RunE: runSettle,
	}
	cmd.Flags().StringP("file", "f", "", "Match file (.yaml, .yml or .json)")
	cmd.Flags().String("scenario", "", "Embedded scenario ID")
	cmd.MarkFlagsMutuallyExclusive("file", "scenario")
	cmd.MarkFlagsOneRequired("file", "scenario")
	return cmd
}

func runSettle(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, "text")
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("file")
	scenario, _ := cmd.Flags().GetString("scenario")

	var f *matchfile.File
	if scenario != "" {
		f, err = matchfile.Scenario(scenario)
	} else {
		f, err = matchfile.Load(path)
	}
	if err != nil {
		return err
	}

	round, err := f.Build()
	if err != nil {
		return err
	}
	out, err := engine.Settle(round.Match.Config, engine.ForMatch(round.Match, round.Course))
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	return printSettlement(cmd.OutOrStdout(), round.Match, out)
}

func printSettlement(w io.Writer, m wager.Match, out engine.Settlement) error {
	fmt.Fprintln(w, m.Name)
	fmt.Fprintf(w, "Bets: %s\n\n", parser.Describe(out.Config))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if n := out.Nassau; n != nil {
		fmt.Fprintf(tw, "Nassau\tFront 9: %s\tBack 9: %s\tTotal: %s\n",
			segmentWinner(n.Front9), segmentWinner(n.Back9), segmentWinner(n.Total))
	}
	if s := out.Skins; s != nil {
		holes := make([]string, len(s.Skins))
		for i, sk := range s.Skins {
			holes[i] = fmt.Sprintf("%d %s", sk.Hole, sk.Winner)
		}
		fmt.Fprintf(tw, "Skins\t%d won\t%s\t\n", len(s.Skins), strings.Join(holes, ", "))
	}
	for _, bonus := range []struct {
		label string
		res   *games.BonusResult
	}{{"Birdies", out.Birdies}, {"Eagles", out.Eagles}} {
		if bonus.res == nil {
			continue
		}
		made := make([]string, len(bonus.res.Achievements))
		for i, a := range bonus.res.Achievements {
			made[i] = fmt.Sprintf("%s on %d", a.Player, a.Hole)
		}
		fmt.Fprintf(tw, "%s\t%d made\t%s\t\n", bonus.label, len(made), strings.Join(made, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(out.Consolidated) == 0 {
		fmt.Fprintln(w, "\nAll square, nobody pays.")
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tAMOUNT\tFOR")
	for _, p := range out.Consolidated {
		for _, payee := range p.Payees {
			fmt.Fprintf(tw, "%s\t%s\t$%s\t%s\n", p.From, payee.To, payee.Amount.StringFixed(2), payee.Reason)
		}
	}
	return tw.Flush()
}

func segmentWinner(s games.SegmentResult) string {
	if s.Tied() {
		return "halved"
	}
	return s.Winner
}

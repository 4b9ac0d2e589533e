/*
Package engine sequences the game calculators and the consolidator.

PURPOSE:
  Settle is the single entry point the API and CLI call. It runs each
  enabled game, concatenates their obligations and consolidates them. It
  has no algorithm of its own.

ORDER:
  Nassau, Skins, Birdies, Eagles (wager.SettlementOrder). Obligations are
  never reordered or filtered before consolidation, so the aggregated
  "Settlement for: ..." reasons are deterministic.

NASSAU SCORELINES:
  Callers may pass explicit team scorelines (already net of whatever
  handicap they chose). Otherwise they are derived from hole scores with
  the match's handicap mode. Nassau needs two teams: with fewer it is
  skipped, with more the first two in name order play.

SEE ALSO:
  - games/: Calculators
  - settlement/consolidate.go: Netting
*/
package engine

import (
	"fmt"

	"github.com/warp/wager-engine/games"
	"github.com/warp/wager-engine/settlement"
	"github.com/warp/wager-engine/wager"
)

// Match is everything the calculators need about a round.
// Players[i].Scores[h] is the score on Holes[h].
type Match struct {
	Players    []wager.MatchPlayer
	Holes      []wager.Hole
	Handicaps  wager.HandicapMode
	Scorelines []games.TeamScoreline
}

// ForMatch builds calculator input from a stored match and its course.
// Holes are taken in number order.
func ForMatch(m wager.Match, course wager.Course) Match {
	holes := append([]wager.Hole(nil), course.Holes...)
	wager.SortHoles(holes)
	return Match{Players: m.Players, Holes: holes, Handicaps: m.Handicaps}
}

// Settlement combines per-game results for display with the final plan.
// A nil game result means the game was not enabled.
type Settlement struct {
	Config       wager.WagerConfig            `json:"config"`
	Scorelines   []games.TeamScoreline        `json:"scorelines,omitempty"`
	Nassau       *games.NassauResult          `json:"nassau,omitempty"`
	Skins        *games.SkinsResult           `json:"skins,omitempty"`
	Birdies      *games.BonusResult           `json:"birdies,omitempty"`
	Eagles       *games.BonusResult           `json:"eagles,omitempty"`
	Obligations  []wager.PaymentObligation    `json:"obligations"`
	Balances     []wager.Balance              `json:"balances"`
	Consolidated wager.ConsolidatedSettlement `json:"consolidated"`
}

// Settle runs every enabled game and consolidates the obligations.
// The only errors are contract violations such as a negative stake.
func Settle(cfg wager.WagerConfig, m Match) (Settlement, error) {
	if err := cfg.Validate(); err != nil {
		return Settlement{}, err
	}

	out := Settlement{Config: cfg, Obligations: []wager.PaymentObligation{}}
	roster := wager.Roster(m.Players)
	scores := wager.ScoreTable(m.Players)

	for _, game := range cfg.ActiveGames() {
		switch game {
		case wager.GameNassau:
			lines := m.Scorelines
			if len(lines) == 0 {
				lines = games.TeamScorelines(m.Players, m.Holes, m.Handicaps)
			}
			out.Scorelines = lines
			if len(lines) < 2 {
				continue
			}
			res, err := games.CalculateNassau(lines[0], lines[1], cfg.NassauStakes(), roster)
			if err != nil {
				return Settlement{}, fmt.Errorf("nassau: %w", err)
			}
			out.Nassau = &res
			out.Obligations = append(out.Obligations, res.Payments...)

		case wager.GameSkins:
			res, err := games.CalculateSkins(scores, cfg.Amount(game), roster)
			if err != nil {
				return Settlement{}, fmt.Errorf("skins: %w", err)
			}
			out.Skins = &res
			out.Obligations = append(out.Obligations, res.Payments...)

		case wager.GameBirdies:
			res, err := games.CalculateBirdies(scores, wager.Pars(m.Holes), cfg.Amount(game), roster)
			if err != nil {
				return Settlement{}, fmt.Errorf("birdies: %w", err)
			}
			out.Birdies = &res
			out.Obligations = append(out.Obligations, res.Payments...)

		case wager.GameEagles:
			res, err := games.CalculateEagles(scores, wager.Pars(m.Holes), cfg.Amount(game), roster)
			if err != nil {
				return Settlement{}, fmt.Errorf("eagles: %w", err)
			}
			out.Eagles = &res
			out.Obligations = append(out.Obligations, res.Payments...)
		}
	}

	out.Balances = wager.NetBalances(out.Obligations)
	if out.Balances == nil {
		out.Balances = []wager.Balance{}
	}
	out.Consolidated = settlement.Consolidate(out.Obligations)
	return out, nil
}

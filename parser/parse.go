/*
Package parser turns informal bet descriptions into a wager.WagerConfig.

PURPOSE:
  Golfers describe side bets the way they say them on the first tee:
  "$5 Nassau, $2 skins, birdies $1", "5/5/10", "play for $20". Parse reads
  such text into a structured config. Text with no recognizable bet returns
  nil: the caller must ask again, never settle a zero-stakes match.

MATCHERS:
  1. nassau   a. shorthand  "5/5/10"          front / back / total stakes
              b. keyword    "$5 nassau", "nassau $5", "5 dollar nassau"
              c. segments   "$5 front", "$5 back", "$10 overall|total"
  2. skins    "$2 skins", "skins $2", "2 dollars per skin"
  3. birdies  "$1 birdies", "birdies $1", "$1 per birdie"
  4. eagles   "$5 eagles", "eagles $5", "$5 per eagle"
  5. fallback "bet $20", "play for $20", "wager $20", then a bare "$20".
              Only runs when nothing above matched; always a Nassau.

  The shorthand is read first. Every other pattern then binds left to
  right: the leftmost match among bets not yet bound wins, so a stake
  belongs to the keyword it is read with. In "birdies $1 skins $2" the
  $1 is the birdie stake even though it also sits before "skins".
  A keyword Nassau overrides segment stakes.

  Bound text is replaced with "|", so a number is never read twice and
  no later pattern can reach across it: in "5/5/10 skins 2" the skins
  stake is 2, not 10.

AMOUNTS:
  Whole dollars only. A zero amount is not a bet, but it still binds:
  in "$0 skins $2 birdies" skins is off and birdies is $2.

ROUND TRIP:
  Describe(cfg) renders the canonical description. Parsing it again gives
  an equivalent config for every config Parse can produce.

SEE ALSO:
  - describe.go: Canonical bet phrases
  - config.go: JSON configs
*/
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/wager"
)

// =============================================================================
// PATTERNS
// =============================================================================

var (
	nassauShorthand = regexp.MustCompile(`\$?(\d+)\s*/\s*\$?(\d+)\s*/\s*\$?(\d+)`)

	nassauKeyword = []*regexp.Regexp{
		regexp.MustCompile(`\$?(\d+)\s*(?:dollars?\s*)?nassau`),
		regexp.MustCompile(`nassau\s*(?:for\s*)?\$?(\d+)`),
	}

	nassauFront = segmentPatterns(`front(?:\s*(?:9|nine))?`)
	nassauBack  = segmentPatterns(`back(?:\s*(?:9|nine))?`)
	nassauTotal = segmentPatterns(`(?:overall|total)`)

	skinsPatterns   = gamePatterns(`skins?`)
	birdiesPatterns = gamePatterns(`bird(?:ie)?s?`)
	eaglesPatterns  = gamePatterns(`eagles?`)

	genericBet = []*regexp.Regexp{
		regexp.MustCompile(`(?:bet|play\s*for|wager(?:ing)?)\s*\$?(\d+)`),
		regexp.MustCompile(`\$(\d+)`),
	}
)

// gamePatterns accepts the amount before or after the keyword.
func gamePatterns(keyword string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`\$?(\d+)\s*(?:dollars?\s*)?(?:(?:per|a|an|each|for)\s+)?` + keyword + `\b`),
		regexp.MustCompile(keyword + `\b\s*(?:for\s*|at\s*)?\$?(\d+)`),
	}
}

// segmentPatterns requires a "$" when the amount follows the keyword so
// "front 9" is never read as a $9 bet.
func segmentPatterns(keyword string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`\$?(\d+)\s*(?:dollars?\s*)?(?:on\s+)?(?:the\s+)?` + keyword),
		regexp.MustCompile(keyword + `\s*(?:for\s*)?\$(\d+)`),
	}
}

// =============================================================================
// MATCHERS
// =============================================================================

// slot is one stake a pattern can bind.
type slot string

const (
	slotNassau  slot = "nassau"
	slotFront   slot = "front"
	slotBack    slot = "back"
	slotTotal   slot = "total"
	slotSkins   slot = "skins"
	slotBirdies slot = "birdies"
	slotEagles  slot = "eagles"
)

type binding struct {
	slot slot
	re   *regexp.Regexp
}

type matcher struct {
	name     string
	bindings []binding
}

func bind(to slot, patterns ...*regexp.Regexp) []binding {
	out := make([]binding, len(patterns))
	for i, re := range patterns {
		out[i] = binding{slot: to, re: re}
	}
	return out
}

// matchers break ties between matches at the same offset by order.
var matchers = []matcher{
	{name: "nassau", bindings: concat(
		bind(slotNassau, nassauKeyword...),
		bind(slotFront, nassauFront...),
		bind(slotBack, nassauBack...),
		bind(slotTotal, nassauTotal...),
	)},
	{name: "skins", bindings: bind(slotSkins, skinsPatterns...)},
	{name: "birdies", bindings: bind(slotBirdies, birdiesPatterns...)},
	{name: "eagles", bindings: bind(slotEagles, eaglesPatterns...)},
}

// fallback runs only when no matcher enabled a game.
var fallback = matcher{name: "generic-bet", bindings: bind(slotNassau, genericBet...)}

func concat(groups ...[]binding) []binding {
	var out []binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Parse reads a bet description. It returns nil when nothing in the text
// is a recognizable bet.
func Parse(text string) *wager.WagerConfig {
	s := newScanner(text)
	s.shorthand()
	for s.bindNext(matchers) {
	}
	if !s.anyBet() {
		s.bound = make(map[slot]int64)
		s.bindNext([]matcher{fallback})
	}
	if !s.anyBet() {
		return nil
	}

	cfg := s.config()
	return &cfg
}

// ParseStrict is Parse for callers that prefer an error.
func ParseStrict(text string) (wager.WagerConfig, error) {
	cfg := Parse(text)
	if cfg == nil {
		return wager.WagerConfig{}, wager.ErrUnparseableWager
	}
	return *cfg, nil
}

// Matchers lists matcher names in tie-break order, fallback last.
func Matchers() []string {
	names := make([]string, 0, len(matchers)+1)
	for _, m := range matchers {
		names = append(names, m.name)
	}
	return append(names, fallback.name)
}

// =============================================================================
// SCANNER
// =============================================================================

const consumed = "|"

type scanner struct {
	text  string
	bound map[slot]int64
	split *wager.NassauSplit
}

func newScanner(text string) *scanner {
	return &scanner{
		text:  strings.Join(strings.Fields(strings.ToLower(text)), " "),
		bound: make(map[slot]int64),
	}
}

// shorthand binds "N/N/N" ahead of every other pattern. An all-zero
// shorthand still claims the Nassau.
func (s *scanner) shorthand() {
	loc := nassauShorthand.FindStringSubmatchIndex(s.text)
	if loc == nil {
		return
	}
	v := s.consume(loc)
	s.bound[slotNassau] = 0
	if v[0] > 0 || v[1] > 0 || v[2] > 0 {
		s.split = &wager.NassauSplit{
			Front: decimal.NewFromInt(v[0]),
			Back:  decimal.NewFromInt(v[1]),
			Total: decimal.NewFromInt(v[2]),
		}
	}
}

// bindNext binds the leftmost match among slots not yet bound and reports
// whether anything matched.
func (s *scanner) bindNext(ms []matcher) bool {
	var (
		best slot
		loc  []int
	)
	for _, m := range ms {
		for _, b := range m.bindings {
			if _, done := s.bound[b.slot]; done {
				continue
			}
			l := b.re.FindStringSubmatchIndex(s.text)
			if l != nil && (loc == nil || l[0] < loc[0]) {
				best, loc = b.slot, l
			}
		}
	}
	if loc == nil {
		return false
	}
	s.bound[best] = s.consume(loc)[0]
	return true
}

// consume parses every group as a whole-dollar amount and blanks the
// match. Amounts too large to parse read as 0.
func (s *scanner) consume(loc []int) []int64 {
	values := make([]int64, 0, len(loc)/2-1)
	for i := 2; i < len(loc); i += 2 {
		n, err := strconv.ParseInt(s.text[loc[i]:loc[i+1]], 10, 64)
		if err != nil {
			n = 0
		}
		values = append(values, n)
	}
	s.text = s.text[:loc[0]] + strings.Repeat(consumed, loc[1]-loc[0]) + s.text[loc[1]:]
	return values
}

func (s *scanner) anyBet() bool {
	if s.split != nil {
		return true
	}
	for _, v := range s.bound {
		if v > 0 {
			return true
		}
	}
	return false
}

func (s *scanner) amounts() map[wager.Game]decimal.Decimal {
	out := make(map[wager.Game]decimal.Decimal)
	for sl, g := range map[slot]wager.Game{
		slotSkins:   wager.GameSkins,
		slotBirdies: wager.GameBirdies,
		slotEagles:  wager.GameEagles,
	} {
		if v := s.bound[sl]; v > 0 {
			out[g] = decimal.NewFromInt(v)
		}
	}

	switch {
	case s.split != nil:
		out[wager.GameNassau] = s.split.Front
	case s.bound[slotNassau] > 0:
		out[wager.GameNassau] = decimal.NewFromInt(s.bound[slotNassau])
	case s.bound[slotFront] > 0 || s.bound[slotBack] > 0 || s.bound[slotTotal] > 0:
		s.split = &wager.NassauSplit{
			Front: decimal.NewFromInt(s.bound[slotFront]),
			Back:  decimal.NewFromInt(s.bound[slotBack]),
			Total: decimal.NewFromInt(s.bound[slotTotal]),
		}
		out[wager.GameNassau] = s.split.Max()
	}
	return out
}

func (s *scanner) config() wager.WagerConfig {
	amounts := s.amounts()
	cfg := wager.WagerConfig{Amounts: make(map[wager.Game]decimal.Decimal, len(amounts))}
	for _, g := range wager.SettlementOrder {
		if amt, ok := amounts[g]; ok {
			cfg.Games = append(cfg.Games, g)
			cfg.Amounts[g] = amt
		}
	}
	cfg.NassauSplit = s.split
	cfg.Bets = Phrases(cfg)
	return cfg
}

/*
Package wager provides the data model of the wager settlement engine.

PURPOSE:
  This package contains the types every other package speaks: players,
  holes, wager configurations, raw payment obligations and the consolidated
  settlement. It has no knowledge of how bets are parsed or how a specific
  game pays out; those live in the parser and games packages.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal.Decimal dollar amounts, never float64
  - PlayerRef: a player's name and team. Names are the join key for money
  - Hole: number, par and handicap rank (1 = hardest)
  - WagerConfig: which games are on and for how much
  - PaymentObligation: one raw "A owes B $N for X" produced by a game
  - ConsolidatedSettlement: the netted plan, one entry per paying player

DESIGN PRINCIPLES:
  1. Immutability: a WagerConfig is built once per match setup. Re-parsing
     a description produces a new config, it never edits the old one.
  2. Precision: decimal.Decimal avoids floating-point drift in balances.
  3. Recompute, don't update: obligations are produced fresh from the
     current hole scores every time a settlement is requested.

USAGE:
  cfg := wager.WagerConfig{
      Games:   []wager.Game{wager.GameNassau},
      Amounts: map[wager.Game]decimal.Decimal{wager.GameNassau: wager.Dollars(5)},
  }
  stakes := cfg.NassauStakes()

SEE ALSO:
  - game.go: Game kinds and settlement order
  - ledger.go: Net balances from obligations
  - errors.go: Sentinel and structured errors
*/
package wager

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

var tolerance = decimal.New(1, -2)

// Tolerance returns the smallest balance the consolidator still treats as
// owed: one cent.
func Tolerance() decimal.Decimal {
	return tolerance
}

// Dollars returns a whole-dollar amount.
func Dollars(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// IsNegligible reports whether |d| is below one cent.
func IsNegligible(d decimal.Decimal) bool {
	return d.Abs().LessThan(tolerance)
}

// =============================================================================
// PLAYERS AND HOLES
// =============================================================================

// PlayerRef identifies a player within one match.
// Two players in the same match must not share a Name.
type PlayerRef struct {
	Name string `json:"name" yaml:"name"`
	Team string `json:"team" yaml:"team"`
}

// Hole is one hole of a course.
type Hole struct {
	Number       int `json:"number" yaml:"number"`
	Par          int `json:"par" yaml:"par"`
	HandicapRank int `json:"handicap_rank" yaml:"handicap_rank"`
}

// Pars returns the par of each hole, in the order given.
func Pars(holes []Hole) []int {
	pars := make([]int, len(holes))
	for i, h := range holes {
		pars[i] = h.Par
	}
	return pars
}

// Tee is a set of tee markers with its course rating and slope.
type Tee struct {
	Color  string  `json:"color" yaml:"color"`
	Rating float64 `json:"rating" yaml:"rating"`
	Slope  int     `json:"slope" yaml:"slope"`
}

// =============================================================================
// WAGER CONFIG
// =============================================================================

// NassauSplit holds separate stakes for the three Nassau segments.
type NassauSplit struct {
	Front decimal.Decimal `json:"front"`
	Back  decimal.Decimal `json:"back"`
	Total decimal.Decimal `json:"total"`
}

// Uniform returns a split with the same stake on every segment.
func Uniform(stake decimal.Decimal) NassauSplit {
	return NassauSplit{Front: stake, Back: stake, Total: stake}
}

// Max returns the largest of the three segment stakes.
func (s NassauSplit) Max() decimal.Decimal {
	return decimal.Max(s.Front, s.Back, s.Total)
}

// Equal compares the three stakes numerically.
func (s NassauSplit) Equal(o NassauSplit) bool {
	return s.Front.Equal(o.Front) && s.Back.Equal(o.Back) && s.Total.Equal(o.Total)
}

// WagerConfig describes the side bets of a match.
//
// INVARIANTS:
//   - A game in Games is only active when its amount is positive;
//     a zero or missing amount disables it.
//   - Amounts are never negative.
//   - When NassauSplit is set, Amounts[GameNassau] is kept for display only
//     (front stake for the N/N/N shorthand, the largest segment otherwise).
type WagerConfig struct {
	Games       []Game                   `json:"games"`
	Amounts     map[Game]decimal.Decimal `json:"amounts"`
	NassauSplit *NassauSplit             `json:"nassau_split,omitempty"`

	// Bets is the human-readable description of each recognized bet.
	// Rendering aid only; no calculation reads it.
	Bets []string `json:"bets,omitempty"`
}

// Amount returns the unit stake for a game, zero when absent.
func (c WagerConfig) Amount(g Game) decimal.Decimal {
	if c.Amounts == nil {
		return decimal.Zero
	}
	return c.Amounts[g]
}

// Listed reports whether g appears in Games.
func (c WagerConfig) Listed(g Game) bool {
	for _, x := range c.Games {
		if x == g {
			return true
		}
	}
	return false
}

// Enabled reports whether g is listed and carries a positive stake.
func (c WagerConfig) Enabled(g Game) bool {
	if !c.Listed(g) {
		return false
	}
	if g == GameNassau && c.NassauSplit != nil {
		return c.NassauSplit.Max().IsPositive()
	}
	return c.Amount(g).IsPositive()
}

// ActiveGames returns the enabled games in settlement order.
func (c WagerConfig) ActiveGames() []Game {
	var active []Game
	for _, g := range SettlementOrder {
		if c.Enabled(g) {
			active = append(active, g)
		}
	}
	return active
}

// NassauStakes resolves the per-segment stakes.
// Without an explicit split every segment uses the uniform Nassau amount.
func (c WagerConfig) NassauStakes() NassauSplit {
	if c.NassauSplit != nil {
		return *c.NassauSplit
	}
	return Uniform(c.Amount(GameNassau))
}

// Validate checks the config invariants.
func (c WagerConfig) Validate() error {
	for g, amt := range c.Amounts {
		if !g.Valid() {
			return &ConfigError{Field: "amounts", Message: "unknown game " + string(g)}
		}
		if amt.IsNegative() {
			return &StakeError{Game: g, Amount: amt}
		}
	}
	for _, g := range c.Games {
		if !g.Valid() {
			return &ConfigError{Field: "games", Message: "unknown game " + string(g)}
		}
	}
	if s := c.NassauSplit; s != nil {
		for _, v := range []decimal.Decimal{s.Front, s.Back, s.Total} {
			if v.IsNegative() {
				return &StakeError{Game: GameNassau, Amount: v}
			}
		}
	}
	return nil
}

// Equivalent reports whether two configs settle identically.
// Bets text is ignored.
func (c WagerConfig) Equivalent(o WagerConfig) bool {
	a, b := c.ActiveGames(), o.ActiveGames()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
		if !c.Amount(a[i]).Equal(o.Amount(b[i])) {
			return false
		}
	}
	if c.Enabled(GameNassau) && !c.NassauStakes().Equal(o.NassauStakes()) {
		return false
	}
	return true
}

// =============================================================================
// OBLIGATIONS AND SETTLEMENT
// =============================================================================

// PaymentObligation is one raw debt produced by a game.
// From != To and Amount > 0 always.
type PaymentObligation struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// Payee is one creditor a debtor pays in a consolidated settlement.
type Payee struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// ConsolidatedPayment groups every payment one debtor makes.
type ConsolidatedPayment struct {
	From   string  `json:"from"`
	Payees []Payee `json:"payees"`
}

// ConsolidatedSettlement is the netted payment plan, in matching order.
type ConsolidatedSettlement []ConsolidatedPayment

// Transfers returns the number of individual payments in the plan.
func (s ConsolidatedSettlement) Transfers() int {
	n := 0
	for _, p := range s {
		n += len(p.Payees)
	}
	return n
}

// Flows returns what each player receives minus what they pay under the plan.
func (s ConsolidatedSettlement) Flows() map[string]decimal.Decimal {
	flows := make(map[string]decimal.Decimal)
	for _, p := range s {
		for _, payee := range p.Payees {
			flows[p.From] = flows[p.From].Sub(payee.Amount)
			flows[payee.To] = flows[payee.To].Add(payee.Amount)
		}
	}
	return flows
}

// =============================================================================
// MATCH RECORDS - persisted by a MatchStore
// =============================================================================

// Course is a golf course with its holes and tees.
type Course struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Holes []Hole `json:"holes"`
	Tees  []Tee  `json:"tees"`
}

// Tee returns the tee with the given color, or nil.
func (c Course) Tee(color string) *Tee {
	for i := range c.Tees {
		if c.Tees[i].Color == color {
			return &c.Tees[i]
		}
	}
	return nil
}

// SortHoles orders holes by number.
func SortHoles(holes []Hole) {
	sort.Slice(holes, func(i, j int) bool { return holes[i].Number < holes[j].Number })
}

// ValidateHoles checks a course layout: numbers 1..18 without repeats,
// positive pars, and handicap ranks 1..18 without repeats. A rank of 0
// marks an unrated hole, which never receives strokes.
func ValidateHoles(holes []Hole) error {
	if len(holes) == 0 {
		return &ConfigError{Field: "holes", Message: "at least one hole is required"}
	}
	numbers := make(map[int]bool, len(holes))
	ranks := make(map[int]int, len(holes))
	for _, h := range holes {
		if h.Number < 1 || h.Number > 18 || numbers[h.Number] {
			return &ConfigError{Field: "holes", Message: fmt.Sprintf("bad or repeated hole number %d", h.Number)}
		}
		numbers[h.Number] = true
		if h.Par < 1 {
			return &ConfigError{Field: "holes", Message: fmt.Sprintf("hole %d needs a positive par", h.Number)}
		}
		if h.HandicapRank == 0 {
			continue
		}
		if h.HandicapRank < 0 || h.HandicapRank > 18 {
			return &ConfigError{Field: "holes", Message: fmt.Sprintf("hole %d has handicap rank %d, want 1..18", h.Number, h.HandicapRank)}
		}
		if other, ok := ranks[h.HandicapRank]; ok {
			return &ConfigError{Field: "holes", Message: fmt.Sprintf("holes %d and %d share handicap rank %d", other, h.Number, h.HandicapRank)}
		}
		ranks[h.HandicapRank] = h.Number
	}
	return nil
}

// Player is a registered golfer.
type Player struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	HandicapIndex float64 `json:"handicap_index"`
}

// MatchPlayer is a player's participation in one match.
// Scores[i] holds the strokes on hole i+1; zero means not yet played.
type MatchPlayer struct {
	PlayerRef
	Tee            string  `json:"tee,omitempty"`
	HandicapIndex  float64 `json:"handicap_index"`
	CourseHandicap int     `json:"course_handicap"`
	Scores         []int   `json:"scores"`
}

// Roster returns the PlayerRefs of the given players, in order.
func Roster(players []MatchPlayer) []PlayerRef {
	refs := make([]PlayerRef, len(players))
	for i, p := range players {
		refs[i] = p.PlayerRef
	}
	return refs
}

// ScoreTable returns the player × hole score table, in roster order.
func ScoreTable(players []MatchPlayer) [][]int {
	table := make([][]int, len(players))
	for i, p := range players {
		table[i] = p.Scores
	}
	return table
}

// HandicapMode selects how handicaps apply to team scorelines.
type HandicapMode string

const (
	HandicapNone         HandicapMode = "none"
	HandicapFull         HandicapMode = "full"
	HandicapThreeQuarter HandicapMode = "three_quarter"
	HandicapHalf         HandicapMode = "half"
)

// Valid reports whether m is a known mode. The empty mode means none.
func (m HandicapMode) Valid() bool {
	switch m {
	case "", HandicapNone, HandicapFull, HandicapThreeQuarter, HandicapHalf:
		return true
	}
	return false
}

// Match is a stored match.
type Match struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CourseID  string        `json:"course_id"`
	WagerText string        `json:"wager_text,omitempty"`
	Config    WagerConfig   `json:"config"`
	Handicaps HandicapMode  `json:"handicaps"`
	Players   []MatchPlayer `json:"players"`
	CreatedAt string        `json:"created_at"`
}

// Player returns the match player with the given name, or nil.
func (m *Match) Player(name string) *MatchPlayer {
	for i := range m.Players {
		if m.Players[i].Name == name {
			return &m.Players[i]
		}
	}
	return nil
}

// ValidateRoster rejects empty and duplicate player names and unknown
// handicap modes.
func (m Match) ValidateRoster() error {
	if !m.Handicaps.Valid() {
		return &ConfigError{Field: "handicaps", Message: "unknown mode " + string(m.Handicaps)}
	}
	seen := make(map[string]bool, len(m.Players))
	for _, p := range m.Players {
		if p.Name == "" {
			return &ConfigError{Field: "players", Message: "player name is required"}
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// SettlementRun is one stored settlement computation. Runs are append-only.
type SettlementRun struct {
	ID           string                 `json:"id"`
	MatchID      string                 `json:"match_id"`
	Obligations  []PaymentObligation    `json:"obligations"`
	Consolidated ConsolidatedSettlement `json:"consolidated"`
	CreatedAt    string                 `json:"created_at"`
}

// SetScore records strokes on a 1-based hole. Zero clears the score.
func (m *Match) SetScore(player string, hole, strokes int) error {
	p := m.Player(player)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
	}
	if hole < 1 || hole > len(p.Scores) {
		return &ScoreError{Player: player, Hole: hole, Strokes: strokes, Reason: "hole out of range"}
	}
	if strokes < 0 {
		return &ScoreError{Player: player, Hole: hole, Strokes: strokes, Reason: "strokes cannot be negative"}
	}
	p.Scores[hole-1] = strokes
	return nil
}

// Clone returns a deep copy of the match.
func (m Match) Clone() Match {
	c := m
	c.Config = m.Config.Clone()
	c.Players = make([]MatchPlayer, len(m.Players))
	for i, p := range m.Players {
		p.Scores = append([]int(nil), p.Scores...)
		c.Players[i] = p
	}
	return c
}

// Clone returns a deep copy of the config.
func (c WagerConfig) Clone() WagerConfig {
	out := WagerConfig{
		Games: append([]Game(nil), c.Games...),
		Bets:  append([]string(nil), c.Bets...),
	}
	if c.Amounts != nil {
		out.Amounts = make(map[Game]decimal.Decimal, len(c.Amounts))
		for g, a := range c.Amounts {
			out.Amounts[g] = a
		}
	}
	if c.NassauSplit != nil {
		s := *c.NassauSplit
		out.NassauSplit = &s
	}
	return out
}

/*
Package games implements the payout calculators for golf side games.

PURPOSE:
  Each calculator takes hole scores (and, for Nassau, team scorelines) plus
  a stake and returns the game's results together with the raw payment
  obligations it creates. Calculators know nothing about parsing or
  netting; the engine package sequences them and hands their obligations
  to the settlement consolidator.

GAMES:
  nassau.go:  Front 9 / Back 9 / Total Match, team against team
  skins.go:   One skin per hole to a unique low score, ties void the hole
  bonus.go:   Birdies and eagles, paid by every other player

SCORES:
  A score table is player × hole. Zero means the hole has not been played
  and is never a valid golf score.

DEGENERATE INPUT:
  Empty rosters or score tables whose shape doesn't match the roster are
  caller bugs. Calculators return an empty result for them instead of
  failing: "no settleable event occurred". The only error a calculator
  returns is a negative stake.

SEE ALSO:
  - scorecard.go (this file): Totals, handicaps and team scorelines
  - engine/settle.go: Orchestration
*/
package games

import (
	"fmt"
	"math"
	"sort"

	"github.com/warp/wager-engine/wager"
)

// =============================================================================
// TOTALS
// =============================================================================

// Totals are stroke totals over the two nines and the round.
type Totals struct {
	Front9 int `json:"front9"`
	Back9  int `json:"back9"`
	Total  int `json:"total"`
}

// HoleTotals sums holes 1-9 and 10-18. Unplayed holes count as zero.
func HoleTotals(scores []int) Totals {
	var t Totals
	for i, s := range scores {
		if s <= 0 {
			continue
		}
		switch {
		case i < 9:
			t.Front9 += s
		case i < 18:
			t.Back9 += s
		}
	}
	t.Total = t.Front9 + t.Back9
	return t
}

// FormatToPar renders a score relative to par: "E", "+3", "-2".
func FormatToPar(score, par int) string {
	diff := score - par
	switch {
	case diff == 0:
		return "E"
	case diff > 0:
		return fmt.Sprintf("+%d", diff)
	default:
		return fmt.Sprintf("%d", diff)
	}
}

// =============================================================================
// HANDICAPS
// =============================================================================

// CourseHandicap converts a handicap index for the given tee:
// round(index × slope / 113 + (rating − 72)). Unknown tees give 0.
func CourseHandicap(index float64, tee *wager.Tee) int {
	if tee == nil {
		return 0
	}
	return int(math.Round(index*(float64(tee.Slope)/113) + (tee.Rating - 72)))
}

// Allowance applies the handicap mode to a course handicap.
func Allowance(courseHandicap int, mode wager.HandicapMode) int {
	switch mode {
	case wager.HandicapFull:
		return courseHandicap
	case wager.HandicapThreeQuarter:
		return int(math.Round(float64(courseHandicap) * 0.75))
	case wager.HandicapHalf:
		return int(math.Round(float64(courseHandicap) * 0.5))
	default:
		return 0
	}
}

// StrokesOnHole returns the handicap strokes a player receives on a hole of
// the given rank (1 = hardest). Plus handicaps give strokes back on the
// easiest holes and return a negative count.
func StrokesOnHole(handicap, rank int) int {
	if rank < 1 {
		return 0
	}
	if handicap < 0 {
		if rank > 18+handicap {
			return -1
		}
		return 0
	}
	strokes := handicap / 18
	if rank <= handicap%18 {
		strokes++
	}
	return strokes
}

// NetScores subtracts handicap strokes hole by hole.
// holes[i] describes scores[i]; unplayed holes stay zero.
func NetScores(scores []int, holes []wager.Hole, handicap int) []int {
	net := make([]int, len(scores))
	for i, s := range scores {
		if s <= 0 {
			continue
		}
		if i < len(holes) {
			s -= StrokesOnHole(handicap, holes[i].HandicapRank)
		}
		net[i] = s
	}
	return net
}

// =============================================================================
// TEAM SCORELINES
// =============================================================================

// TeamScoreline is a team's stroke totals, already net of any handicap
// adjustment the caller chose to apply.
type TeamScoreline struct {
	Team string `json:"team"`
	Totals
}

// TeamScorelines sums every team's player scores by nine.
// Teams are returned in lexicographic order.
func TeamScorelines(players []wager.MatchPlayer, holes []wager.Hole, mode wager.HandicapMode) []TeamScoreline {
	byTeam := make(map[string]*TeamScoreline)
	var teams []string
	for _, p := range players {
		line, ok := byTeam[p.Team]
		if !ok {
			line = &TeamScoreline{Team: p.Team}
			byTeam[p.Team] = line
			teams = append(teams, p.Team)
		}
		scores := p.Scores
		if h := Allowance(p.CourseHandicap, mode); h != 0 {
			scores = NetScores(scores, holes, h)
		}
		t := HoleTotals(scores)
		line.Front9 += t.Front9
		line.Back9 += t.Back9
		line.Total += t.Total
	}

	sort.Strings(teams)
	result := make([]TeamScoreline, len(teams))
	for i, team := range teams {
		result[i] = *byTeam[team]
	}
	return result
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// wellFormed reports whether the score table has one row per roster entry
// and every row the same, non-zero length.
func wellFormed(scores [][]int, roster []wager.PlayerRef) bool {
	if len(roster) == 0 || len(scores) != len(roster) {
		return false
	}
	holes := len(scores[0])
	if holes == 0 {
		return false
	}
	for _, row := range scores {
		if len(row) != holes {
			return false
		}
	}
	return true
}

/*
nassau.go - Nassau: three team bets settled independently

RULES:
  Front 9, Back 9 and Total Match are separate bets. For each segment the
  team with the strictly lower stroke total wins the segment stake. A tie
  produces no winner and no payment for that segment.

PAIRING:
  Losing-team player i pays winning-team player i. When team sizes differ
  the unpaired players on the larger team neither pay nor receive. This is
  a known limitation kept as-is: a segment paid by a 3-player team to a
  2-player team moves 2 × stake, not 3 × stake.

EXAMPLE:
  Team A: 40 / 42 / 82, Team B: 44 / 39 / 83, $5 each way
  Front 9:     A wins  -> B1 pays A1 $5, B2 pays A2 $5
  Back 9:      B wins  -> A1 pays B1 $5, A2 pays B2 $5
  Total Match: A wins  -> B1 pays A1 $5, B2 pays A2 $5
  TotalPayout = $15
*/
package games

import (
	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/wager"
)

// Segment reasons, used verbatim in obligations.
const (
	ReasonFront9 = "Front 9"
	ReasonBack9  = "Back 9"
	ReasonTotal  = "Total Match"
)

// SegmentResult is the outcome of one Nassau segment.
// Winner is the winning team, empty on a tie.
type SegmentResult struct {
	Winner string          `json:"winner"`
	Amount decimal.Decimal `json:"amount"`
}

// Tied reports whether the segment was halved.
func (s SegmentResult) Tied() bool { return s.Winner == "" }

// NassauResult holds the three segments and the payments they produce.
type NassauResult struct {
	Front9      SegmentResult             `json:"front9"`
	Back9       SegmentResult             `json:"back9"`
	Total       SegmentResult             `json:"total"`
	TotalPayout decimal.Decimal           `json:"total_payout"`
	Payments    []wager.PaymentObligation `json:"payments"`
}

// CalculateNassau settles a Nassau between two teams.
// stakes carries the front, back and total stakes; use wager.Uniform for a
// single amount each way.
func CalculateNassau(teamA, teamB TeamScoreline, stakes wager.NassauSplit, roster []wager.PlayerRef) (NassauResult, error) {
	for _, s := range []decimal.Decimal{stakes.Front, stakes.Back, stakes.Total} {
		if s.IsNegative() {
			return NassauResult{}, &wager.StakeError{Game: wager.GameNassau, Amount: s}
		}
	}

	result := NassauResult{
		TotalPayout: decimal.Zero,
		Payments:    []wager.PaymentObligation{},
	}

	var playersA, playersB []wager.PlayerRef
	for _, p := range roster {
		switch p.Team {
		case teamA.Team:
			playersA = append(playersA, p)
		case teamB.Team:
			playersB = append(playersB, p)
		}
	}

	segment := func(scoreA, scoreB int, stake decimal.Decimal, reason string) SegmentResult {
		var winners, losers []wager.PlayerRef
		var seg SegmentResult
		switch {
		case scoreA < scoreB:
			seg = SegmentResult{Winner: teamA.Team, Amount: stake}
			winners, losers = playersA, playersB
		case scoreB < scoreA:
			seg = SegmentResult{Winner: teamB.Team, Amount: stake}
			winners, losers = playersB, playersA
		default:
			return SegmentResult{Amount: decimal.Zero}
		}

		result.TotalPayout = result.TotalPayout.Add(stake)
		if !stake.IsPositive() {
			return seg
		}
		for i, loser := range losers {
			if i >= len(winners) {
				break
			}
			result.Payments = append(result.Payments, wager.PaymentObligation{
				From:   loser.Name,
				To:     winners[i].Name,
				Amount: stake,
				Reason: reason,
			})
		}
		return seg
	}

	result.Front9 = segment(teamA.Front9, teamB.Front9, stakes.Front, ReasonFront9)
	result.Back9 = segment(teamA.Back9, teamB.Back9, stakes.Back, ReasonBack9)
	result.Total = segment(teamA.Total, teamB.Total, stakes.Total, ReasonTotal)
	return result, nil
}

package games

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/wager"
)

// Achievement is a birdie or eagle made by one player on one hole.
// Amount is the player's total take, stake × (players − 1).
type Achievement struct {
	Hole   int             `json:"hole"`
	Player string          `json:"player"`
	Amount decimal.Decimal `json:"amount"`
}

// BonusResult lists the achievements and the payments they produce.
type BonusResult struct {
	Achievements []Achievement             `json:"achievements"`
	Payments     []wager.PaymentObligation `json:"payments"`
}

// IsBirdie reports a score strictly under par.
func IsBirdie(score, par int) bool { return score > 0 && score < par }

// IsEagle reports a score two or more under par.
// Every eagle is also a birdie; the two games are separate pots.
func IsEagle(score, par int) bool { return score > 0 && score <= par-2 }

// CalculateBirdies pays stake from every other player for each birdie.
func CalculateBirdies(scores [][]int, pars []int, stake decimal.Decimal, roster []wager.PlayerRef) (BonusResult, error) {
	return calculateBonus(wager.GameBirdies, "Birdie", IsBirdie, scores, pars, stake, roster)
}

// CalculateEagles pays stake from every other player for each eagle.
func CalculateEagles(scores [][]int, pars []int, stake decimal.Decimal, roster []wager.PlayerRef) (BonusResult, error) {
	return calculateBonus(wager.GameEagles, "Eagle", IsEagle, scores, pars, stake, roster)
}

func calculateBonus(
	game wager.Game,
	label string,
	qualifies func(score, par int) bool,
	scores [][]int,
	pars []int,
	stake decimal.Decimal,
	roster []wager.PlayerRef,
) (BonusResult, error) {
	if stake.IsNegative() {
		return BonusResult{}, &wager.StakeError{Game: game, Amount: stake}
	}

	result := BonusResult{Achievements: []Achievement{}, Payments: []wager.PaymentObligation{}}
	if !wellFormed(scores, roster) || len(pars) < len(scores[0]) {
		return result, nil
	}

	pot := stake.Mul(decimal.NewFromInt(int64(len(roster) - 1)))
	for playerIndex, row := range scores {
		actor := roster[playerIndex].Name
		for hole, score := range row {
			if !qualifies(score, pars[hole]) {
				continue
			}
			number := hole + 1
			result.Achievements = append(result.Achievements, Achievement{Hole: number, Player: actor, Amount: pot})

			if !stake.IsPositive() {
				continue
			}
			reason := fmt.Sprintf("%s on hole %d", label, number)
			for i, p := range roster {
				if i == playerIndex {
					continue
				}
				result.Payments = append(result.Payments, wager.PaymentObligation{
					From:   p.Name,
					To:     actor,
					Amount: stake,
					Reason: reason,
				})
			}
		}
	}
	return result, nil
}

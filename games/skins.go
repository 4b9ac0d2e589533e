package games

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/wager"
)

// Skin is a hole won outright. Amount is the winner's total take,
// stake × (players − 1).
type Skin struct {
	Hole   int             `json:"hole"`
	Winner string          `json:"winner"`
	Amount decimal.Decimal `json:"amount"`
}

// SkinsResult lists the skins won and the payments they produce.
type SkinsResult struct {
	Skins    []Skin                    `json:"skins"`
	Payments []wager.PaymentObligation `json:"payments"`
}

// SkinReason is the obligation reason for a skin.
func SkinReason(hole int) string {
	return fmt.Sprintf("Skin on hole %d", hole)
}

// CalculateSkins awards one skin per hole to a unique lowest score.
//
// A tie for the lowest score voids the hole; nothing carries over. A hole
// is only contested once every player has a score on it.
func CalculateSkins(scores [][]int, stake decimal.Decimal, roster []wager.PlayerRef) (SkinsResult, error) {
	if stake.IsNegative() {
		return SkinsResult{}, &wager.StakeError{Game: wager.GameSkins, Amount: stake}
	}

	result := SkinsResult{Skins: []Skin{}, Payments: []wager.PaymentObligation{}}
	if !wellFormed(scores, roster) {
		return result, nil
	}

	pot := stake.Mul(decimal.NewFromInt(int64(len(roster) - 1)))
	for hole := range scores[0] {
		winner, ok := uniqueLow(scores, hole)
		if !ok {
			continue
		}
		number := hole + 1
		result.Skins = append(result.Skins, Skin{Hole: number, Winner: roster[winner].Name, Amount: pot})

		if !stake.IsPositive() {
			continue
		}
		for i, p := range roster {
			if i == winner {
				continue
			}
			result.Payments = append(result.Payments, wager.PaymentObligation{
				From:   p.Name,
				To:     roster[winner].Name,
				Amount: stake,
				Reason: SkinReason(number),
			})
		}
	}
	return result, nil
}

// uniqueLow returns the index of the single player holding the lowest score
// on a hole. It fails on ties and on holes not everyone has played.
func uniqueLow(scores [][]int, hole int) (int, bool) {
	low, winner, count := 0, -1, 0
	for i, row := range scores {
		s := row[hole]
		if s <= 0 {
			return -1, false
		}
		switch {
		case winner < 0 || s < low:
			low, winner, count = s, i, 1
		case s == low:
			count++
		}
	}
	return winner, count == 1
}

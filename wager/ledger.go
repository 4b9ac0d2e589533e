/*
ledger.go - Net balances derived from raw obligations

PURPOSE:
  A player's net balance is everything owed to them minus everything they
  owe, across all raw obligations regardless of which game produced them.
  Like a transaction ledger, the balance is never stored: it is replayed
  from the obligations every time.

EXAMPLE:
  B1 owes A1 $5 (Front 9)
  A1 owes B1 $5 (Back 9)
  B1 owes A1 $5 (Total Match)

  A1: +5 -5 +5 = +5 (creditor)
  B1: -5 +5 -5 = -5 (debtor)

SEE ALSO:
  - settlement/consolidate.go: Matches creditors against debtors
*/
package wager

import "github.com/shopspring/decimal"

// Balance is a player's net position across all obligations.
type Balance struct {
	Player string          `json:"player"`
	Net    decimal.Decimal `json:"net"`
}

// IsCreditor reports whether the player is owed money.
func (b Balance) IsCreditor() bool { return b.Net.IsPositive() }

// IsDebtor reports whether the player owes money.
func (b Balance) IsDebtor() bool { return b.Net.IsNegative() }

// NetBalances replays obligations into one balance per player.
// Players appear in the order they are first mentioned.
func NetBalances(obligations []PaymentObligation) []Balance {
	index := make(map[string]int)
	var balances []Balance

	entry := func(name string) *Balance {
		i, ok := index[name]
		if !ok {
			i = len(balances)
			index[name] = i
			balances = append(balances, Balance{Player: name, Net: decimal.Zero})
		}
		return &balances[i]
	}

	for _, o := range obligations {
		from := entry(o.From)
		from.Net = from.Net.Sub(o.Amount)
		to := entry(o.To)
		to.Net = to.Net.Add(o.Amount)
	}
	return balances
}

// TotalAmount sums the amounts of the given obligations.
func TotalAmount(obligations []PaymentObligation) decimal.Decimal {
	total := decimal.Zero
	for _, o := range obligations {
		total = total.Add(o.Amount)
	}
	return total
}

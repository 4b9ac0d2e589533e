/*
Package settlement collapses raw payment obligations into a netted plan.

PURPOSE:
  A round with a Nassau, skins and birdies can produce dozens of pairwise
  obligations, many in opposite directions between the same two players.
  Consolidate nets every player to a single balance and pairs debtors with
  creditors so each player makes as few payments as the greedy order allows.

ALGORITHM (greedy, largest-first):
  1. Net balance per player across ALL obligations, whatever the game
  2. Creditors: balance > 0, sorted descending
     Debtors:   balance < 0, sorted ascending (most negative first)
     Equal balances are ordered by player name
  3. Two cursors. Each step pays min(creditor, -debtor) from the current
     debtor to the current creditor, then advances every cursor whose
     balance is within 0.01 of zero (both on an exact match)
  4. Payments are grouped per debtor, one payee per creditor
  5. Each payee's reason aggregates the distinct reasons of the debtor's
     RAW obligations: "Settlement for: Front 9, Skin on hole 4"

NOT OPTIMAL:
  The greedy pairing is not a minimum-transaction solver. Display code
  relies on this exact pairing order, so changing the algorithm is a
  behavioral change, not an optimization.

UNBALANCED INPUT:
  Consolidate never fails. If credits and debits don't cancel it stops when
  either side runs out and leaves the remainder unsettled. Residuals
  reports what was left so callers can check conservation themselves.

SEE ALSO:
  - wager/ledger.go: NetBalances
  - engine/settle.go: Feeds every game's obligations here
*/
package settlement

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/wager"
)

// ReasonPrefix starts every aggregated payee reason.
const ReasonPrefix = "Settlement for: "

// Consolidate nets obligations into a greedy payment plan.
func Consolidate(obligations []wager.PaymentObligation) wager.ConsolidatedSettlement {
	var creditors, debtors []wager.Balance
	for _, b := range wager.NetBalances(obligations) {
		switch {
		case b.IsCreditor():
			creditors = append(creditors, b)
		case b.IsDebtor():
			debtors = append(debtors, b)
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool {
		if !creditors[i].Net.Equal(creditors[j].Net) {
			return creditors[i].Net.GreaterThan(creditors[j].Net)
		}
		return creditors[i].Player < creditors[j].Player
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		if !debtors[i].Net.Equal(debtors[j].Net) {
			return debtors[i].Net.LessThan(debtors[j].Net)
		}
		return debtors[i].Player < debtors[j].Player
	})

	reasons := debtReasons(obligations)
	plan := wager.ConsolidatedSettlement{}
	position := make(map[string]int)

	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		creditor, debtor := &creditors[ci], &debtors[di]
		amount := decimal.Min(creditor.Net, debtor.Net.Neg())

		if !wager.IsNegligible(amount) {
			i, ok := position[debtor.Player]
			if !ok {
				i = len(plan)
				position[debtor.Player] = i
				plan = append(plan, wager.ConsolidatedPayment{From: debtor.Player})
			}
			plan[i].Payees = append(plan[i].Payees, wager.Payee{
				To:     creditor.Player,
				Amount: amount,
				Reason: reasons[debtor.Player],
			})
		}

		creditor.Net = creditor.Net.Sub(amount)
		debtor.Net = debtor.Net.Add(amount)

		if wager.IsNegligible(creditor.Net) {
			ci++
		}
		if wager.IsNegligible(debtor.Net) {
			di++
		}
	}

	return plan
}

// debtReasons builds "Settlement for: ..." per debtor from the distinct
// reasons of their raw obligations, in first-seen order.
func debtReasons(obligations []wager.PaymentObligation) map[string]string {
	seen := make(map[string]map[string]bool)
	ordered := make(map[string][]string)
	for _, o := range obligations {
		if seen[o.From] == nil {
			seen[o.From] = make(map[string]bool)
		}
		if seen[o.From][o.Reason] {
			continue
		}
		seen[o.From][o.Reason] = true
		ordered[o.From] = append(ordered[o.From], o.Reason)
	}

	result := make(map[string]string, len(ordered))
	for player, list := range ordered {
		result[player] = ReasonPrefix + strings.Join(list, ", ")
	}
	return result
}

// Residuals returns every player whose net balance is not cleared by the
// plan, with the amount still outstanding. An empty result means money was
// conserved to within the settlement tolerance. Players appear in balance
// order, then players only the plan mentions in plan order.
func Residuals(obligations []wager.PaymentObligation, plan wager.ConsolidatedSettlement) []wager.Balance {
	flows := plan.Flows()
	var residuals []wager.Balance
	report := func(player string, left decimal.Decimal) {
		if !wager.IsNegligible(left) {
			residuals = append(residuals, wager.Balance{Player: player, Net: left})
		}
		delete(flows, player)
	}

	for _, b := range wager.NetBalances(obligations) {
		report(b.Player, b.Net.Sub(flows[b.Player]))
	}
	for _, p := range plan {
		if flow, ok := flows[p.From]; ok {
			report(p.From, flow.Neg())
		}
		for _, payee := range p.Payees {
			if flow, ok := flows[payee.To]; ok {
				report(payee.To, flow.Neg())
			}
		}
	}
	return residuals
}

package settlement_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wager-engine/settlement"
	"github.com/warp/wager-engine/wager"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func owes(from, to string, amount float64, reason string) wager.PaymentObligation {
	return wager.PaymentObligation{From: from, To: to, Amount: decimal.NewFromFloat(amount), Reason: reason}
}

// decimalCmp compares decimals by value for cmp.Diff.
var decimalCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// randomObligations builds a reproducible set of obligations between a
// handful of generated players.
func randomObligations(seed uint64, count int) []wager.PaymentObligation {
	faker := gofakeit.New(seed)
	players := make([]string, faker.Number(2, 6))
	for i := range players {
		players[i] = faker.FirstName() + " " + faker.LetterN(3)
	}

	reasons := []string{"Front 9", "Back 9", "Total Match", "Skin on hole 7", "Birdie on hole 3"}
	obligations := make([]wager.PaymentObligation, 0, count)
	for len(obligations) < count {
		from := players[faker.Number(0, len(players)-1)]
		to := players[faker.Number(0, len(players)-1)]
		if from == to {
			continue
		}
		obligations = append(obligations, wager.PaymentObligation{
			From:   from,
			To:     to,
			Amount: decimal.NewFromInt(int64(faker.Number(1, 20))),
			Reason: reasons[faker.Number(0, len(reasons)-1)],
		})
	}
	return obligations
}

// =============================================================================
// WORKED EXAMPLES
// =============================================================================

func TestConsolidate_NassauFourBall(t *testing.T) {
	// GIVEN: A wins front and total, B wins back, $5 each way
	obligations := []wager.PaymentObligation{
		owes("B1", "A1", 5, "Front 9"),
		owes("B2", "A2", 5, "Front 9"),
		owes("A1", "B1", 5, "Back 9"),
		owes("A2", "B2", 5, "Back 9"),
		owes("B1", "A1", 5, "Total Match"),
		owes("B2", "A2", 5, "Total Match"),
	}

	// WHEN
	plan := settlement.Consolidate(obligations)

	// THEN: one $5 payment per pair, reasons from the debtor's raw debts
	want := wager.ConsolidatedSettlement{
		{From: "B1", Payees: []wager.Payee{{To: "A1", Amount: wager.Dollars(5), Reason: "Settlement for: Front 9, Total Match"}}},
		{From: "B2", Payees: []wager.Payee{{To: "A2", Amount: wager.Dollars(5), Reason: "Settlement for: Front 9, Total Match"}}},
	}
	if diff := cmp.Diff(want, plan, decimalCmp); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestConsolidate_LargestFirstMatching(t *testing.T) {
	// GIVEN: Ann +10, Bob +4, Cy -8, Dee -6
	obligations := []wager.PaymentObligation{
		owes("Cy", "Ann", 8, "Front 9"),
		owes("Dee", "Ann", 2, "Skin on hole 1"),
		owes("Dee", "Bob", 4, "Skin on hole 2"),
	}

	plan := settlement.Consolidate(obligations)

	// THEN: Cy pays Ann 8; Dee pays Ann 2, then Bob 4
	want := wager.ConsolidatedSettlement{
		{From: "Cy", Payees: []wager.Payee{{To: "Ann", Amount: wager.Dollars(8), Reason: "Settlement for: Front 9"}}},
		{From: "Dee", Payees: []wager.Payee{
			{To: "Ann", Amount: wager.Dollars(2), Reason: "Settlement for: Skin on hole 1, Skin on hole 2"},
			{To: "Bob", Amount: wager.Dollars(4), Reason: "Settlement for: Skin on hole 1, Skin on hole 2"},
		}},
	}
	if diff := cmp.Diff(want, plan, decimalCmp); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestConsolidate_OffsettingDebtsCancel(t *testing.T) {
	plan := settlement.Consolidate([]wager.PaymentObligation{
		owes("Ann", "Bob", 5, "Front 9"),
		owes("Bob", "Ann", 5, "Back 9"),
	})
	assert.NotNil(t, plan)
	assert.Empty(t, plan)
}

func TestConsolidate_Empty(t *testing.T) {
	plan := settlement.Consolidate(nil)
	assert.NotNil(t, plan)
	assert.Equal(t, 0, plan.Transfers())
}

func TestConsolidate_ReasonsAreDistinctInFirstSeenOrder(t *testing.T) {
	plan := settlement.Consolidate([]wager.PaymentObligation{
		owes("Bob", "Ann", 1, "Skin on hole 4"),
		owes("Bob", "Ann", 1, "Birdie on hole 2"),
		owes("Bob", "Ann", 1, "Skin on hole 4"),
	})
	require.Len(t, plan, 1)
	assert.Equal(t, "Settlement for: Skin on hole 4, Birdie on hole 2", plan[0].Payees[0].Reason)
	assert.Equal(t, "3", plan[0].Payees[0].Amount.String())
}

func TestConsolidate_SubCentBalancesDropped(t *testing.T) {
	plan := settlement.Consolidate([]wager.PaymentObligation{
		owes("Ann", "Bob", 0.004, "Rounding"),
	})
	assert.Empty(t, plan)
}

func TestConsolidate_FractionalAmounts(t *testing.T) {
	plan := settlement.Consolidate([]wager.PaymentObligation{
		owes("Ann", "Bob", 0.1, "Skin on hole 1"),
		owes("Ann", "Bob", 0.2, "Skin on hole 2"),
	})
	require.Len(t, plan, 1)
	assert.Equal(t, "0.3", plan[0].Payees[0].Amount.String())
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestConsolidate_ConservesMoney(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		obligations := randomObligations(seed, 25)

		plan := settlement.Consolidate(obligations)

		assert.Empty(t, settlement.Residuals(obligations, plan), "seed %d", seed)
		for _, p := range plan {
			require.NotEmpty(t, p.Payees, "seed %d", seed)
			for _, payee := range p.Payees {
				assert.NotEqual(t, p.From, payee.To, "seed %d", seed)
				assert.True(t, payee.Amount.GreaterThanOrEqual(wager.Tolerance()), "seed %d", seed)
			}
		}
	}
}

func TestConsolidate_TransfersBoundedByPlayers(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		obligations := randomObligations(seed, 30)
		plan := settlement.Consolidate(obligations)

		players := len(wager.NetBalances(obligations))
		assert.LessOrEqual(t, plan.Transfers(), players-1, "seed %d", seed)
	}
}

func TestConsolidate_IndependentOfObligationOrderExceptReasons(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		obligations := randomObligations(seed, 20)
		shuffled := append([]wager.PaymentObligation(nil), obligations...)
		gofakeit.New(seed).ShuffleAnySlice(shuffled)

		a := settlement.Consolidate(obligations)
		b := settlement.Consolidate(shuffled)

		// Amounts and pairings match; reason text follows first-seen order
		ignoreReason := cmp.Transformer("noReason", func(p wager.Payee) wager.Payee {
			p.Reason = ""
			return p
		})
		if diff := cmp.Diff(a, b, decimalCmp, ignoreReason); diff != "" {
			t.Errorf("seed %d: plan depends on obligation order (-a +b):\n%s", seed, diff)
		}
	}
}

func TestConsolidate_Deterministic(t *testing.T) {
	obligations := randomObligations(7, 40)
	first := settlement.Consolidate(obligations)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, settlement.Consolidate(obligations), decimalCmp); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

// =============================================================================
// RESIDUALS
// =============================================================================

func TestResiduals_ReportsUnsettledPlan(t *testing.T) {
	obligations := []wager.PaymentObligation{
		owes("Bob", "Ann", 5, "Front 9"),
	}
	// A plan that only moves $3
	plan := wager.ConsolidatedSettlement{
		{From: "Bob", Payees: []wager.Payee{{To: "Ann", Amount: wager.Dollars(3)}}},
	}

	residuals := settlement.Residuals(obligations, plan)
	require.Len(t, residuals, 2)
	assert.Equal(t, "Bob", residuals[0].Player)
	assert.Equal(t, "-2", residuals[0].Net.String())
	assert.Equal(t, "Ann", residuals[1].Player)
	assert.Equal(t, "2", residuals[1].Net.String())
}

func TestResiduals_PlanOnlyPlayersInPlanOrder(t *testing.T) {
	// GIVEN: a plan that moves money between players with no obligations
	plan := wager.ConsolidatedSettlement{
		{From: "Zed", Payees: []wager.Payee{
			{To: "Yan", Amount: wager.Dollars(1)},
			{To: "Xia", Amount: wager.Dollars(2)},
		}},
		{From: "Wes", Payees: []wager.Payee{{To: "Vic", Amount: wager.Dollars(4)}}},
	}

	// THEN: every run reports them in the order the plan names them
	for range 20 {
		residuals := settlement.Residuals(nil, plan)
		players := make([]string, len(residuals))
		for i, r := range residuals {
			players[i] = r.Player
		}
		require.Equal(t, []string{"Zed", "Yan", "Xia", "Wes", "Vic"}, players)
		assert.Equal(t, "3", residuals[0].Net.String())
		assert.Equal(t, "-4", residuals[4].Net.String())
	}
}

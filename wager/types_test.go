package wager_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wager-engine/wager"
)

func TestWagerConfig_EnabledRequiresPositiveAmount(t *testing.T) {
	cfg := wager.WagerConfig{
		Games: []wager.Game{wager.GameNassau, wager.GameSkins, wager.GameEagles},
		Amounts: map[wager.Game]decimal.Decimal{
			wager.GameNassau:  wager.Dollars(5),
			wager.GameSkins:   wager.Dollars(0),
			wager.GameBirdies: wager.Dollars(1), // not listed
		},
	}

	assert.True(t, cfg.Enabled(wager.GameNassau))
	assert.False(t, cfg.Enabled(wager.GameSkins))
	assert.False(t, cfg.Enabled(wager.GameBirdies))
	assert.False(t, cfg.Enabled(wager.GameEagles))
	assert.Equal(t, []wager.Game{wager.GameNassau}, cfg.ActiveGames())
}

func TestWagerConfig_NassauStakes(t *testing.T) {
	uniform := wager.WagerConfig{
		Games:   []wager.Game{wager.GameNassau},
		Amounts: map[wager.Game]decimal.Decimal{wager.GameNassau: wager.Dollars(5)},
	}
	assert.True(t, uniform.NassauStakes().Equal(wager.Uniform(wager.Dollars(5))))

	split := wager.NassauSplit{Front: wager.Dollars(5), Back: wager.Dollars(5), Total: wager.Dollars(10)}
	perSegment := uniform.Clone()
	perSegment.NassauSplit = &split
	assert.True(t, perSegment.NassauStakes().Equal(split))
	assert.False(t, uniform.Equivalent(perSegment))
}

func TestWagerConfig_Validate(t *testing.T) {
	negative := wager.WagerConfig{
		Games:   []wager.Game{wager.GameSkins},
		Amounts: map[wager.Game]decimal.Decimal{wager.GameSkins: wager.Dollars(-1)},
	}
	var stakeErr *wager.StakeError
	require.ErrorAs(t, negative.Validate(), &stakeErr)
	assert.Equal(t, wager.GameSkins, stakeErr.Game)

	unknown := wager.WagerConfig{Games: []wager.Game{"wolf"}}
	assert.ErrorIs(t, unknown.Validate(), wager.ErrInvalidConfig)

	assert.NoError(t, wager.WagerConfig{}.Validate())
}

func TestWagerConfig_CloneIsDeep(t *testing.T) {
	split := wager.Uniform(wager.Dollars(5))
	cfg := wager.WagerConfig{
		Games:       []wager.Game{wager.GameNassau},
		Amounts:     map[wager.Game]decimal.Decimal{wager.GameNassau: wager.Dollars(5)},
		NassauSplit: &split,
	}
	c := cfg.Clone()
	c.Amounts[wager.GameNassau] = wager.Dollars(9)
	c.NassauSplit.Front = wager.Dollars(9)

	assert.Equal(t, "5", cfg.Amount(wager.GameNassau).String())
	assert.Equal(t, "5", cfg.NassauSplit.Front.String())
}

func TestLookupGame(t *testing.T) {
	g, ok := wager.LookupGame(" Birdie ")
	assert.True(t, ok)
	assert.Equal(t, wager.GameBirdies, g)

	_, ok = wager.LookupGame("wolf")
	assert.False(t, ok)
}

func TestNetBalances_FirstMentionOrder(t *testing.T) {
	balances := wager.NetBalances([]wager.PaymentObligation{
		{From: "B1", To: "A1", Amount: wager.Dollars(5)},
		{From: "A1", To: "B1", Amount: wager.Dollars(5)},
		{From: "B1", To: "A1", Amount: wager.Dollars(5)},
	})

	require.Len(t, balances, 2)
	assert.Equal(t, "B1", balances[0].Player)
	assert.True(t, balances[0].IsDebtor())
	assert.Equal(t, "A1", balances[1].Player)
	assert.Equal(t, "5", balances[1].Net.String())
}

func TestMatch_SetScore(t *testing.T) {
	m := wager.Match{Players: []wager.MatchPlayer{
		{PlayerRef: wager.PlayerRef{Name: "Ann"}, Scores: make([]int, 18)},
	}}

	require.NoError(t, m.SetScore("Ann", 3, 5))
	assert.Equal(t, 5, m.Players[0].Scores[2])

	assert.ErrorIs(t, m.SetScore("Zed", 1, 4), wager.ErrPlayerNotFound)
	assert.ErrorIs(t, m.SetScore("Ann", 19, 4), wager.ErrInvalidScore)
	assert.ErrorIs(t, m.SetScore("Ann", 1, -1), wager.ErrInvalidScore)
	assert.True(t, wager.IsClientError(m.SetScore("Ann", 0, 4)))
}

func TestMatch_ValidateRoster(t *testing.T) {
	dup := wager.Match{Players: []wager.MatchPlayer{
		{PlayerRef: wager.PlayerRef{Name: "Ann", Team: "A"}},
		{PlayerRef: wager.PlayerRef{Name: "Ann", Team: "B"}},
	}}
	assert.ErrorIs(t, dup.ValidateRoster(), wager.ErrDuplicatePlayer)

	badMode := wager.Match{Handicaps: "double"}
	assert.ErrorIs(t, badMode.ValidateRoster(), wager.ErrInvalidConfig)
}

func TestTolerance_IsOneCent(t *testing.T) {
	assert.Equal(t, "0.01", wager.Tolerance().String())
	assert.True(t, wager.IsNegligible(decimal.RequireFromString("-0.009")))
	assert.False(t, wager.IsNegligible(wager.Tolerance()))
}

func TestValidateHoles(t *testing.T) {
	rated := func(ranks ...int) []wager.Hole {
		holes := make([]wager.Hole, len(ranks))
		for i, r := range ranks {
			holes[i] = wager.Hole{Number: i + 1, Par: 4, HandicapRank: r}
		}
		return holes
	}

	assert.NoError(t, wager.ValidateHoles(rated(3, 1, 2)))
	assert.NoError(t, wager.ValidateHoles(rated(0, 0, 0)), "unrated holes")

	tests := []struct {
		name  string
		holes []wager.Hole
	}{
		{"empty", nil},
		{"repeated rank", rated(1, 2, 1)},
		{"rank above 18", rated(1, 19)},
		{"negative rank", rated(-1, 2)},
		{"hole number above 18", []wager.Hole{{Number: 19, Par: 4}}},
		{"repeated hole number", []wager.Hole{{Number: 1, Par: 4}, {Number: 1, Par: 3}}},
		{"zero par", []wager.Hole{{Number: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wager.ValidateHoles(tt.holes)
			var cfgErr *wager.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "holes", cfgErr.Field)
		})
	}
}

func TestConsolidatedSettlement_Flows(t *testing.T) {
	plan := wager.ConsolidatedSettlement{
		{From: "Dee", Payees: []wager.Payee{
			{To: "Ann", Amount: wager.Dollars(2)},
			{To: "Bob", Amount: wager.Dollars(4)},
		}},
	}
	flows := plan.Flows()
	assert.Equal(t, 2, plan.Transfers())
	assert.Equal(t, "-6", flows["Dee"].String())
	assert.Equal(t, "4", flows["Bob"].String())
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, wager.IsNotFound(wager.ErrMatchNotFound))
	assert.False(t, wager.IsClientError(wager.ErrCourseNotFound))
	assert.True(t, wager.IsClientError(&wager.ScoreError{Player: "Ann", Hole: 1, Reason: "x"}))
}

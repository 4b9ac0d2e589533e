package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wager-engine/parser"
	"github.com/warp/wager-engine/wager"
)

func TestParseConfig_EnablesGamesFromAmounts(t *testing.T) {
	// GIVEN: amounts without a games list
	cfg, err := parser.ParseConfig([]byte(`{"amounts": {"skins": 2, "Birdie": 1, "eagles": 0}}`))

	// THEN: positive amounts enable their games, in settlement order
	require.NoError(t, err)
	assert.Equal(t, []wager.Game{wager.GameSkins, wager.GameBirdies}, cfg.Games)
	assert.Equal(t, []string{"$2 Skins per hole", "$1 per Birdie"}, cfg.Bets)
}

func TestParseConfig_ListedGameWithoutAmountStaysDisabled(t *testing.T) {
	cfg, err := parser.ParseConfig([]byte(`{"games": ["nassau", "skins"], "amounts": {"skins": 2}}`))
	require.NoError(t, err)

	assert.True(t, cfg.Listed(wager.GameNassau))
	assert.False(t, cfg.Enabled(wager.GameNassau))
	assert.Equal(t, []wager.Game{wager.GameSkins}, cfg.ActiveGames())
}

func TestParseConfig_NassauSplit(t *testing.T) {
	cfg, err := parser.ParseConfig([]byte(`{"nassau_split": {"front": 5, "back": 5, "total": 10}}`))
	require.NoError(t, err)

	assert.True(t, cfg.Enabled(wager.GameNassau))
	assert.Equal(t, "10", cfg.Amount(wager.GameNassau).String())
	assert.Equal(t, "10", cfg.NassauStakes().Total.String())
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"malformed", `{"amounts": `, wager.ErrInvalidConfig},
		{"unknown game", `{"games": ["wolf"]}`, wager.ErrInvalidConfig},
		{"unknown amount key", `{"amounts": {"wolf": 1}}`, wager.ErrInvalidConfig},
		{"negative stake", `{"amounts": {"skins": -2}}`, wager.ErrNegativeStake},
		{"negative segment", `{"nassau_split": {"front": 5, "back": -1, "total": 5}}`, wager.ErrNegativeStake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseConfig([]byte(tt.json))
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, wager.IsClientError(err))
		})
	}
}

func TestToJSON_FromJSON_PreservesSettlement(t *testing.T) {
	original := parser.Parse("5/5/10, $2 skins, $1 birdies")
	require.NotNil(t, original)

	restored, err := parser.FromJSON(parser.ToJSON(*original))
	require.NoError(t, err)
	assert.True(t, original.Equivalent(restored))
	assert.Equal(t, original.Bets, restored.Bets)
}

package matchfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wager-engine/engine"
	"github.com/warp/wager-engine/matchfile"
	"github.com/warp/wager-engine/wager"
)

const sampleYAML = `
id: sample
name: Sample
wager: "$2 skins"
course:
  name: Short Course
  pars: [3, 3, 3]
players:
  - {name: Ann, team: A, scores: [2, 3]}
  - {name: Bob, team: B, scores: [3, 3, 3]}
`

func TestDecode_YAMLAndBuild(t *testing.T) {
	f, err := matchfile.Decode([]byte(sampleYAML), "yaml")
	require.NoError(t, err)

	round, err := f.Build()
	require.NoError(t, err)

	assert.Equal(t, "short-course", round.Course.ID)
	assert.Len(t, round.Course.Holes, 3)
	assert.Equal(t, "short-course", round.Match.CourseID)
	// Short score rows are padded with unplayed holes
	assert.Equal(t, []int{2, 3, 0}, round.Match.Players[0].Scores)
	assert.Equal(t, []wager.Game{wager.GameSkins}, round.Match.Config.ActiveGames())
}

func TestLoad_JSONByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round.json")
	content := `{
		"name": "Json Round",
		"config": {"amounts": {"birdies": 1}},
		"course": {"name": "C", "pars": [4]},
		"players": [{"name": "Ann", "team": "A", "scores": [3]}, {"name": "Bob", "team": "B", "scores": [4]}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := matchfile.Load(path)
	require.NoError(t, err)
	round, err := f.Build()
	require.NoError(t, err)

	assert.Equal(t, "json-round", round.Match.ID)
	assert.True(t, round.Match.Config.Enabled(wager.GameBirdies))
}

func TestBuild_Rejects(t *testing.T) {
	base := func() *matchfile.File {
		f, err := matchfile.Decode([]byte(sampleYAML), "yaml")
		require.NoError(t, err)
		return f
	}

	f := base()
	f.Wager = "let's just play"
	_, err := f.Build()
	assert.ErrorIs(t, err, wager.ErrUnparseableWager)

	f = base()
	f.Players[1].Name = "Ann"
	_, err = f.Build()
	assert.ErrorIs(t, err, wager.ErrDuplicatePlayer)

	f = base()
	f.Players[0].Scores = []int{3, 3, 3, 3}
	_, err = f.Build()
	assert.ErrorIs(t, err, wager.ErrInvalidConfig)

	f = base()
	f.Players[0].Scores = []int{-1}
	_, err = f.Build()
	assert.ErrorIs(t, err, wager.ErrInvalidScore)

	f = base()
	f.Handicaps = "double"
	_, err = f.Build()
	assert.ErrorIs(t, err, wager.ErrInvalidConfig)

	f = base()
	f.Course.HandicapRanks = []int{1, 2, 2}
	_, err = f.Build()
	var cfgErr *wager.ConfigError
	require.ErrorAs(t, err, &cfgErr, "repeated handicap rank")
	assert.Equal(t, "holes", cfgErr.Field)

	f = base()
	f.Course.HandicapRanks = []int{1, 2, 20}
	_, err = f.Build()
	assert.ErrorIs(t, err, wager.ErrInvalidConfig, "rank out of range")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := matchfile.Decode([]byte("players: [unterminated"), "yaml")
	assert.ErrorIs(t, err, wager.ErrInvalidConfig)

	_, err = matchfile.Decode([]byte("{}"), "toml")
	assert.Error(t, err)
}

// =============================================================================
// EMBEDDED SCENARIOS
// =============================================================================

func settleScenario(t *testing.T, id string) engine.Settlement {
	t.Helper()
	f, err := matchfile.Scenario(id)
	require.NoError(t, err)
	round, err := f.Build()
	require.NoError(t, err)
	out, err := engine.Settle(round.Match.Config, engine.ForMatch(round.Match, round.Course))
	require.NoError(t, err)
	return out
}

func TestScenarios_AllBuild(t *testing.T) {
	all, err := matchfile.Scenarios()
	require.NoError(t, err)
	require.Len(t, all, 3)

	for _, f := range all {
		_, err := f.Build()
		assert.NoError(t, err, f.ID)
	}

	_, err = matchfile.Scenario("nope")
	assert.ErrorIs(t, err, matchfile.ErrUnknownScenario)
}

func TestScenario_NassauFourBall(t *testing.T) {
	out := settleScenario(t, "nassau-four-ball")

	require.NotNil(t, out.Nassau)
	assert.Equal(t, "A", out.Nassau.Front9.Winner)
	assert.Equal(t, "B", out.Nassau.Back9.Winner)
	assert.Equal(t, "B", out.Nassau.Total.Winner)

	require.Len(t, out.Consolidated, 2)
	assert.Equal(t, "Alice", out.Consolidated[0].From)
	assert.Equal(t, "Ben", out.Consolidated[0].Payees[0].To)
	assert.Equal(t, "Settlement for: Back 9, Total Match", out.Consolidated[0].Payees[0].Reason)
	assert.Equal(t, "Andy", out.Consolidated[1].From)
	assert.Equal(t, "Beth", out.Consolidated[1].Payees[0].To)
}

func TestScenario_SkinsAndBirdies(t *testing.T) {
	out := settleScenario(t, "skins-and-birdies")

	require.NotNil(t, out.Skins)
	assert.Len(t, out.Skins.Skins, 4)
	require.NotNil(t, out.Birdies)
	assert.Len(t, out.Birdies.Achievements, 4)

	require.Len(t, out.Consolidated, 2)
	assert.Equal(t, "Cal", out.Consolidated[0].From)
	assert.Equal(t, "Dee", out.Consolidated[0].Payees[0].To)
	assert.Equal(t, "3", out.Consolidated[0].Payees[0].Amount.String())
	assert.Equal(t, "Eli", out.Consolidated[1].From)
	assert.Equal(t, "3", out.Consolidated[1].Payees[0].Amount.String())
}

func TestScenario_HandicapMatch(t *testing.T) {
	f, err := matchfile.Scenario("handicap-match")
	require.NoError(t, err)
	round, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, 0, round.Match.Player("Gus").CourseHandicap)
	assert.Equal(t, 13, round.Match.Player("Sam").CourseHandicap)

	out := settleScenario(t, "handicap-match")

	// Net of 13 strokes Sam takes the back and the match
	require.NotNil(t, out.Nassau)
	assert.Equal(t, "Gold", out.Nassau.Front9.Winner)
	assert.Equal(t, "Silver", out.Nassau.Back9.Winner)
	assert.Equal(t, "Silver", out.Nassau.Total.Winner)
	require.NotNil(t, out.Eagles)
	require.Len(t, out.Eagles.Achievements, 1)
	assert.Equal(t, 4, out.Eagles.Achievements[0].Hole)

	require.Len(t, out.Consolidated, 1)
	assert.Equal(t, "Gus", out.Consolidated[0].From)
	assert.Equal(t, "Sam", out.Consolidated[0].Payees[0].To)
	assert.Equal(t, "5", out.Consolidated[0].Payees[0].Amount.String())
	assert.Equal(t, "Settlement for: Back 9, Total Match", out.Consolidated[0].Payees[0].Reason)
}

package api

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wager-engine/wager"
	"github.com/warp/wager-engine/wager/store"
)

func setupScheduler(t *testing.T) (*ResettleScheduler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := t.Context()

	require.NoError(t, mem.SaveCourse(ctx, wager.Course{
		ID:    "par3",
		Name:  "Par Three",
		Holes: []wager.Hole{{Number: 1, Par: 3}, {Number: 2, Par: 3}, {Number: 3, Par: 3}},
	}))
	require.NoError(t, mem.SaveMatch(ctx, wager.Match{
		ID:       "live",
		CourseID: "par3",
		Config: wager.WagerConfig{
			Games:   []wager.Game{wager.GameSkins},
			Amounts: map[wager.Game]decimal.Decimal{wager.GameSkins: wager.Dollars(1)},
		},
		Players: []wager.MatchPlayer{
			{PlayerRef: wager.PlayerRef{Name: "Ann"}, Scores: make([]int, 3)},
			{PlayerRef: wager.PlayerRef{Name: "Bob"}, Scores: make([]int, 3)},
		},
	}))

	h := NewHandler(mem, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	return NewResettleScheduler(h, time.Hour), mem
}

func TestResettle_OnlyRecordsChanges(t *testing.T) {
	s, mem := setupScheduler(t)
	ctx := t.Context()

	// GIVEN: No scores yet, nothing to record
	settled, unchanged, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, settled)
	assert.Equal(t, 1, unchanged)

	// WHEN: Ann wins hole 1 outright
	require.NoError(t, mem.SetScore(ctx, "live", "Ann", 1, 2))
	require.NoError(t, mem.SetScore(ctx, "live", "Bob", 1, 3))

	settled, _, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	// THEN: A second pass with the same scores adds nothing
	settled, unchanged, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, settled)
	assert.Equal(t, 1, unchanged)

	// AND: A corrected score that halves the hole is recorded as a new run
	require.NoError(t, mem.SetScore(ctx, "live", "Bob", 1, 2))
	settled, _, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	runs, err := mem.SettlementRuns(ctx, "live")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Len(t, runs[0].Obligations, 1)
	assert.Empty(t, runs[1].Obligations)
}

func TestResettle_StartRunsImmediatelyAndStops(t *testing.T) {
	s, mem := setupScheduler(t)
	ctx := t.Context()
	require.NoError(t, mem.SetScore(ctx, "live", "Ann", 1, 2))
	require.NoError(t, mem.SetScore(ctx, "live", "Bob", 1, 3))

	s.Start()
	s.Stop()

	runs, err := mem.SettlementRuns(ctx, "live")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestResettle_Disabled(t *testing.T) {
	s, mem := setupScheduler(t)
	s.Enabled = false

	s.Start()
	s.Stop()

	runs, err := mem.SettlementRuns(t.Context(), "live")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

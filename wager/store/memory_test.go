package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/wager-engine/wager"
	"github.com/warp/wager-engine/wager/store"
)

func testMatch(id string) wager.Match {
	return wager.Match{
		ID:       id,
		Name:     "Saturday four-ball",
		CourseID: "pebble",
		Players: []wager.MatchPlayer{
			{PlayerRef: wager.PlayerRef{Name: "Ann", Team: "A"}, Scores: make([]int, 18)},
			{PlayerRef: wager.PlayerRef{Name: "Bob", Team: "B"}, Scores: make([]int, 18)},
		},
	}
}

func TestMemory_MatchRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	require.NoError(t, s.SaveMatch(ctx, testMatch("m1")))
	require.NoError(t, s.SetScore(ctx, "m1", "Bob", 4, 3))

	got, err := s.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Player("Bob").Scores[3])

	// Returned copies don't alias the stored match
	got.Players[1].Scores[3] = 9
	again, err := s.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Player("Bob").Scores[3])
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	_, err := s.GetMatch(ctx, "missing")
	assert.ErrorIs(t, err, wager.ErrMatchNotFound)
	_, err = s.GetCourse(ctx, "missing")
	assert.ErrorIs(t, err, wager.ErrCourseNotFound)
	assert.ErrorIs(t, s.SetScore(ctx, "missing", "Ann", 1, 4), wager.ErrMatchNotFound)
	assert.ErrorIs(t, s.AppendSettlementRun(ctx, wager.SettlementRun{MatchID: "missing"}), wager.ErrMatchNotFound)
}

func TestMemory_SettlementRunsAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.SaveMatch(ctx, testMatch("m1")))

	require.NoError(t, s.AppendSettlementRun(ctx, wager.SettlementRun{ID: "r1", MatchID: "m1"}))
	require.NoError(t, s.AppendSettlementRun(ctx, wager.SettlementRun{ID: "r2", MatchID: "m1"}))

	runs, err := s.SettlementRuns(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r1", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
}

func TestMemory_DuplicatePlayers(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	m := testMatch("m1")
	m.Players[1].Name = "Ann"
	assert.ErrorIs(t, s.SaveMatch(ctx, m), wager.ErrDuplicatePlayer)

	require.NoError(t, s.SavePlayer(ctx, wager.Player{ID: "p1", Name: "Ann"}))
	assert.ErrorIs(t, s.SavePlayer(ctx, wager.Player{ID: "p2", Name: "Ann"}), wager.ErrDuplicatePlayer)
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.SaveMatch(ctx, testMatch("m1")))
	require.NoError(t, s.SaveCourse(ctx, wager.Course{ID: "c1", Name: "Links"}))

	require.NoError(t, s.Reset(ctx))

	matches, err := s.ListMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, matches)
	courses, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

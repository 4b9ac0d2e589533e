package games_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/warp/wager-engine/games"
	"github.com/warp/wager-engine/wager"
)

func eighteen(score int) []int {
	s := make([]int, 18)
	for i := range s {
		s[i] = score
	}
	return s
}

func ranked() []wager.Hole {
	holes := make([]wager.Hole, 18)
	for i := range holes {
		holes[i] = wager.Hole{Number: i + 1, Par: 4, HandicapRank: i + 1}
	}
	return holes
}

func TestHoleTotals(t *testing.T) {
	scores := eighteen(4)
	scores[17] = 0 // not yet played

	got := games.HoleTotals(scores)
	assert.Equal(t, games.Totals{Front9: 36, Back9: 32, Total: 68}, got)
}

func TestFormatToPar(t *testing.T) {
	assert.Equal(t, "E", games.FormatToPar(72, 72))
	assert.Equal(t, "+3", games.FormatToPar(75, 72))
	assert.Equal(t, "-2", games.FormatToPar(70, 72))
}

func TestCourseHandicap(t *testing.T) {
	tee := &wager.Tee{Color: "white", Rating: 71.2, Slope: 130}

	// 10.4 × 130 / 113 + (71.2 − 72) = 11.16
	assert.Equal(t, 11, games.CourseHandicap(10.4, tee))
	assert.Equal(t, 0, games.CourseHandicap(10.4, nil))
}

func TestAllowance(t *testing.T) {
	assert.Equal(t, 12, games.Allowance(12, wager.HandicapFull))
	assert.Equal(t, 9, games.Allowance(12, wager.HandicapThreeQuarter))
	assert.Equal(t, 6, games.Allowance(12, wager.HandicapHalf))
	assert.Equal(t, 0, games.Allowance(12, wager.HandicapNone))
	assert.Equal(t, 0, games.Allowance(12, ""))
}

func TestStrokesOnHole(t *testing.T) {
	tests := []struct {
		name     string
		handicap int
		rank     int
		want     int
	}{
		{"scratch", 0, 1, 0},
		{"10 on hardest", 10, 1, 1},
		{"10 on rank 10", 10, 10, 1},
		{"10 on rank 11", 10, 11, 0},
		{"20 on rank 2", 20, 2, 2},
		{"20 on rank 3", 20, 3, 1},
		{"plus 2 on easiest", -2, 18, -1},
		{"plus 2 on rank 17", -2, 17, -1},
		{"plus 2 on rank 16", -2, 16, 0},
		{"unranked", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, games.StrokesOnHole(tt.handicap, tt.rank))
		})
	}
}

func TestTeamScorelines_GrossAndNet(t *testing.T) {
	players := []wager.MatchPlayer{
		{PlayerRef: wager.PlayerRef{Name: "Cy", Team: "Blue"}, CourseHandicap: 18, Scores: eighteen(5)},
		{PlayerRef: wager.PlayerRef{Name: "Ann", Team: "Red"}, CourseHandicap: 0, Scores: eighteen(4)},
		{PlayerRef: wager.PlayerRef{Name: "Bob", Team: "Red"}, CourseHandicap: 4, Scores: eighteen(4)},
	}

	gross := games.TeamScorelines(players, ranked(), wager.HandicapNone)
	want := []games.TeamScoreline{
		{Team: "Blue", Totals: games.Totals{Front9: 45, Back9: 45, Total: 90}},
		{Team: "Red", Totals: games.Totals{Front9: 72, Back9: 72, Total: 144}},
	}
	if diff := cmp.Diff(want, gross); diff != "" {
		t.Errorf("gross scorelines mismatch (-want +got):\n%s", diff)
	}

	// Full handicap: Cy gets a stroke a hole, Bob one on each of ranks 1-4
	net := games.TeamScorelines(players, ranked(), wager.HandicapFull)
	want = []games.TeamScoreline{
		{Team: "Blue", Totals: games.Totals{Front9: 36, Back9: 36, Total: 72}},
		{Team: "Red", Totals: games.Totals{Front9: 68, Back9: 72, Total: 140}},
	}
	if diff := cmp.Diff(want, net); diff != "" {
		t.Errorf("net scorelines mismatch (-want +got):\n%s", diff)
	}
}

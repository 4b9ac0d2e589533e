// Package store provides MatchStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/wager-engine/wager"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	courses map[string]wager.Course
	players map[string]wager.Player
	matches map[string]wager.Match
	runs    map[string][]wager.SettlementRun
	order   []string // match IDs in insertion order
}

var _ wager.MatchStore = (*Memory)(nil)

func NewMemory() *Memory {
	m := &Memory{}
	m.init()
	return m
}

func (m *Memory) init() {
	m.courses = make(map[string]wager.Course)
	m.players = make(map[string]wager.Player)
	m.matches = make(map[string]wager.Match)
	m.runs = make(map[string][]wager.SettlementRun)
	m.order = nil
}

func (m *Memory) SaveCourse(_ context.Context, c wager.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.Holes = append([]wager.Hole(nil), c.Holes...)
	c.Tees = append([]wager.Tee(nil), c.Tees...)
	wager.SortHoles(c.Holes)
	m.courses[c.ID] = c
	return nil
}

func (m *Memory) GetCourse(_ context.Context, id string) (*wager.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wager.ErrCourseNotFound, id)
	}
	c.Holes = append([]wager.Hole(nil), c.Holes...)
	c.Tees = append([]wager.Tee(nil), c.Tees...)
	return &c, nil
}

func (m *Memory) ListCourses(_ context.Context) ([]wager.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]wager.Course, 0, len(m.courses))
	for _, c := range m.courses {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) SavePlayer(_ context.Context, p wager.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.players {
		if existing.Name == p.Name && id != p.ID {
			return fmt.Errorf("%w: %s", wager.ErrDuplicatePlayer, p.Name)
		}
	}
	m.players[p.ID] = p
	return nil
}

func (m *Memory) GetPlayer(_ context.Context, id string) (*wager.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wager.ErrPlayerNotFound, id)
	}
	return &p, nil
}

func (m *Memory) ListPlayers(_ context.Context) ([]wager.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]wager.Player, 0, len(m.players))
	for _, p := range m.players {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) SaveMatch(_ context.Context, match wager.Match) error {
	if err := match.ValidateRoster(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[match.ID]; !ok {
		m.order = append(m.order, match.ID)
	}
	m.matches[match.ID] = match.Clone()
	return nil
}

func (m *Memory) GetMatch(_ context.Context, id string) (*wager.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wager.ErrMatchNotFound, id)
	}
	c := match.Clone()
	return &c, nil
}

func (m *Memory) ListMatches(_ context.Context) ([]wager.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]wager.Match, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.matches[id].Clone())
	}
	return result, nil
}

func (m *Memory) SetScore(_ context.Context, matchID, player string, hole, strokes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[matchID]
	if !ok {
		return fmt.Errorf("%w: %s", wager.ErrMatchNotFound, matchID)
	}
	// Scores slices are owned by the stored copy, so edit in place.
	return match.SetScore(player, hole, strokes)
}

// AppendSettlementRun adds a run. Append-only.
func (m *Memory) AppendSettlementRun(_ context.Context, run wager.SettlementRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[run.MatchID]; !ok {
		return fmt.Errorf("%w: %s", wager.ErrMatchNotFound, run.MatchID)
	}
	m.runs[run.MatchID] = append(m.runs[run.MatchID], run)
	return nil
}

func (m *Memory) SettlementRuns(_ context.Context, matchID string) ([]wager.SettlementRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.matches[matchID]; !ok {
		return nil, fmt.Errorf("%w: %s", wager.ErrMatchNotFound, matchID)
	}
	result := make([]wager.SettlementRun, len(m.runs[matchID]))
	copy(result, m.runs[matchID])
	return result, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	return nil
}

/*
store.go - Persistence interface for courses, players and matches

PURPOSE:
  Defines the interface between the HTTP layer and the database. The engine
  itself never touches storage: it receives score tables and configs and
  returns obligations. The store keeps the inputs (courses, rosters, hole
  scores, wager configs) and the history of settlement runs.

APPEND-ONLY SETTLEMENT HISTORY:
  Settlement runs are never updated. Every recomputation appends a new run
  built from the scores current at that moment, so the history shows how
  the money moved as the round progressed.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - wager/store/memory.go: In-memory for tests and the CLI

SEE ALSO:
  - api/handlers.go: Uses MatchStore
*/
package wager

import "context"

// CourseStore persists courses with their holes and tees.
type CourseStore interface {
	SaveCourse(ctx context.Context, c Course) error

	// GetCourse returns ErrCourseNotFound when missing.
	GetCourse(ctx context.Context, id string) (*Course, error)

	ListCourses(ctx context.Context) ([]Course, error)
}

// PlayerStore persists registered golfers.
type PlayerStore interface {
	SavePlayer(ctx context.Context, p Player) error

	// GetPlayer returns ErrPlayerNotFound when missing.
	GetPlayer(ctx context.Context, id string) (*Player, error)

	ListPlayers(ctx context.Context) ([]Player, error)
}

// MatchStore is everything the API needs to persist.
type MatchStore interface {
	CourseStore
	PlayerStore

	// SaveMatch inserts or replaces a match with its roster and scores.
	SaveMatch(ctx context.Context, m Match) error

	// GetMatch returns ErrMatchNotFound when missing.
	GetMatch(ctx context.Context, id string) (*Match, error)

	ListMatches(ctx context.Context) ([]Match, error)

	// SetScore records strokes for one player on one hole (1-based).
	// Zero clears the score.
	SetScore(ctx context.Context, matchID, player string, hole, strokes int) error

	// AppendSettlementRun stores a settlement computation. Append-only.
	AppendSettlementRun(ctx context.Context, run SettlementRun) error

	// SettlementRuns returns a match's runs, oldest first.
	SettlementRuns(ctx context.Context, matchID string) ([]SettlementRun, error)

	// Reset removes all data. Demo scenarios only.
	Reset(ctx context.Context) error
}

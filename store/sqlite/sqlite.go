/*
Package sqlite provides a SQLite-backed implementation of wager.MatchStore.

PURPOSE:
  Persists what a settlement is computed FROM (courses, rosters, hole
  scores, wager configs) and the history of settlement runs. Obligations
  are never stored as live state: they are recomputed from the current
  scores and appended as a new run.

KEY TABLES:
  courses, holes, tees:  Course layout (par and handicap rank per hole)
  players:               Registered golfers, names unique
  matches:               One row per match, wager config as JSON
  match_players:         Roster in display order
  hole_scores:           One row per (match, player, hole); unplayed holes
                         have no row
  settlement_runs:       Append-only settlement history

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements on settlement_runs outside Reset
  - A recomputation is a new run, never an edit of an old one

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL so
  readers don't block the writer.

USAGE:
  store, err := sqlite.New("./data/wagers.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - wager/store.go: Interface definitions
  - wager/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/wager-engine/wager"
)

// Store implements wager.MatchStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ wager.MatchStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holes (
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		number INTEGER NOT NULL,
		par INTEGER NOT NULL,
		handicap_rank INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (course_id, number)
	);

	CREATE TABLE IF NOT EXISTS tees (
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		color TEXT NOT NULL,
		rating REAL NOT NULL,
		slope INTEGER NOT NULL,
		PRIMARY KEY (course_id, color)
	);

	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		handicap_index REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		course_id TEXT NOT NULL,
		wager_text TEXT,
		config_json TEXT NOT NULL,
		handicaps TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		team TEXT NOT NULL,
		tee TEXT,
		handicap_index REAL NOT NULL DEFAULT 0,
		course_handicap INTEGER NOT NULL DEFAULT 0,
		hole_count INTEGER NOT NULL,
		PRIMARY KEY (match_id, name)
	);

	CREATE TABLE IF NOT EXISTS hole_scores (
		match_id TEXT NOT NULL,
		player TEXT NOT NULL,
		hole INTEGER NOT NULL,
		strokes INTEGER NOT NULL,
		PRIMARY KEY (match_id, player, hole),
		FOREIGN KEY (match_id, player) REFERENCES match_players(match_id, name) ON DELETE CASCADE
	);

	-- Settlement history (append-only)
	CREATE TABLE IF NOT EXISTS settlement_runs (
		id TEXT PRIMARY KEY,
		match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		obligations_json TEXT NOT NULL,
		consolidated_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settlement_runs_match
		ON settlement_runs(match_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// COURSE STORE
// =============================================================================

// SaveCourse inserts or replaces a course with its holes and tees.
func (s *Store) SaveCourse(ctx context.Context, c wager.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO courses (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, c.ID, c.Name, now())
	if err != nil {
		return fmt.Errorf("failed to save course: %w", err)
	}

	for _, table := range []string{"holes", "tees"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE course_id = ?", c.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	for _, h := range c.Holes {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO holes (course_id, number, par, handicap_rank) VALUES (?, ?, ?, ?)",
			c.ID, h.Number, h.Par, h.HandicapRank,
		)
		if err != nil {
			return fmt.Errorf("failed to save hole %d: %w", h.Number, err)
		}
	}
	for _, t := range c.Tees {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO tees (course_id, color, rating, slope) VALUES (?, ?, ?, ?)",
			c.ID, t.Color, t.Rating, t.Slope,
		)
		if err != nil {
			return fmt.Errorf("failed to save tee %s: %w", t.Color, err)
		}
	}

	return tx.Commit()
}

// GetCourse retrieves a course by ID.
func (s *Store) GetCourse(ctx context.Context, id string) (*wager.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getCourse(ctx, id)
}

func (s *Store) getCourse(ctx context.Context, id string) (*wager.Course, error) {
	var c wager.Course
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM courses WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", wager.ErrCourseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT number, par, handicap_rank FROM holes WHERE course_id = ? ORDER BY number", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query holes: %w", err)
	}
	for rows.Next() {
		var h wager.Hole
		if err := rows.Scan(&h.Number, &h.Par, &h.HandicapRank); err != nil {
			rows.Close()
			return nil, err
		}
		c.Holes = append(c.Holes, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT color, rating, slope FROM tees WHERE course_id = ? ORDER BY color", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query tees: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t wager.Tee
		if err := rows.Scan(&t.Color, &t.Rating, &t.Slope); err != nil {
			return nil, err
		}
		c.Tees = append(c.Tees, t)
	}
	return &c, rows.Err()
}

// ListCourses returns all courses ordered by name.
func (s *Store) ListCourses(ctx context.Context) ([]wager.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.queryIDs(ctx, "SELECT id FROM courses ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	courses := make([]wager.Course, 0, len(ids))
	for _, id := range ids {
		c, err := s.getCourse(ctx, id)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, nil
}

// =============================================================================
// PLAYER STORE
// =============================================================================

// SavePlayer inserts or updates a player. Names are unique.
func (s *Store) SavePlayer(ctx context.Context, p wager.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, handicap_index, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			handicap_index = excluded.handicap_index
	`, p.ID, p.Name, p.HandicapIndex, now())
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s", wager.ErrDuplicatePlayer, p.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

// GetPlayer retrieves a player by ID.
func (s *Store) GetPlayer(ctx context.Context, id string) (*wager.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p wager.Player
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, handicap_index FROM players WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.HandicapIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", wager.ErrPlayerNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

// ListPlayers returns all players ordered by name.
func (s *Store) ListPlayers(ctx context.Context) ([]wager.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, handicap_index FROM players ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := []wager.Player{}
	for rows.Next() {
		var p wager.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.HandicapIndex); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// =============================================================================
// MATCH STORE
// =============================================================================

// SaveMatch inserts or replaces a match, its roster and its scores.
func (s *Store) SaveMatch(ctx context.Context, m wager.Match) error {
	if err := m.ValidateRoster(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(m.Config)
	if err != nil {
		return fmt.Errorf("failed to encode wager config: %w", err)
	}
	createdAt := m.CreatedAt
	if createdAt == "" {
		createdAt = now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, name, course_id, wager_text, config_json, handicaps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			course_id = excluded.course_id,
			wager_text = excluded.wager_text,
			config_json = excluded.config_json,
			handicaps = excluded.handicaps
	`, m.ID, m.Name, m.CourseID, nullString(m.WagerText), string(configJSON), string(m.Handicaps), createdAt)
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM hole_scores WHERE match_id = ?", m.ID); err != nil {
		return fmt.Errorf("failed to clear scores: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM match_players WHERE match_id = ?", m.ID); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	for i, p := range m.Players {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO match_players
			(match_id, position, name, team, tee, handicap_index, course_handicap, hole_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, i, p.Name, p.Team, nullString(p.Tee), p.HandicapIndex, p.CourseHandicap, len(p.Scores))
		if err != nil {
			return fmt.Errorf("failed to save player %s: %w", p.Name, err)
		}
		for h, strokes := range p.Scores {
			if strokes <= 0 {
				continue
			}
			if err := putScore(ctx, tx, m.ID, p.Name, h+1, strokes); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetMatch retrieves a match with its roster and scores.
func (s *Store) GetMatch(ctx context.Context, id string) (*wager.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getMatch(ctx, id)
}

func (s *Store) getMatch(ctx context.Context, id string) (*wager.Match, error) {
	var m wager.Match
	var wagerText sql.NullString
	var configJSON, handicaps string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, course_id, wager_text, config_json, handicaps, created_at
		FROM matches WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.CourseID, &wagerText, &configJSON, &handicaps, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", wager.ErrMatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	m.WagerText = wagerText.String
	m.Handicaps = wager.HandicapMode(handicaps)
	if err := json.Unmarshal([]byte(configJSON), &m.Config); err != nil {
		return nil, fmt.Errorf("failed to decode wager config: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, team, tee, handicap_index, course_handicap, hole_count
		FROM match_players WHERE match_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		var p wager.MatchPlayer
		var tee sql.NullString
		var holeCount int
		if err := rows.Scan(&p.Name, &p.Team, &tee, &p.HandicapIndex, &p.CourseHandicap, &holeCount); err != nil {
			rows.Close()
			return nil, err
		}
		p.Tee = tee.String
		p.Scores = make([]int, holeCount)
		index[p.Name] = len(m.Players)
		m.Players = append(m.Players, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT player, hole, strokes FROM hole_scores WHERE match_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var player string
		var hole, strokes int
		if err := rows.Scan(&player, &hole, &strokes); err != nil {
			return nil, err
		}
		i, ok := index[player]
		if !ok || hole < 1 || hole > len(m.Players[i].Scores) {
			continue
		}
		m.Players[i].Scores[hole-1] = strokes
	}
	return &m, rows.Err()
}

// ListMatches returns all matches, oldest first.
func (s *Store) ListMatches(ctx context.Context) ([]wager.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.queryIDs(ctx, "SELECT id FROM matches ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	matches := make([]wager.Match, 0, len(ids))
	for _, id := range ids {
		m, err := s.getMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, nil
}

// SetScore records strokes on a 1-based hole. Zero clears the score.
func (s *Store) SetScore(ctx context.Context, matchID, player string, hole, strokes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	// Same validation as the in-memory match.
	if err := m.SetScore(player, hole, strokes); err != nil {
		return err
	}

	if strokes == 0 {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM hole_scores WHERE match_id = ? AND player = ? AND hole = ?",
			matchID, player, hole,
		)
		if err != nil {
			return fmt.Errorf("failed to clear score: %w", err)
		}
		return nil
	}
	return putScore(ctx, s.db, matchID, player, hole, strokes)
}

func putScore(ctx context.Context, db execer, matchID, player string, hole, strokes int) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO hole_scores (match_id, player, hole, strokes) VALUES (?, ?, ?, ?)
		ON CONFLICT(match_id, player, hole) DO UPDATE SET strokes = excluded.strokes
	`, matchID, player, hole, strokes)
	if err != nil {
		return fmt.Errorf("failed to save score: %w", err)
	}
	return nil
}

// =============================================================================
// SETTLEMENT HISTORY
// =============================================================================

// AppendSettlementRun stores a settlement computation. Append-only.
func (s *Store) AppendSettlementRun(ctx context.Context, run wager.SettlementRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM matches WHERE id = ?", run.MatchID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check match: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", wager.ErrMatchNotFound, run.MatchID)
	}

	obligations, err := json.Marshal(run.Obligations)
	if err != nil {
		return fmt.Errorf("failed to encode obligations: %w", err)
	}
	consolidated, err := json.Marshal(run.Consolidated)
	if err != nil {
		return fmt.Errorf("failed to encode settlement: %w", err)
	}
	createdAt := run.CreatedAt
	if createdAt == "" {
		createdAt = now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settlement_runs (id, match_id, obligations_json, consolidated_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.MatchID, string(obligations), string(consolidated), createdAt)
	if err != nil {
		return fmt.Errorf("failed to append settlement run: %w", err)
	}
	return nil
}

// SettlementRuns returns a match's runs, oldest first.
func (s *Store) SettlementRuns(ctx context.Context, matchID string) ([]wager.SettlementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM matches WHERE id = ?", matchID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check match: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", wager.ErrMatchNotFound, matchID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, match_id, obligations_json, consolidated_json, created_at
		FROM settlement_runs WHERE match_id = ?
		ORDER BY created_at, rowid
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement runs: %w", err)
	}
	defer rows.Close()

	runs := []wager.SettlementRun{}
	for rows.Next() {
		var run wager.SettlementRun
		var obligations, consolidated string
		if err := rows.Scan(&run.ID, &run.MatchID, &obligations, &consolidated, &run.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(obligations), &run.Obligations); err != nil {
			return nil, fmt.Errorf("failed to decode obligations: %w", err)
		}
		if err := json.Unmarshal([]byte(consolidated), &run.Consolidated); err != nil {
			return nil, fmt.Errorf("failed to decode settlement: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"settlement_runs", "hole_scores", "match_players", "matches",
		"players", "tees", "holes", "courses",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

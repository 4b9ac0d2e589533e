/*
errors.go - Centralized error types for the wager engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Business outcomes (ties, no obligations, nothing enabled) are never
  errors. Errors are reserved for contract violations such as negative
  stakes, and for persistence lookups.

ERROR CATEGORIES:
  1. Contract errors - Negative stakes, malformed configs
  2. Input errors - Unparseable wager text, bad scores, duplicate players
  3. Store errors - Missing matches, courses, players

USAGE:
  if errors.Is(err, wager.ErrNegativeStake) {
      // caller passed a negative amount
  }

SEE ALSO:
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package wager

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNegativeStake is returned when a stake is below zero.
	ErrNegativeStake = errors.New("negative stake")

	// ErrInvalidConfig is returned when a wager config is malformed.
	ErrInvalidConfig = errors.New("invalid wager config")

	// ErrUnparseableWager is returned when no bet could be read from text.
	// Callers should ask the user again rather than settle a zero-stakes match.
	ErrUnparseableWager = errors.New("no recognizable wager")

	// ErrInvalidScore is returned when a hole score cannot be recorded.
	ErrInvalidScore = errors.New("invalid score")

	// ErrDuplicatePlayer is returned when two players in a match share a name.
	ErrDuplicatePlayer = errors.New("duplicate player name")

	// ErrMatchNotFound is returned when a referenced match doesn't exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrCourseNotFound is returned when a referenced course doesn't exist.
	ErrCourseNotFound = errors.New("course not found")

	// ErrPlayerNotFound is returned when a referenced player doesn't exist.
	ErrPlayerNotFound = errors.New("player not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StakeError reports a negative stake for a game.
type StakeError struct {
	Game   Game
	Amount decimal.Decimal
}

func (e *StakeError) Error() string {
	return fmt.Sprintf("negative stake for %s: %s", e.Game, e.Amount)
}

func (e *StakeError) Unwrap() error {
	return ErrNegativeStake
}

// ConfigError reports a malformed wager config field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid wager config %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ScoreError reports a score that cannot be recorded.
type ScoreError struct {
	Player  string
	Hole    int
	Strokes int
	Reason  string
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("invalid score %d for %s on hole %d: %s", e.Strokes, e.Player, e.Hole, e.Reason)
}

func (e *ScoreError) Unwrap() error {
	return ErrInvalidScore
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNegativeStake) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrUnparseableWager) ||
		errors.Is(err, ErrInvalidScore) ||
		errors.Is(err, ErrDuplicatePlayer)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMatchNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrPlayerNotFound)
}

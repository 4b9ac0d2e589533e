/*
Package matchfile reads self-contained match descriptions.

PURPOSE:
  A match file carries everything needed to settle one round without a
  database: the course, the roster with hole scores, and the bets, either
  as free text or as a structured config. The CLI settles match files
  directly and the API loads the embedded ones as demo scenarios.

FORMAT (YAML; JSON with the same keys also works):
  id: saturday
  name: Saturday four-ball
  wager: "$5 Nassau, $2 skins"      # or config: {amounts: {nassau: 5}}
  handicaps: full                   # none | full | three_quarter | half
  course:
    name: Old Links
    pars: [4, 4, 3, 5, ...]
    handicap_ranks: [7, 1, 15, ...] # optional
    tees: [{color: white, rating: 70.1, slope: 121}]
  players:
    - {name: Alice, team: A, tee: white, handicap_index: 8.2, scores: [4, 5, ...]}

  Scores shorter than the course are padded with zeros (not yet played).

SEE ALSO:
  - scenarios.go: Embedded demo files
  - cmd/wagerctl/settle.go: Settles a file from the command line
*/
package matchfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/wager-engine/games"
	"github.com/warp/wager-engine/parser"
	"github.com/warp/wager-engine/wager"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// FILE TYPES
// =============================================================================

// File is one match description.
type File struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Wager       string             `yaml:"wager,omitempty" json:"wager,omitempty"`
	Config      *parser.ConfigJSON `yaml:"config,omitempty" json:"config,omitempty"`
	Handicaps   wager.HandicapMode `yaml:"handicaps,omitempty" json:"handicaps,omitempty"`
	Course      Course             `yaml:"course" json:"course"`
	Players     []Player           `yaml:"players" json:"players"`
}

// Course is the course section of a match file.
type Course struct {
	ID            string      `yaml:"id,omitempty" json:"id,omitempty"`
	Name          string      `yaml:"name" json:"name"`
	Pars          []int       `yaml:"pars" json:"pars"`
	HandicapRanks []int       `yaml:"handicap_ranks,omitempty" json:"handicap_ranks,omitempty"`
	Tees          []wager.Tee `yaml:"tees,omitempty" json:"tees,omitempty"`
}

// Player is one roster entry of a match file.
type Player struct {
	Name          string  `yaml:"name" json:"name"`
	Team          string  `yaml:"team" json:"team"`
	Tee           string  `yaml:"tee,omitempty" json:"tee,omitempty"`
	HandicapIndex float64 `yaml:"handicap_index,omitempty" json:"handicap_index,omitempty"`
	Scores        []int   `yaml:"scores" json:"scores"`
}

// Round is a match file resolved into store records.
type Round struct {
	Course wager.Course
	Match  wager.Match
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a match file. ".json" files are decoded as JSON, anything
// else as YAML.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read match file: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Decode(data, format)
}

// Decode parses match file content in the given format ("yaml" or "json").
func Decode(data []byte, format string) (*File, error) {
	var f File
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &f)
	case "yaml", "yml", "":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported match file format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode match file: %v", wager.ErrInvalidConfig, err)
	}
	return &f, nil
}

// =============================================================================
// RESOLUTION
// =============================================================================

// WagerConfig resolves the bets. A structured config wins over wager text.
// Text with no recognizable bet is an error, never a zero-stakes match.
func (f *File) WagerConfig() (wager.WagerConfig, error) {
	if f.Config != nil {
		return parser.FromJSON(*f.Config)
	}
	return parser.ParseStrict(f.Wager)
}

// Validate checks the file's structure.
func (f *File) Validate() error {
	if len(f.Course.Pars) == 0 {
		return &wager.ConfigError{Field: "course.pars", Message: "at least one hole is required"}
	}
	if n := len(f.Course.HandicapRanks); n != 0 && n != len(f.Course.Pars) {
		return &wager.ConfigError{Field: "course.handicap_ranks", Message: "must have one rank per hole"}
	}
	if err := wager.ValidateHoles(f.holes()); err != nil {
		return err
	}
	if len(f.Players) == 0 {
		return &wager.ConfigError{Field: "players", Message: "at least one player is required"}
	}
	for _, p := range f.Players {
		if len(p.Scores) > len(f.Course.Pars) {
			return &wager.ConfigError{Field: "players", Message: fmt.Sprintf("%s has more scores than holes", p.Name)}
		}
		for i, s := range p.Scores {
			if s < 0 {
				return &wager.ScoreError{Player: p.Name, Hole: i + 1, Strokes: s, Reason: "strokes cannot be negative"}
			}
		}
	}
	if !f.Handicaps.Valid() {
		return &wager.ConfigError{Field: "handicaps", Message: "unknown mode " + string(f.Handicaps)}
	}
	return nil
}

// holes numbers the course's holes from 1.
func (f *File) holes() []wager.Hole {
	holes := make([]wager.Hole, len(f.Course.Pars))
	for i, par := range f.Course.Pars {
		holes[i] = wager.Hole{Number: i + 1, Par: par}
		if i < len(f.Course.HandicapRanks) {
			holes[i].HandicapRank = f.Course.HandicapRanks[i]
		}
	}
	return holes
}

// Build validates the file and resolves it into a course and a match.
// Course handicaps are computed from each player's index and tee.
func (f *File) Build() (Round, error) {
	if err := f.Validate(); err != nil {
		return Round{}, err
	}
	cfg, err := f.WagerConfig()
	if err != nil {
		return Round{}, err
	}

	course := wager.Course{
		ID:   f.Course.ID,
		Name: f.Course.Name,
		Tees: append([]wager.Tee(nil), f.Course.Tees...),
	}
	if course.ID == "" {
		course.ID = slug(f.Course.Name)
	}
	course.Holes = f.holes()

	match := wager.Match{
		ID:        f.ID,
		Name:      f.Name,
		CourseID:  course.ID,
		WagerText: f.Wager,
		Config:    cfg,
		Handicaps: f.Handicaps,
	}
	if match.ID == "" {
		match.ID = slug(f.Name)
	}
	for _, p := range f.Players {
		scores := make([]int, len(course.Holes))
		copy(scores, p.Scores)
		match.Players = append(match.Players, wager.MatchPlayer{
			PlayerRef:      wager.PlayerRef{Name: p.Name, Team: p.Team},
			Tee:            p.Tee,
			HandicapIndex:  p.HandicapIndex,
			CourseHandicap: games.CourseHandicap(p.HandicapIndex, course.Tee(p.Tee)),
			Scores:         scores,
		})
	}
	if err := match.ValidateRoster(); err != nil {
		return Round{}, err
	}

	return Round{Course: course, Match: match}, nil
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

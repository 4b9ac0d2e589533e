/*
game.go - Game kinds and their settlement order

PURPOSE:
  Names the side games the engine can settle. The order of SettlementOrder
  is the order the orchestrator runs calculators in, which in turn fixes
  the order of raw obligations and of the aggregated settlement reasons.

SEE ALSO:
  - types.go: WagerConfig uses Game as its map key
  - engine/settle.go: Runs calculators in SettlementOrder
*/
package wager

import "strings"

// Game is a kind of side bet.
type Game string

const (
	GameNassau  Game = "nassau"
	GameSkins   Game = "skins"
	GameBirdies Game = "birdies"
	GameEagles  Game = "eagles"
)

// SettlementOrder is the fixed calculator order.
var SettlementOrder = []Game{GameNassau, GameSkins, GameBirdies, GameEagles}

// Valid reports whether g is a known game.
func (g Game) Valid() bool {
	for _, x := range SettlementOrder {
		if x == g {
			return true
		}
	}
	return false
}

// Label is the display name of the game.
func (g Game) Label() string {
	switch g {
	case GameNassau:
		return "Nassau"
	case GameSkins:
		return "Skins"
	case GameBirdies:
		return "Birdies"
	case GameEagles:
		return "Eagles"
	}
	return string(g)
}

// LookupGame resolves a game by name, accepting singular forms.
func LookupGame(name string) (Game, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nassau":
		return GameNassau, true
	case "skins", "skin":
		return GameSkins, true
	case "birdies", "birdie":
		return GameBirdies, true
	case "eagles", "eagle":
		return GameEagles, true
	}
	return "", false
}

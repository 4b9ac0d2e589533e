package parser

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/wager"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the wire form of a WagerConfig. Amounts are plain numbers
// keyed by game name so configs can be written by hand:
//
//	{"games": ["nassau", "skins"], "amounts": {"nassau": 5, "skins": 2}}
//	{"amounts": {"nassau": 5}, "nassau_split": {"front": 5, "back": 5, "total": 10}}
type ConfigJSON struct {
	Games       []string           `json:"games,omitempty" yaml:"games,omitempty"`
	Amounts     map[string]float64 `json:"amounts" yaml:"amounts"`
	NassauSplit *SplitJSON         `json:"nassau_split,omitempty" yaml:"nassau_split,omitempty"`
	Bets        []string           `json:"bets,omitempty" yaml:"bets,omitempty"`
}

// SplitJSON holds per-segment Nassau stakes.
type SplitJSON struct {
	Front float64 `json:"front" yaml:"front"`
	Back  float64 `json:"back" yaml:"back"`
	Total float64 `json:"total" yaml:"total"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// ParseConfig decodes a JSON config and normalizes it.
func ParseConfig(data []byte) (wager.WagerConfig, error) {
	var cj ConfigJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return wager.WagerConfig{}, fmt.Errorf("%w: failed to parse config JSON: %v", wager.ErrInvalidConfig, err)
	}
	return FromJSON(cj)
}

// FromJSON converts the wire form to a WagerConfig.
//
// Game names are resolved leniently ("skin", "Birdie"). A game with a
// positive amount is enabled even when Games omits it. Games come back in
// settlement order and Bets is regenerated when absent.
func FromJSON(cj ConfigJSON) (wager.WagerConfig, error) {
	cfg := wager.WagerConfig{Amounts: make(map[wager.Game]decimal.Decimal)}

	listed := make(map[wager.Game]bool)
	for _, name := range cj.Games {
		g, ok := wager.LookupGame(name)
		if !ok {
			return wager.WagerConfig{}, &wager.ConfigError{Field: "games", Message: "unknown game " + name}
		}
		listed[g] = true
	}
	for name, amount := range cj.Amounts {
		g, ok := wager.LookupGame(name)
		if !ok {
			return wager.WagerConfig{}, &wager.ConfigError{Field: "amounts", Message: "unknown game " + name}
		}
		cfg.Amounts[g] = decimal.NewFromFloat(amount)
		if amount > 0 {
			listed[g] = true
		}
	}
	if s := cj.NassauSplit; s != nil {
		cfg.NassauSplit = &wager.NassauSplit{
			Front: decimal.NewFromFloat(s.Front),
			Back:  decimal.NewFromFloat(s.Back),
			Total: decimal.NewFromFloat(s.Total),
		}
		if _, ok := cfg.Amounts[wager.GameNassau]; !ok {
			cfg.Amounts[wager.GameNassau] = cfg.NassauSplit.Max()
		}
		if cfg.NassauSplit.Max().IsPositive() {
			listed[wager.GameNassau] = true
		}
	}

	for _, g := range wager.SettlementOrder {
		if listed[g] {
			cfg.Games = append(cfg.Games, g)
		}
	}
	if err := cfg.Validate(); err != nil {
		return wager.WagerConfig{}, err
	}

	cfg.Bets = cj.Bets
	if len(cfg.Bets) == 0 {
		cfg.Bets = Phrases(cfg)
	}
	return cfg, nil
}

// ToJSON converts a WagerConfig to its wire form.
func ToJSON(cfg wager.WagerConfig) ConfigJSON {
	cj := ConfigJSON{
		Amounts: make(map[string]float64, len(cfg.Amounts)),
		Bets:    cfg.Bets,
	}
	for _, g := range cfg.Games {
		cj.Games = append(cj.Games, string(g))
	}
	for g, amount := range cfg.Amounts {
		cj.Amounts[string(g)] = amount.InexactFloat64()
	}
	if s := cfg.NassauSplit; s != nil {
		cj.NassauSplit = &SplitJSON{
			Front: s.Front.InexactFloat64(),
			Back:  s.Back.InexactFloat64(),
			Total: s.Total.InexactFloat64(),
		}
	}
	return cj
}

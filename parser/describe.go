package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/wager"
)

// Separator joins bet phrases in a description.
const Separator = " • "

// Describe renders the canonical description of a config, the inverse of
// Parse: Parse(Describe(cfg)) is equivalent to cfg for any config Parse
// produced. It returns "" when no game is active.
func Describe(cfg wager.WagerConfig) string {
	return strings.Join(Phrases(cfg), Separator)
}

// Phrases returns one human-readable phrase per active bet, in settlement
// order. Segment-by-segment Nassaus may take more than one phrase.
func Phrases(cfg wager.WagerConfig) []string {
	var phrases []string
	for _, g := range cfg.ActiveGames() {
		amt := cfg.Amount(g)
		switch g {
		case wager.GameNassau:
			phrases = append(phrases, nassauPhrases(cfg)...)
		case wager.GameSkins:
			phrases = append(phrases, fmt.Sprintf("%s Skins per hole", money(amt)))
		case wager.GameBirdies:
			phrases = append(phrases, fmt.Sprintf("%s per Birdie", money(amt)))
		case wager.GameEagles:
			phrases = append(phrases, fmt.Sprintf("%s per Eagle", money(amt)))
		}
	}
	return phrases
}

func nassauPhrases(cfg wager.WagerConfig) []string {
	split := cfg.NassauSplit
	if split == nil {
		return []string{fmt.Sprintf("%s Nassau", money(cfg.Amount(wager.GameNassau)))}
	}
	if cfg.Amount(wager.GameNassau).Equal(split.Front) {
		return []string{fmt.Sprintf("%s/%s/%s Nassau (front/back/total)",
			money(split.Front), money(split.Back), money(split.Total))}
	}

	var phrases []string
	for _, seg := range []struct {
		amount decimal.Decimal
		label  string
	}{
		{split.Front, "front"},
		{split.Back, "back"},
		{split.Total, "overall"},
	} {
		if seg.amount.IsPositive() {
			phrases = append(phrases, fmt.Sprintf("%s %s", money(seg.amount), seg.label))
		}
	}
	return phrases
}

func money(d decimal.Decimal) string {
	return "$" + d.String()
}

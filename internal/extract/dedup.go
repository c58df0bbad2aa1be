// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "github.com/pdiddy/commute-review/pkg/types"

type cardKey struct {
	typ    types.CardType
	prompt string
	answer string
}

// Deduplicate keeps the first card for each (type, prompt, answer) and drops
// later repeats. Surviving cards keep their order and their IDs.
func Deduplicate(cards []types.Card) []types.Card {
	seen := make(map[cardKey]bool, len(cards))
	out := make([]types.Card, 0, len(cards))
	for _, c := range cards {
		key := cardKey{typ: c.Type, prompt: c.Prompt, answer: c.Answer}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

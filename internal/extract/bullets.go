// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

const (
	// bulletMinLen is the normalized length a paragraph must exceed before
	// semicolons are treated as item separators.
	bulletMinLen = 40
	// bulletMinItems is the fewest non-empty pieces that count as a list.
	bulletMinItems = 3
)

// SplitBullets splits a semicolon-delimited list paragraph into its items.
// Short paragraphs and paragraphs with fewer than three non-empty pieces are
// returned whole, so phrases like "a; b" stay together.
func SplitBullets(text string) []string {
	t := Normalize(text)
	if strings.Contains(t, ";") && charLen(t) > bulletMinLen {
		var parts []string
		for _, p := range strings.Split(t, ";") {
			if p = Normalize(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) >= bulletMinItems {
			return parts
		}
	}
	return []string{t}
}

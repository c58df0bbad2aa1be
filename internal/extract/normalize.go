// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode/utf8"
)

// Normalize collapses every run of whitespace to a single space and trims
// both ends. The empty string normalizes to itself.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// charLen counts characters, not bytes, so length thresholds behave the
// same for non-ASCII notes.
func charLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"sort"
	"time"

	"github.com/pdiddy/commute-review/pkg/types"
)

// TimestampLayout renders generated_at as a local ISO-8601 time without zone.
const TimestampLayout = "2006-01-02T15:04:05"

// BuildMeta summarizes cards. Topics is never nil so an empty deck
// serializes as "topics": [].
func BuildMeta(cards []types.Card, sourceFile string, now time.Time) types.DeckMeta {
	set := make(map[string]bool)
	for _, c := range cards {
		set[c.Topic] = true
	}
	topics := make([]string, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	return types.DeckMeta{
		GeneratedAt: now.Format(TimestampLayout),
		SourceFile:  sourceFile,
		CardCount:   len(cards),
		Topics:      topics,
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/commute-review/pkg/types"
)

// DefaultHeadingStyle is the only paragraph style that starts a new topic.
const DefaultHeadingStyle = "Heading 1"

// IsHeading reports whether a paragraph styled style opens a new topic.
// The trimmed style must equal headingStyle exactly; lower heading levels
// are ordinary body text.
func IsHeading(style, headingStyle string) bool {
	return strings.TrimSpace(style) == headingStyle
}

// Segment groups paragraphs into topic sections in document order.
// Paragraphs before the first heading land in a "General" section. Blank
// paragraphs are dropped and sections without items are discarded.
func Segment(paragraphs []types.Paragraph, headingStyle string) []types.Section {
	var sections []types.Section
	current := types.Section{Title: types.DefaultTopic}

	for _, p := range paragraphs {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if IsHeading(p.Style, headingStyle) {
			if len(current.Items) > 0 {
				sections = append(sections, current)
			}
			current = types.Section{Title: text}
			continue
		}
		current.Items = append(current.Items, text)
	}

	if len(current.Items) > 0 {
		sections = append(sections, current)
	}
	return sections
}

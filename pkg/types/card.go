// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CardType is the shape of a study card.
type CardType string

const (
	CardQA     CardType = "qa"
	CardCloze  CardType = "cloze"
	CardRecall CardType = "recall"
)

// SourceDocx is the provenance tag carried by every generated card.
const SourceDocx = "docx"

// DefaultTopic titles the section that collects paragraphs appearing before
// the first top-level heading.
const DefaultTopic = "General"

// Paragraph is one unit yielded by a document reader, in document order.
// Style is the paragraph's named style and may be empty; Text is raw and may
// be blank.
type Paragraph struct {
	Style string `json:"style" yaml:"style"`
	Text  string `json:"text" yaml:"text"`
}

// Section groups the body items that follow one top-level heading.
type Section struct {
	Title string   `json:"title" yaml:"title"`
	Items []string `json:"items" yaml:"items"`
}

// Card is a single study card. Prompt and Answer are always whitespace
// normalized. ID is assigned in generation order before deduplication, so a
// deck may have gaps in its IDs.
type Card struct {
	ID     string   `json:"id" yaml:"id"`
	Type   CardType `json:"type" yaml:"type"`
	Topic  string   `json:"topic" yaml:"topic"`
	Prompt string   `json:"prompt" yaml:"prompt"`
	Answer string   `json:"answer" yaml:"answer"`
	Source string   `json:"source" yaml:"source"`
}

// DeckMeta summarizes a deck. CardCount and Topics are derived from the cards
// once, when the deck is built.
type DeckMeta struct {
	// GeneratedAt is a local ISO-8601 timestamp with second precision.
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`

	// SourceFile is the base name of the input document.
	SourceFile string `json:"source_file" yaml:"source_file"`

	CardCount int `json:"card_count" yaml:"card_count"`

	// Topics is the sorted set of distinct card topics.
	Topics []string `json:"topics" yaml:"topics"`
}

// Deck is the output artifact of one conversion.
type Deck struct {
	Meta  DeckMeta `json:"meta" yaml:"meta"`
	Cards []Card   `json:"cards" yaml:"cards"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a document's paragraph stream into a deduplicated
// deck of study cards.
//
// The pipeline is sequential: paragraphs are segmented into topic sections,
// each section item is split into lines, each line is classified into zero
// or more cards, cards are numbered in generation order, then exact
// duplicates are dropped and the deck metadata is computed.
package extract

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/commute-review/pkg/types"
)

// Pipeline converts paragraphs into decks. A Pipeline holds configuration
// only; every call to Run or Extract starts its own ID sequence, so one
// Pipeline may be shared across documents and goroutines.
type Pipeline struct {
	headingStyle string
	log          *zap.Logger

	// now is the clock used for generated_at. Tests override it.
	now func() time.Time
}

// New returns a Pipeline for cfg. An empty heading style falls back to
// DefaultHeadingStyle and a nil logger discards diagnostics.
func New(cfg types.BuildConfig, log *zap.Logger) *Pipeline {
	headingStyle := cfg.HeadingStyle
	if headingStyle == "" {
		headingStyle = DefaultHeadingStyle
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		headingStyle: headingStyle,
		log:          log,
		now:          time.Now,
	}
}

// Run builds the deck for one document. sourceFile is recorded as the deck's
// source_file.
func (p *Pipeline) Run(paragraphs []types.Paragraph, sourceFile string) types.Deck {
	sections := Segment(paragraphs, p.headingStyle)
	generated := p.Extract(sections)
	cards := Deduplicate(generated)

	p.log.Debug("deck built",
		zap.String("source", sourceFile),
		zap.Int("sections", len(sections)),
		zap.Int("generated", len(generated)),
		zap.Int("duplicates", len(generated)-len(cards)),
	)

	return types.Deck{
		Meta:  BuildMeta(cards, sourceFile, p.now()),
		Cards: cards,
	}
}

// Extract classifies every item of every section and numbers the resulting
// cards c00001, c00002, ... in generation order. Duplicates are kept.
func (p *Pipeline) Extract(sections []types.Section) []types.Card {
	var ids idSequence
	cards := []types.Card{}

	for _, sec := range sections {
		p.log.Debug("section", zap.String("topic", sec.Title), zap.Int("items", len(sec.Items)))
		for _, item := range sec.Items {
			for _, line := range SplitBullets(item) {
				name, drafts := classify(Normalize(line))
				if len(drafts) == 0 {
					continue
				}
				for _, c := range toCards(drafts, sec.Title) {
					c.ID = ids.next()
					p.log.Debug("card", zap.String("id", c.ID), zap.String("rule", name))
					cards = append(cards, c)
				}
			}
		}
	}
	return cards
}

// idSequence hands out card IDs for a single run.
type idSequence struct {
	n int
}

func (s *idSequence) next() string {
	s.n++
	return fmt.Sprintf("c%05d", s.n)
}

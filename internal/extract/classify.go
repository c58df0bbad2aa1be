// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/commute-review/pkg/types"
)

const (
	// blank replaces hidden text in cloze prompts.
	blank = "_____"
	arrow = "→"

	recallPrompt = "Recall this key point:"

	colonMaxTermWords = 12
	colonMinDefLen    = 10
	recallMinLen      = 25
	recallMaxLen      = 220
)

var (
	clozeSpan = regexp.MustCompile(`\{\{(.*?)\}\}`)

	// equalsLine and colonLine take the shortest 2-120 character term before
	// the separator and a definition of at least 8 characters after it.
	equalsLine = regexp.MustCompile(`^(.{2,120}?)\s*=\s*(.{8,})$`)
	colonLine  = regexp.MustCompile(`^(.{2,120}?)\s*:\s*(.{8,})$`)

	recallMarkers = []string{" is ", " are ", " refers to", " suggests", " explains", " occurs", " means"}
)

// draft is a card body before topic, provenance and ID are attached.
type draft struct {
	typ    types.CardType
	prompt string
	answer string
}

// rule turns one normalized line into drafts. A rule that returns no drafts
// did not match and the next rule is tried.
type rule struct {
	name  string
	apply func(line string) []draft
}

// rules are evaluated in order; the first rule that emits anything wins.
var rules = []rule{
	{name: "cloze", apply: clozeMarkers},
	{name: "equals", apply: equalsDefinition},
	{name: "colon", apply: colonDefinition},
	{name: "arrow", apply: arrowChain},
	{name: "recall", apply: recallStatement},
}

// Classify turns a line of body text into zero or more cards for topic.
// The returned cards carry no ID.
func Classify(line, topic string) []types.Card {
	_, drafts := classify(Normalize(line))
	return toCards(drafts, topic)
}

// classify returns the name of the matching rule and its drafts, or "" and
// nil when no rule applies.
func classify(line string) (string, []draft) {
	if line == "" {
		return "", nil
	}
	for _, r := range rules {
		if drafts := r.apply(line); len(drafts) > 0 {
			return r.name, drafts
		}
	}
	return "", nil
}

func toCards(drafts []draft, topic string) []types.Card {
	cards := make([]types.Card, 0, len(drafts))
	for _, d := range drafts {
		cards = append(cards, types.Card{
			Type:   d.typ,
			Topic:  topic,
			Prompt: d.prompt,
			Answer: d.answer,
			Source: types.SourceDocx,
		})
	}
	return cards
}

// clozeMarkers blanks every {{...}} span. The hidden texts, joined with
// "; ", form the answer.
func clozeMarkers(line string) []draft {
	spans := clozeSpan.FindAllStringSubmatch(line, -1)
	if len(spans) == 0 {
		return nil
	}
	answers := make([]string, len(spans))
	for i, m := range spans {
		answers[i] = Normalize(m[1])
	}
	prompt := Normalize(clozeSpan.ReplaceAllLiteralString(line, blank))
	return []draft{{
		typ:    types.CardCloze,
		prompt: prompt,
		answer: strings.Join(answers, "; "),
	}}
}

// equalsDefinition handles "term = definition" and asks in both directions.
func equalsDefinition(line string) []draft {
	m := equalsLine.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	term, definition := Normalize(m[1]), Normalize(m[2])
	return []draft{
		{typ: types.CardQA, prompt: "Define: " + term, answer: definition},
		{typ: types.CardCloze, prompt: blank + ": " + definition, answer: term},
	}
}

// colonDefinition handles "term: definition". Terms mentioning "e.g.",
// terms over 12 words and definitions under 10 characters are left to the
// later rules.
func colonDefinition(line string) []draft {
	m := colonLine.FindStringSubmatch(line)
	if m == nil || strings.Contains(strings.ToLower(m[1]), "e.g.") {
		return nil
	}
	term, definition := Normalize(m[1]), Normalize(m[2])
	if len(strings.Fields(term)) > colonMaxTermWords || charLen(definition) < colonMinDefLen {
		return nil
	}
	return []draft{
		{typ: types.CardQA, prompt: "What is " + term + "?", answer: definition},
		{typ: types.CardCloze, prompt: term + ": " + blank, answer: definition},
	}
}

// arrowChain handles "a → b → c": the first step is shown, the rest hidden.
func arrowChain(line string) []draft {
	if !strings.Contains(line, arrow) {
		return nil
	}
	var steps []string
	for _, s := range strings.Split(line, arrow) {
		if s = Normalize(s); s != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) < 2 {
		return nil
	}
	return []draft{{
		typ:    types.CardCloze,
		prompt: steps[0] + " " + arrow + " " + blank,
		answer: strings.Join(steps[1:], " "+arrow+" "),
	}}
}

// recallStatement keeps medium-length explanatory sentences as free-recall
// cards.
func recallStatement(line string) []draft {
	if n := charLen(line); n < recallMinLen || n > recallMaxLen {
		return nil
	}
	lower := strings.ToLower(line)
	for _, marker := range recallMarkers {
		if strings.Contains(lower, marker) {
			return []draft{{typ: types.CardRecall, prompt: recallPrompt, answer: line}}
		}
	}
	return nil
}

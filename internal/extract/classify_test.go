// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/commute-review/pkg/types"
)

type wantCard struct {
	typ    types.CardType
	prompt string
	answer string
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []wantCard
	}{
		{
			name: "single cloze span",
			line: "X {{Y}} Z",
			want: []wantCard{{types.CardCloze, "X _____ Z", "Y"}},
		},
		{
			name: "multiple cloze spans joined",
			line: "The {{mitochondria}} is the {{powerhouse}} of the cell",
			want: []wantCard{{types.CardCloze, "The _____ is the _____ of the cell", "mitochondria; powerhouse"}},
		},
		{
			name: "cloze answer is normalized",
			line: "Water boils at {{ 100  degrees }} at sea level",
			want: []wantCard{{types.CardCloze, "Water boils at _____ at sea level", "100 degrees"}},
		},
		{
			name: "cloze wins over equality",
			line: "{{E}} = mc squared energy",
			want: []wantCard{{types.CardCloze, "_____ = mc squared energy", "E"}},
		},
		{
			name: "closing marker before opening marker is not a span",
			line: "odd }} markers {{ here",
			want: nil,
		},
		{
			name: "equality emits qa and reverse cloze",
			line: "Term = a long enough definition",
			want: []wantCard{
				{types.CardQA, "Define: Term", "a long enough definition"},
				{types.CardCloze, "_____: a long enough definition", "Term"},
			},
		},
		{
			name: "equality wins over colon",
			line: "Speed: distance = rate over time units",
			want: []wantCard{
				{types.CardQA, "Define: Speed: distance", "rate over time units"},
				{types.CardCloze, "_____: rate over time units", "Speed: distance"},
			},
		},
		{
			name: "equality definition too short",
			line: "x = short",
			want: nil,
		},
		{
			name: "colon emits qa and cloze",
			line: "Photosynthesis: conversion of light energy into chemical energy",
			want: []wantCard{
				{types.CardQA, "What is Photosynthesis?", "conversion of light energy into chemical energy"},
				{types.CardCloze, "Photosynthesis: _____", "conversion of light energy into chemical energy"},
			},
		},
		{
			name: "colon term with e.g. is excluded",
			line: "e.g. foo: something long enough",
			want: nil,
		},
		{
			name: "colon term with e.g. falls through to recall",
			line: "E.G. water: this is an example of a solvent",
			want: []wantCard{{types.CardRecall, recallPrompt, "E.G. water: this is an example of a solvent"}},
		},
		{
			name: "colon definition under ten characters emits nothing",
			line: "Mass unit: kilogram",
			want: nil,
		},
		{
			name: "colon term over twelve words falls through to arrow",
			line: "one two three four five six seven eight nine ten eleven twelve thirteen: cause → effect chain",
			want: []wantCard{{
				types.CardCloze,
				"one two three four five six seven eight nine ten eleven twelve thirteen: cause → _____",
				"effect chain",
			}},
		},
		{
			name: "arrow chain",
			line: "Stimulus → Receptor → Response",
			want: []wantCard{{types.CardCloze, "Stimulus → _____", "Receptor → Response"}},
		},
		{
			name: "arrow with a single step",
			line: "→ only",
			want: nil,
		},
		{
			name: "recall statement",
			line: "Osmosis is the movement of water across a membrane",
			want: []wantCard{{types.CardRecall, recallPrompt, "Osmosis is the movement of water across a membrane"}},
		},
		{
			name: "recall marker matched case-insensitively",
			line: "Entropy ALWAYS increases and this EXPLAINS the arrow of time",
			want: []wantCard{{types.CardRecall, recallPrompt, "Entropy ALWAYS increases and this EXPLAINS the arrow of time"}},
		},
		{
			name: "recall too short",
			line: "Sky is blue",
			want: nil,
		},
		{
			name: "recall too long",
			line: strings.Repeat("word ", 44) + "is long",
			want: nil,
		},
		{
			name: "no marker",
			line: "A sentence without any of the recall markers at all",
			want: nil,
		},
		{
			name: "blank line",
			line: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line, "Biology")
			if !assert.Len(t, got, len(tt.want)) {
				return
			}
			for i, w := range tt.want {
				assert.Equal(t, w.typ, got[i].Type, "card %d type", i)
				assert.Equal(t, w.prompt, got[i].Prompt, "card %d prompt", i)
				assert.Equal(t, w.answer, got[i].Answer, "card %d answer", i)
				assert.Equal(t, "Biology", got[i].Topic)
				assert.Equal(t, types.SourceDocx, got[i].Source)
				assert.Empty(t, got[i].ID)
			}
		})
	}
}

func TestClassify_RecallLengthBounds(t *testing.T) {
	// " is " plus padding to hit the exact bounds.
	at := func(n int) string {
		return "x is " + strings.Repeat("y", n-5)
	}
	assert.Empty(t, Classify(at(24), "T"))
	assert.Len(t, Classify(at(25), "T"), 1)
	assert.Len(t, Classify(at(220), "T"), 1)
	assert.Empty(t, Classify(at(221), "T"))
}

func TestClassify_CountsCharactersNotBytes(t *testing.T) {
	// 24 characters but well over 25 bytes.
	line := "水 is " + strings.Repeat("氧", 19)
	assert.Empty(t, Classify(line, "T"))

	line = "水 is " + strings.Repeat("氧", 20)
	assert.Len(t, Classify(line, "T"), 1)
}

func TestClassify_OutputIsNormalized(t *testing.T) {
	for _, line := range []string{
		"  Term   =   a   long enough   definition ",
		"Cell  wall :   rigid layer outside the membrane",
		"A  →  B   →  C",
	} {
		for _, c := range Classify(line, "T") {
			assert.Equal(t, Normalize(c.Prompt), c.Prompt)
			assert.Equal(t, Normalize(c.Answer), c.Answer)
		}
	}
}

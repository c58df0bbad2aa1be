// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"a", "a"},
		{"  a  b\t\tc\n", "a b c"},
		{"line\r\nbreak", "line break"},
		{"non\u00a0breaking", "non breaking"},
		{"光合 作用", "光合 作用"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{
		"", " ", "\t\n", "x", " a  b ", "a b", "{{ y }}  z", "→ a →  b",
	} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestSplitBullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "three items",
			in:   "Mitochondria make energy; Ribosomes build proteins; Nucleus stores DNA",
			want: []string{"Mitochondria make energy", "Ribosomes build proteins", "Nucleus stores DNA"},
		},
		{
			name: "empty pieces discarded",
			in:   "first long item here;; second long item here ; ;third long item here",
			want: []string{"first long item here", "second long item here", "third long item here"},
		},
		{
			name: "two pieces stay whole",
			in:   "this is a fairly long first clause; and a second one",
			want: []string{"this is a fairly long first clause; and a second one"},
		},
		{
			name: "short text stays whole",
			in:   "a; b; c",
			want: []string{"a; b; c"},
		},
		{
			name: "exactly forty characters stays whole",
			in:   "aaaaaaaaaaaa; bbbbbbbbbbbb; cccccccccccc",
			want: []string{"aaaaaaaaaaaa; bbbbbbbbbbbb; cccccccccccc"},
		},
		{
			name: "forty-one characters splits",
			in:   "aaaaaaaaaaaa; bbbbbbbbbbbb; ccccccccccccc",
			want: []string{"aaaaaaaaaaaa", "bbbbbbbbbbbb", "ccccccccccccc"},
		},
		{
			name: "no semicolon",
			in:   "  a long paragraph without any separators in it at all  ",
			want: []string{"a long paragraph without any separators in it at all"},
		},
		{
			name: "length counted in characters",
			in:   "一二三四五;六七八九十;甲乙丙丁戊",
			want: []string{"一二三四五;六七八九十;甲乙丙丁戊"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitBullets(tt.in))
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/commute-review/pkg/types"
)

const (
	styleNormal   = "Normal"
	styleListItem = "List Paragraph"
)

// MarkdownReader reads Markdown or plain text. ATX headings map to
// "Heading N" styles, list items become individual "List Paragraph"
// paragraphs, and consecutive plain lines fold into one "Normal" paragraph.
type MarkdownReader struct{}

// Read implements Reader.
func (MarkdownReader) Read(_ context.Context, path string) ([]types.Paragraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening markdown %s: %w", path, err)
	}
	defer f.Close()

	paras, err := ParseMarkdown(f)
	if err != nil {
		return nil, fmt.Errorf("reading markdown %s: %w", path, err)
	}
	return paras, nil
}

// ParseMarkdown converts Markdown text into paragraphs. A leading YAML
// frontmatter block and HTML comment lines (such as <!-- page 3 -->) are
// skipped.
func ParseMarkdown(r io.Reader) ([]types.Paragraph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		paras []types.Paragraph
		block []string
		first = true
		front bool
	)

	flush := func() {
		if len(block) > 0 {
			paras = append(paras, types.Paragraph{Style: styleNormal, Text: strings.Join(block, " ")})
			block = nil
		}
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if front {
			if line == "---" {
				front = false
			}
			continue
		}
		if first && line != "" {
			first = false
			if line == "---" {
				front = true
				continue
			}
		}

		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "<!--") && strings.HasSuffix(line, "-->"):
			continue
		case isRule(line):
			flush()
		default:
			if level, text, ok := parseHeading(line); ok {
				flush()
				paras = append(paras, types.Paragraph{Style: fmt.Sprintf("Heading %d", level), Text: text})
				continue
			}
			if text, ok := stripListMarker(line); ok {
				flush()
				paras = append(paras, types.Paragraph{Style: styleListItem, Text: text})
				continue
			}
			block = append(block, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return paras, nil
}

// parseHeading recognizes "# Title" through "###### Title".
func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	text := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#"))
	return level, text, true
}

// stripListMarker removes a bullet ("-", "*", "+") or ordinal ("1.", "1)")
// marker.
func stripListMarker(line string) (string, bool) {
	for _, m := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(line[len(m):]), true
		}
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:]), true
	}
	return "", false
}

// isRule reports whether line is a thematic break such as "---" or "***".
func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	c := line[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != c && line[i] != ' ' {
			return false
		}
	}
	return true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/commute-review/pkg/types"
)

const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"

	fallbackStyle = "Normal"
)

// builtinStyleNames maps the lowercase names Word stores for built-in styles
// to the names shown in its UI.
var builtinStyleNames = map[string]string{
	"caption": "Caption",
	"footer":  "Footer",
	"header":  "Header",
}

func init() {
	for i := 1; i <= 9; i++ {
		builtinStyleNames[fmt.Sprintf("heading %d", i)] = fmt.Sprintf("Heading %d", i)
	}
}

// DocxReader reads the body paragraphs of a Word document. Paragraphs inside
// tables and text boxes are not body paragraphs and are skipped.
type DocxReader struct{}

// Read implements Reader.
func (DocxReader) Read(_ context.Context, path string) ([]types.Paragraph, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening docx %s: %w", path, err)
	}
	defer zr.Close()
	return readDocx(&zr.Reader)
}

func readDocx(zr *zip.Reader) ([]types.Paragraph, error) {
	var doc, styles *zip.File
	for _, f := range zr.File {
		switch f.Name {
		case documentPart:
			doc = f
		case stylesPart:
			styles = f
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("not a docx: missing %s", documentPart)
	}

	sm := styleMap{names: map[string]string{}, def: fallbackStyle}
	if styles != nil {
		rc, err := styles.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", stylesPart, err)
		}
		sm, err = parseStyles(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", documentPart, err)
	}
	defer rc.Close()
	return parseDocument(rc, sm)
}

// styleMap resolves paragraph style IDs to display names.
type styleMap struct {
	names map[string]string
	def   string
}

func (m styleMap) name(id string) string {
	if n, ok := m.names[id]; ok {
		return n
	}
	return m.def
}

type stylesXML struct {
	Styles []struct {
		Type    string `xml:"type,attr"`
		Default string `xml:"default,attr"`
		ID      string `xml:"styleId,attr"`
		Name    struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

func parseStyles(r io.Reader) (styleMap, error) {
	var sx stylesXML
	if err := xml.NewDecoder(r).Decode(&sx); err != nil {
		return styleMap{}, fmt.Errorf("parsing %s: %w", stylesPart, err)
	}
	sm := styleMap{names: make(map[string]string, len(sx.Styles)), def: fallbackStyle}
	for _, s := range sx.Styles {
		if s.Type != "" && s.Type != "paragraph" {
			continue
		}
		name := s.Name.Val
		if ui, ok := builtinStyleNames[strings.ToLower(name)]; ok {
			name = ui
		}
		if name == "" {
			name = s.ID
		}
		sm.names[s.ID] = name
		if s.Default == "1" || s.Default == "true" || s.Default == "on" {
			sm.def = name
		}
	}
	return sm, nil
}

// parseDocument walks document.xml and emits one paragraph per w:p that is
// a direct child of w:body.
func parseDocument(r io.Reader, sm styleMap) ([]types.Paragraph, error) {
	dec := xml.NewDecoder(r)

	var (
		paras   []types.Paragraph
		stack   []string
		inPara  bool
		nested  int
		inText  bool
		styleID string
		text    strings.Builder
	)

	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local
			switch {
			case local == "p" && inPara:
				nested++
			case local == "p" && parent() == "body":
				inPara = true
				styleID = ""
				text.Reset()
			case inPara && nested == 0:
				switch {
				case local == "pStyle" && parent() == "pPr":
					styleID = attr(t, "val")
				case local == "t" && parent() == "r":
					inText = true
				case local == "tab" && parent() == "r":
					text.WriteByte('\t')
				case (local == "br" || local == "cr") && parent() == "r":
					text.WriteByte('\n')
				}
			}
			stack = append(stack, local)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "p" && nested > 0:
				nested--
			case t.Name.Local == "p" && inPara:
				paras = append(paras, types.Paragraph{Style: sm.name(styleID), Text: text.String()})
				inPara = false
			}

		case xml.CharData:
			if inText && nested == 0 {
				text.Write(t)
			}
		}
	}
	return paras, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert reads source documents into the ordered (style, text)
// paragraph stream consumed by the extraction pipeline.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/commute-review/internal/container"
	"github.com/pdiddy/commute-review/pkg/types"
)

// Reader turns a document into paragraphs in document order. Different
// backends (native DOCX, Markdown, markitdown) implement this interface.
type Reader interface {
	Read(ctx context.Context, path string) ([]types.Paragraph, error)
}

// Format identifies a document format by its extension.
type Format string

const (
	FormatDocx     Format = "docx"
	FormatMarkdown Format = "markdown"
)

// Detect returns the document format based on the file extension.
func Detect(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		return FormatDocx, nil
	case ".md", ".markdown", ".txt":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q", ext)
	}
}

// AutoReader dispatches on the file extension of each path.
type AutoReader struct {
	Docx     DocxReader
	Markdown MarkdownReader
}

// Read implements Reader.
func (a AutoReader) Read(ctx context.Context, path string) ([]types.Paragraph, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	if format == FormatDocx {
		return a.Docx.Read(ctx, path)
	}
	return a.Markdown.Read(ctx, path)
}

// NewReader returns the reader for backend. The markitdown backend needs a
// working docker or podman runtime with the markitdown image present.
func NewReader(backend types.BuildBackend) (Reader, error) {
	switch backend {
	case types.BackendAuto, "":
		return AutoReader{}, nil
	case types.BackendDocx:
		return DocxReader{}, nil
	case types.BackendMarkdown:
		return MarkdownReader{}, nil
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewMarkitdownReader(rt)
	default:
		return nil, fmt.Errorf("unknown backend %q: use auto, docx, markdown, or markitdown", backend)
	}
}

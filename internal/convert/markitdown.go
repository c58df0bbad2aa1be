// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/commute-review/internal/container"
	"github.com/pdiddy/commute-review/pkg/types"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownReader converts documents to Markdown with the markitdown
// container image and parses the result with ParseMarkdown. Heading levels
// survive the round trip, so "# Topic" still opens a topic.
type MarkitdownReader struct {
	runtime container.Runtime
}

// NewMarkitdownReader verifies that the markitdown image exists in rt.
func NewMarkitdownReader(rt container.Runtime) (*MarkitdownReader, error) {
	if err := rt.ImageExists(context.Background(), imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownReader{runtime: rt}, nil
}

// Read implements Reader.
func (m *MarkitdownReader) Read(ctx context.Context, path string) ([]types.Paragraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var args []string
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext != "" {
		args = []string{"-x", ext}
	}

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, args, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s with markitdown: %w", path, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("markitdown produced empty output for %s", path)
	}

	return ParseMarkdown(&out)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package build reads documents, runs the extraction pipeline and writes
// card decks as JSON, one document or a batch at a time.
package build

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/commute-review/internal/convert"
	"github.com/pdiddy/commute-review/internal/extract"
	"github.com/pdiddy/commute-review/pkg/types"
)

const defaultConcurrency = 4

// Builder wires a document reader to the extraction pipeline.
type Builder struct {
	reader   convert.Reader
	pipeline *extract.Pipeline
	log      *zap.Logger
}

// New returns a Builder. A nil logger discards diagnostics.
func New(reader convert.Reader, pipeline *extract.Pipeline, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{reader: reader, pipeline: pipeline, log: log}
}

// BuildFile converts the document at in and writes its deck to out,
// creating parent directories as needed.
func (b *Builder) BuildFile(ctx context.Context, in, out string) (types.Deck, error) {
	paras, err := b.reader.Read(ctx, in)
	if err != nil {
		return types.Deck{}, fmt.Errorf("reading %s: %w", in, err)
	}
	b.log.Debug("document read", zap.String("path", in), zap.Int("paragraphs", len(paras)))

	deck := b.pipeline.Run(paras, filepath.Base(in))
	if err := WriteDeck(out, deck); err != nil {
		return types.Deck{}, err
	}
	return deck, nil
}

// WriteDeck writes deck as indented UTF-8 JSON. Non-ASCII text and HTML
// characters are written as-is. The file is replaced atomically.
func WriteDeck(path string, deck types.Deck) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(deck); err != nil {
		return fmt.Errorf("marshaling deck: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ReadDeck loads a deck written by WriteDeck.
func ReadDeck(path string) (types.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Deck{}, fmt.Errorf("reading deck %s: %w", path, err)
	}
	var deck types.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return types.Deck{}, fmt.Errorf("parsing deck %s: %w", path, err)
	}
	return deck, nil
}

// BatchResult holds the outcome of a batch build.
type BatchResult struct {
	Built   int
	Skipped int
	Failed  int
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Built + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

type outcome struct {
	name   string
	status string
	cards  int
	err    error
}

// BuildBatch builds every input into outDir/<name>.json, where name is the
// input's base name without extension. Inputs whose deck is newer than the
// document are skipped. Up to concurrency documents are built at once;
// status lines are written to w in input order.
func (b *Builder) BuildBatch(ctx context.Context, inputs []string, outDir string, concurrency int, w io.Writer) (BatchResult, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	outcomes := make([]outcome, len(inputs))
	owner := make(map[string]string, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, in := range inputs {
		name := DeckName(in)
		outcomes[i].name = name
		if prev, ok := owner[name]; ok {
			outcomes[i].status = "failed"
			outcomes[i].err = fmt.Errorf("deck name %q already used by %s", name, prev)
			continue
		}
		owner[name] = in

		out := filepath.Join(outDir, name+".json")
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed, err := hasChanged(in, out)
			if err != nil {
				outcomes[i].status, outcomes[i].err = "failed", err
				return nil
			}
			if !changed {
				outcomes[i].status = "skipped"
				return nil
			}
			deck, err := b.BuildFile(gctx, in, out)
			if err != nil {
				outcomes[i].status, outcomes[i].err = "failed", err
				return nil
			}
			outcomes[i].status, outcomes[i].cards = "built", deck.Meta.CardCount
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, o := range outcomes {
		switch o.status {
		case "built":
			fmt.Fprintf(w, "built %s (%d cards)\n", o.name, o.cards)
			result.Built++
		case "skipped":
			fmt.Fprintf(w, "skipped %s\n", o.name)
			result.Skipped++
		default:
			fmt.Fprintf(w, "failed  %s: %v\n", o.name, o.err)
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d built, %d skipped, %d failed (total: %d)\n",
		result.Built, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// DeckName derives a deck name from a document path.
func DeckName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CollectInputs expands directories into the supported documents they
// contain (non-recursive, sorted). Files are kept as given. Word lock files
// ("~$notes.docx") and hidden files are ignored.
func CollectInputs(paths []string) ([]string, error) {
	var inputs []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
				continue
			}
			if _, err := convert.Detect(name); err != nil {
				continue
			}
			found = append(found, filepath.Join(p, name))
		}
		sort.Strings(found)
		inputs = append(inputs, found...)
	}
	return inputs, nil
}

// hasChanged reports whether the document is newer than its deck. A missing
// deck counts as changed.
func hasChanged(in, out string) (bool, error) {
	inInfo, err := os.Stat(in)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", in, err)
	}
	outInfo, err := os.Stat(out)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", out, err)
	}
	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commute-review/internal/build"
	"github.com/pdiddy/commute-review/internal/convert"
	"github.com/pdiddy/commute-review/internal/extract"
	"github.com/pdiddy/commute-review/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build <input> <output>",
	Short: "Convert one document into a card deck",
	Long: `Build reads a document, splits it into topics at each top-level heading,
turns definitions, cloze markers, arrow chains, and key statements into
cards, drops exact duplicates, and writes the deck as JSON to <output>.
Parent directories of <output> are created as needed.`,
	Args: exactArgs(2),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := newBuilder(cfg.Build)
	if err != nil {
		return err
	}

	deck, err := b.BuildFile(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cards -> %s\n", deck.Meta.CardCount, args[1])
	return nil
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir|file>...",
	Short: "Build decks for many documents",
	Long: `Batch builds a deck for every document given, expanding directories to
the .docx, .md, .markdown, and .txt files they contain. Each deck is written
to <out-dir>/<name>.json (default: <deck-dir>/built, where deck store finds
it). Documents whose deck is newer than the document are skipped.`,
	Args: minArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = filepath.Join(cfg.Deck.Dir, "built")
	}

	inputs, err := build.CollectInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no documents found in %v", args)
	}

	b, err := newBuilder(cfg.Build)
	if err != nil {
		return err
	}
	result, err := b.BuildBatch(cmd.Context(), inputs, outDir, cfg.Build.Concurrency, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed", result.Failed)
	}
	return nil
}

func newBuilder(cfg types.BuildConfig) (*build.Builder, error) {
	reader, err := convert.NewReader(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return build.New(reader, extract.New(cfg, logger), logger), nil
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("heading-style", "Heading 1", "paragraph style that starts a new topic")
	cmd.Flags().String("backend", string(types.BackendAuto), "document reader: auto, docx, markdown, or markitdown")
}

func init() {
	addBuildFlags(buildCmd)
	addBuildFlags(batchCmd)
	batchCmd.Flags().String("out-dir", "", "directory for built decks (default: <deck-dir>/built)")
	batchCmd.Flags().String("deck-dir", "deck", "base directory of the deck library")
	batchCmd.Flags().Int("concurrency", 4, "documents built at once")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(batchCmd)
}

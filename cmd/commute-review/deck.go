// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commute-review/internal/deck"
	"github.com/pdiddy/commute-review/pkg/types"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage the deck library (store, list, search, topics, export)",
	Long: `Deck manages a local SQLite library of built decks. Use subcommands to
index decks, search their cards, browse topics, or export.`,
}

// --- store subcommand ---

var deckStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Index built decks into the library",
	Long: `Store reads deck JSON files from <deck-dir>/built/ and indexes their
cards with FTS5 full-text search. Unchanged decks are skipped on subsequent
runs; decks whose file is gone are removed.`,
	Args: exactArgs(0),
	RunE: runDeckStore,
}

func runDeckStore(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d deck(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed decks",
	Args:  exactArgs(0),
	RunE:  runDeckList,
}

func runDeckList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	decks, err := store.Decks(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(decks) == 0 {
		fmt.Fprintln(out, "No decks indexed. Run deck store first.")
		return nil
	}
	for _, d := range decks {
		fmt.Fprintf(out, "%-24s  %5d cards  %-20s  %s\n",
			d.Name, d.CardCount, d.GeneratedAt, strings.Join(d.Topics, ", "))
	}
	return nil
}

// --- search subcommand ---

var deckSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search cards with full-text search and filters",
	Long: `Search finds cards whose prompt or answer contains every word of the
query, optionally narrowed by card type, topic, or deck. Without a query the
filters alone select cards, ordered by deck and card ID.`,
	RunE: runDeckSearch,
}

func runDeckSearch(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return usageError{cmd: cmd, err: fmt.Errorf("query or filter required: provide a search query, --type, --topic, or --deck")}
	}

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatSearchOutput(w io.Writer, results []deck.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-6s  %-24s  %-16s  %s\n", "Rank", "Type", "Card", "Topic", "Prompt")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-6s  %-24s  %-16s  %s\n",
			i+1, r.Type, truncate(r.Deck+"/"+r.ID, 24), truncate(r.Topic, 16), truncate(r.Prompt, 40))
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most n characters, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// --- topics subcommand ---

var deckTopicsCmd = &cobra.Command{
	Use:   "topics [filter]",
	Short: "List topics with their card counts",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDeckTopics,
}

func runDeckTopics(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var filter string
	if len(args) > 0 {
		filter = args[0]
	}
	topics, err := store.Topics(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(topics) == 0 {
		fmt.Fprintln(out, "No topics found.")
		return nil
	}
	for _, tc := range topics {
		fmt.Fprintf(out, "%5d  %s\n", tc.Cards, tc.Topic)
	}
	return nil
}

// --- export subcommand ---

var deckExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export library cards to YAML or JSON",
	Long: `Export writes the library's cards (or a filtered subset) to
<deck-dir>/index/export.yaml or export.json. Supports the same filter flags
as search.`,
	RunE: runDeckExport,
}

func runDeckExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return usageError{cmd: cmd, err: fmt.Errorf("unsupported format %q: use yaml or json", format)}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*deck.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return deck.NewStore(cfg.Deck, logger)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) deck.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	cardType, _ := cmd.Flags().GetString("type")
	topic, _ := cmd.Flags().GetString("topic")
	deckName, _ := cmd.Flags().GetString("deck")
	limit, _ := cmd.Flags().GetInt("limit")

	return deck.QueryOptions{
		Query:      queryText,
		Type:       types.CardType(cardType),
		Topic:      topic,
		Deck:       deckName,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search query")
	cmd.Flags().String("type", "", "filter by card type: qa, cloze, or recall")
	cmd.Flags().String("topic", "", "filter by topic")
	cmd.Flags().String("deck", "", "filter by deck name")
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	deckCmd.PersistentFlags().String("deck-dir", "deck", "base directory of the deck library (contains built/, index/)")
	deckCmd.PersistentFlags().Int("max-results", 20, "default maximum number of search results")

	addFilterFlags(deckSearchCmd)
	deckSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	deckSearchCmd.Flags().Bool("json", false, "output results as JSON")

	deckExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	addFilterFlags(deckExportCmd)

	deckCmd.AddCommand(deckStoreCmd)
	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckSearchCmd)
	deckCmd.AddCommand(deckTopicsCmd)
	deckCmd.AddCommand(deckExportCmd)

	rootCmd.AddCommand(deckCmd)
}

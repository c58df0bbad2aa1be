// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commute-review/internal/deck"
	"github.com/pdiddy/commute-review/internal/review"
	"github.com/pdiddy/commute-review/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review cards with spaced repetition (session, grade, stats, progress)",
	Long: `Review schedules the library's cards with an SM-2 style algorithm.
A session mixes due cards with unseen ones; grading a card (again, hard,
good, easy) moves its next due date and counts toward the daily goal.`,
}

// --- session subcommand ---

var reviewSessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Pick the cards for a review session",
	Long: `Session picks up to --batch cards: a --new-ratio share of unseen cards
and the rest from cards that are due, topped up from other cards when either
pool runs short. With --topic, the session draws from one topic only.`,
	Args: exactArgs(0),
	RunE: runReviewSession,
}

func runReviewSession(cmd *cobra.Command, args []string) error {
	store, reviewer, err := openReviewer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	deckName, _ := cmd.Flags().GetString("deck")
	topic, _ := cmd.Flags().GetString("topic")

	items, err := store.Items(cmd.Context(), deckName)
	if err != nil {
		return err
	}
	picked, err := reviewer.Session(cmd.Context(), items, topic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(picked)
	}

	if len(picked) == 0 {
		fmt.Fprintln(out, "No cards to review. Build and store some decks first.")
		return nil
	}
	showAnswers, _ := cmd.Flags().GetBool("answers")
	for i, it := range picked {
		fmt.Fprintf(out, "%2d. %s  [%s] %s\n", i+1, it.Key(), it.Card.Type, it.Card.Topic)
		fmt.Fprintf(out, "    Q: %s\n", it.Card.Prompt)
		if showAnswers {
			fmt.Fprintf(out, "    A: %s\n", it.Card.Answer)
		}
	}
	return nil
}

// --- grade subcommand ---

var reviewGradeCmd = &cobra.Command{
	Use:   "grade <deck> <card-id> <again|hard|good|easy>",
	Short: "Record a review of one card",
	Args:  exactArgs(3),
	RunE:  runReviewGrade,
}

func runReviewGrade(cmd *cobra.Command, args []string) error {
	deckName, cardID, grade := args[0], args[1], types.Grade(args[2])
	if !grade.Valid() {
		return usageError{cmd: cmd, err: fmt.Errorf("unknown grade %q: use again, hard, good, or easy", args[2])}
	}

	store, reviewer, err := openReviewer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Card(cmd.Context(), deckName, cardID); err != nil {
		return err
	}
	item := review.Item{Deck: deckName, Card: types.Card{ID: cardID}}
	st, err := reviewer.Grade(cmd.Context(), item.Key(), grade)
	if err != nil {
		return err
	}

	due := time.UnixMilli(st.DueTs)
	fmt.Fprintf(cmd.OutOrStdout(), "graded %s %s: next due %s (interval %g days, ease %.2f)\n",
		item.Key(), grade, due.Format("2006-01-02 15:04"), st.IntervalDays, st.Ease)
	return nil
}

// --- stats subcommand ---

var reviewStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show due and new card counts and today's progress",
	Args:  exactArgs(0),
	RunE:  runReviewStats,
}

func runReviewStats(cmd *cobra.Command, args []string) error {
	store, reviewer, err := openReviewer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	deckName, _ := cmd.Flags().GetString("deck")
	items, err := store.Items(cmd.Context(), deckName)
	if err != nil {
		return err
	}
	stats, err := reviewer.Stats(cmd.Context(), items)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "due:   %d\n", stats.Due)
	fmt.Fprintf(out, "new:   %d\n", stats.New)
	fmt.Fprintf(out, "today: %d / %d\n", stats.DoneToday, stats.Goal)
	return nil
}

// --- progress subcommands ---

var reviewProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Export, import, or reset review progress",
	Long: `Progress moves review state between machines. The file format is the
one the browser review app exports and imports.`,
}

var reviewProgressExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write review progress as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProgressExport,
}

func runProgressExport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		return store.ExportProgress(cmd.Context(), cmd.OutOrStdout())
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[0], err)
	}
	if err := store.ExportProgress(cmd.Context(), f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported progress to %s\n", args[0])
	return nil
}

var reviewProgressImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace review progress with an exported file",
	Args:  exactArgs(1),
	RunE:  runProgressImport,
}

func runProgressImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.ImportProgress(cmd.Context(), r)
	if err != nil {
		if errors.Is(err, deck.ErrInvalidProgress) {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d card states and %d days of history\n", len(p.Cards), len(p.History))
	return nil
}

var reviewProgressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all review progress",
	Args:  exactArgs(0),
	RunE:  runProgressReset,
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return usageError{cmd: cmd, err: errors.New("reset deletes all review progress: pass --yes to confirm")}
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ResetProgress(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset")
	return nil
}

// --- shared helpers ---

func openReviewer(cmd *cobra.Command) (*deck.Store, *review.Reviewer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := deck.NewStore(cfg.Deck, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, review.NewReviewer(store, cfg.Review, logger), nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	reviewCmd.PersistentFlags().String("deck-dir", "deck", "base directory of the deck library")
	reviewCmd.PersistentFlags().Int("goal", types.DefaultGoal, "reviews aimed for per day (5-200)")
	reviewCmd.PersistentFlags().Int("batch", types.DefaultBatch, "cards per session (5-50)")
	reviewCmd.PersistentFlags().Float64("new-ratio", types.DefaultNewRatio, "share of a session for unseen cards (0-1)")

	reviewSessionCmd.Flags().String("deck", "", "draw cards from one deck only")
	reviewSessionCmd.Flags().String("topic", "", "draw cards from one topic only")
	reviewSessionCmd.Flags().Bool("answers", false, "print answers below prompts")
	reviewSessionCmd.Flags().Bool("json", false, "output the session as JSON")

	reviewStatsCmd.Flags().String("deck", "", "count cards of one deck only")

	reviewProgressResetCmd.Flags().Bool("yes", false, "confirm the reset")

	reviewProgressCmd.AddCommand(reviewProgressExportCmd)
	reviewProgressCmd.AddCommand(reviewProgressImportCmd)
	reviewProgressCmd.AddCommand(reviewProgressResetCmd)

	reviewCmd.AddCommand(reviewSessionCmd)
	reviewCmd.AddCommand(reviewGradeCmd)
	reviewCmd.AddCommand(reviewStatsCmd)
	reviewCmd.AddCommand(reviewProgressCmd)

	rootCmd.AddCommand(reviewCmd)
}

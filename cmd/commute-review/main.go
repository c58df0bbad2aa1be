// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the commute-review CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/commute-review/internal/logging"
	"github.com/pdiddy/commute-review/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from --log-level before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the commute-review CLI.
var rootCmd = &cobra.Command{
	Use:   "commute-review",
	Short: "Turn study notes into flash-card decks and review them",
	Long: `commute-review converts study notes (Word .docx, Markdown, plain text) into
decks of question/answer, cloze, and recall cards, keeps a searchable library
of the decks, and schedules spaced-repetition reviews.

Typical flow: build or batch the documents into decks, deck store to index
them, then review session / review grade on the go.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(viper.GetString("log_level"))
		if err != nil {
			return usageError{cmd: cmd, err: err}
		}
		logger = log
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./commute-review.yaml or ~/.config/commute-review/commute-review.yaml)")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "diagnostic log level: debug, info, warn, or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{cmd: cmd, err: err}
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("commute-review")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "commute-review"))
		}
	}

	viper.SetDefault("build.heading_style", "Heading 1")
	viper.SetDefault("build.backend", string(types.BackendAuto))
	viper.SetDefault("build.concurrency", 4)
	viper.SetDefault("deck.dir", "deck")
	viper.SetDefault("deck.max_results", 20)
	viper.SetDefault("review.goal", types.DefaultGoal)
	viper.SetDefault("review.batch", types.DefaultBatch)
	viper.SetDefault("review.new_ratio", types.DefaultNewRatio)

	viper.SetEnvPrefix("COMMUTE_REVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}
}

// flagKeys maps command flags to the config keys they override.
var flagKeys = map[string]string{
	"heading-style": "build.heading_style",
	"backend":       "build.backend",
	"concurrency":   "build.concurrency",
	"deck-dir":      "deck.dir",
	"max-results":   "deck.max_results",
	"goal":          "review.goal",
	"batch":         "review.batch",
	"new-ratio":     "review.new_ratio",
}

// loadConfig binds the running command's flags to their config keys and
// returns the merged configuration: flags over environment over config
// file over defaults.
func loadConfig(cmd *cobra.Command) (types.AppConfig, error) {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return types.AppConfig{}, fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}

	return types.AppConfig{
		Build: types.BuildConfig{
			HeadingStyle: viper.GetString("build.heading_style"),
			Backend:      types.BuildBackend(viper.GetString("build.backend")),
			Concurrency:  viper.GetInt("build.concurrency"),
		},
		Deck: types.DeckConfig{
			Dir:        viper.GetString("deck.dir"),
			MaxResults: viper.GetInt("deck.max_results"),
		},
		Review: types.ReviewConfig{
			Goal:     viper.GetInt("review.goal"),
			Batch:    viper.GetInt("review.batch"),
			NewRatio: viper.GetFloat64("review.new_ratio"),
		},
		LogLevel: viper.GetString("log_level"),
	}, nil
}

// usageError marks a command line the command cannot run with. It exits
// with status 2 after printing the command's usage.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{cmd: cmd, err: fmt.Errorf("accepts %d arg(s), received %d", n, len(args))}
		}
		return nil
	}
}

// minArgs is cobra.MinimumNArgs reporting a usage error.
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError{cmd: cmd, err: fmt.Errorf("requires at least %d arg(s), only received %d", n, len(args))}
		}
		return nil
	}
}

// exitCode reports err on stderr and returns the process exit status.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprint(stderr, ue.cmd.UsageString())
		return 2
	}
	return 1
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return exitCode(rootCmd.ExecuteContext(ctx), stderr)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	logger.Sync()
	os.Exit(code)
}

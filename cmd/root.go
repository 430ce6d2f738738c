// Package cmd implements the lectern command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Lectern - retrieval-augmented assistant for course materials",
	Long: `Lectern answers natural-language questions about a corpus of course
materials. It indexes course documents into a vector store and runs a
two-stage generation loop that decides, per query, whether to search
the corpus before answering.

Run 'lectern serve' to ingest the docs folder and start the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. DEBUG in the environment lowers
// the level; LECTERN_LOG_JSON switches to JSON output.
func newLogger() *slog.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("LECTERN_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}

// loadConfig loads and validates the application configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

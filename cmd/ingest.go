package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the docs folder into the vector index and print totals",
	Long: `Ingest parses every .txt course document in the configured docs
folder, chunks the content and writes catalog and content records to
the vector index. Courses whose titles are already indexed are skipped.

With an empty data_dir the index lives in memory and this command is a
dry run of what serve would load at startup.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runIngest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	totals, err := a.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", cfg.DocsDir, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Courses indexed: %d\n", totals.Courses)
	fmt.Fprintf(out, "Chunks indexed:  %d\n", totals.Chunks)
	fmt.Fprintf(out, "Skipped:         %d\n", totals.Skipped)
	return nil
}

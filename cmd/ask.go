package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/app"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question against the indexed courses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, question string) error {
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

	if _, err := a.Ingest(ctx); err != nil {
		logger.Warn("ingestion failed", "dir", cfg.DocsDir, "error", err)
	}

	ans, err := a.Chat.Answer(ctx, question, "")
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, s := range ans.Sources {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/api"
	"github.com/lectern-ai/lectern/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Ingest the docs folder and start the HTTP API server",
	RunE: func(*cobra.Command, []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
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
		// A missing docs folder should not keep the API down; the
		// index simply starts empty.
		logger.Warn("startup ingestion failed", "dir", cfg.DocsDir, "error", err)
	} else {
		logger.Info("startup ingestion finished",
			"courses", totals.Courses,
			"chunks", totals.Chunks,
			"skipped", totals.Skipped,
		)
	}

	srv, err := api.NewServer(api.ServerConfig{
		Logger:    logger,
		Chat:      a.Chat,
		Sessions:  a.Sessions,
		Directory: a.Store,
		Addr:      cfg.Addr,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	return srv.Run(ctx)
}

// Package app wires the application graph: genkit, the vector index,
// search, tools, the chat orchestrator and the session store.
package app

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/lectern-ai/lectern/internal/chat"
	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/ingest"
	"github.com/lectern-ai/lectern/internal/search"
	"github.com/lectern-ai/lectern/internal/session"
	"github.com/lectern-ai/lectern/internal/tools"
	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// App holds the initialized component graph.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Genkit   *genkit.Genkit
	Embedder ai.Embedder

	Store    *vectorstore.Store
	Engine   *search.Engine
	Manager  *tools.Manager
	Chat     *chat.Service
	Sessions *session.Store
	Loader   *ingest.Loader
}

// Ingest loads the configured docs folder into the index.
func (a *App) Ingest(ctx context.Context) (*ingest.Totals, error) {
	return a.Loader.LoadDir(ctx, a.Config.DocsDir)
}

// Close releases application resources. Safe to call on a partially
// initialized App. No component currently holds background goroutines
// or file handles past its own calls, so Close only anchors the
// lifecycle contract callers already follow.
func (a *App) Close() error {
	return nil
}

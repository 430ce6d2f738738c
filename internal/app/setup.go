package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"golang.org/x/time/rate"

	"github.com/lectern-ai/lectern/internal/chat"
	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/course"
	"github.com/lectern-ai/lectern/internal/ingest"
	"github.com/lectern-ai/lectern/internal/search"
	"github.com/lectern-ai/lectern/internal/session"
	"github.com/lectern-ai/lectern/internal/tools"
	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// Embedding API pacing during ingestion. Generation calls carry their
// own limiter inside the chat service.
const (
	embedRatePerSec = 5
	embedBurst      = 10
)

// Setup creates and initializes the application. Call Close to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	if err := config.CheckAPIKey(); err != nil {
		return nil, err
	}

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	embedLimiter := rate.NewLimiter(embedRatePerSec, embedBurst)
	store, err := vectorstore.New(cfg.DataDir, vectorstore.NewEmbeddingFunc(embedder, embedLimiter), logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	a.Store = store

	resolver := search.NewResolver(store, cfg.ResolverFloor, logger)
	a.Engine = search.NewEngine(store, resolver, cfg.MaxResults, logger)

	manager, err := provideTools(g, a.Engine, resolver, store, logger)
	if err != nil {
		return nil, err
	}
	a.Manager = manager

	a.Chat = chat.NewService(
		chat.NewGenerator(g),
		manager,
		manager.Refs(g),
		cfg.ModelName,
		logger,
	)
	a.Sessions = session.New(cfg.MaxHistory, logger)

	chunker, err := course.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("creating chunker: %w", err)
	}
	a.Loader = ingest.NewLoader(store, chunker, logger)

	logger.Info("application initialized",
		"model", cfg.ModelName,
		"embedder", cfg.EmbedderModel,
		"tools", manager.Names(),
	)
	return a, nil
}

// provideGenkit initializes genkit with the Google AI plugin. The
// plugin reads GEMINI_API_KEY from the environment.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	return g, nil
}

func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
}

// provideTools registers the search tools with both genkit (schema
// advertisement) and the manager (local dispatch).
func provideTools(g *genkit.Genkit, engine *search.Engine, resolver *search.Resolver, store *vectorstore.Store, logger *slog.Logger) (*tools.Manager, error) {
	manager := tools.NewManager(logger)
	for _, t := range []tools.Tool{
		tools.NewSearchTool(engine),
		tools.NewOutlineTool(resolver, store),
	} {
		t.Register(g)
		if err := manager.Register(t); err != nil {
			return nil, fmt.Errorf("registering tools: %w", err)
		}
	}
	return manager, nil
}

// Package api exposes the query pipeline over a small JSON HTTP
// surface: query answering, course analytics and a health probe.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ServerConfig contains the dependencies of the API server.
type ServerConfig struct {
	Logger    *slog.Logger
	Chat      answerer
	Sessions  sessionStore
	Directory courseDirectory
	Addr      string
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
	addr    string
	logger  *slog.Logger
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Chat == nil {
		return nil, errors.New("chat service is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("course directory is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	qh := &queryHandler{chat: cfg.Chat, sessions: cfg.Sessions, logger: logger}
	ch := &coursesHandler{directory: cfg.Directory, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", qh.query)
	mux.HandleFunc("GET /api/courses", ch.courses)

	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	top := http.NewServeMux()
	top.HandleFunc("GET /health", health)
	top.Handle("/", handler)

	return &Server{handler: top, addr: cfg.Addr, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation calls are slow; give handlers room before the
		// write deadline cuts them off.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server listen: %w", err)
	}
}

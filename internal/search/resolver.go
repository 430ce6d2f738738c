package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// ErrCourseNotFound reports that a course name could not be resolved
// against the catalog. Callers surface it as user-facing text, not as a
// failure.
var ErrCourseNotFound = errors.New("course not found")

// catalog is the slice of the vector store the resolver needs.
type catalog interface {
	QueryCatalog(ctx context.Context, text string, n int) ([]vectorstore.Hit, error)
}

// Resolver maps free-text course names (partial or misspelled) to
// canonical catalog titles via a top-1 similarity query.
type Resolver struct {
	catalog catalog
	floor   float32
	logger  *slog.Logger
}

// NewResolver creates a resolver. floor is the minimum similarity the
// top match must reach; 0 accepts the closest course unconditionally.
func NewResolver(c catalog, floor float32, logger *slog.Logger) *Resolver {
	return &Resolver{catalog: c, floor: floor, logger: logger}
}

// Resolve returns the canonical title of the catalog course closest to
// name. An empty catalog, or a top match below the similarity floor,
// yields ErrCourseNotFound.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	hits, err := r.catalog.QueryCatalog(ctx, name, 1)
	if err != nil {
		return "", fmt.Errorf("resolve course %q: %w", name, err)
	}
	if len(hits) == 0 {
		return "", fmt.Errorf("resolve course %q: %w", name, ErrCourseNotFound)
	}

	top := hits[0]
	if sim := top.Similarity(); sim < r.floor {
		r.logger.Debug("course match below floor",
			"name", name, "candidate", top.Text, "similarity", sim, "floor", r.floor)
		return "", fmt.Errorf("resolve course %q: %w", name, ErrCourseNotFound)
	}

	title := top.Metadata[vectorstore.MetaCourseTitle]
	if title == "" {
		title = top.Text
	}
	r.logger.Debug("course resolved", "name", name, "title", title)
	return title, nil
}

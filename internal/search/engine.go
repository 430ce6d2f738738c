package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// Index is the slice of the vector store the engine queries.
type Index interface {
	catalog
	QueryContent(ctx context.Context, text string, n int, where map[string]string) ([]vectorstore.Hit, error)
}

// Result is the outcome of one search. Exactly one of the three shapes
// holds: Err non-empty (resolution failed), Hits empty with Err empty
// (valid zero-match), or Hits non-empty.
type Result struct {
	Hits []vectorstore.Hit

	// ResolvedCourse is the canonical title the course name resolved
	// to, empty when no course filter was requested.
	ResolvedCourse string
	Lesson         *int

	// Err carries a human-readable resolution failure. It is user-facing
	// text, not a Go error: downstream feeds it to the generation
	// backend as tool output.
	Err string
}

// IsEmpty reports a successful search that matched nothing.
func (r *Result) IsEmpty() bool {
	return r.Err == "" && len(r.Hits) == 0
}

// Engine runs filtered similarity searches over the content collection,
// resolving fuzzy course names through the catalog first.
type Engine struct {
	index      Index
	resolver   *Resolver
	maxResults int
	logger     *slog.Logger
}

func NewEngine(index Index, resolver *Resolver, maxResults int, logger *slog.Logger) *Engine {
	return &Engine{index: index, resolver: resolver, maxResults: maxResults, logger: logger}
}

// Search resolves the optional course name, builds the metadata filter
// and queries the content collection. Resolution failure returns a
// Result with Err set, not a Go error; only index/backend failures
// surface as errors.
func (e *Engine) Search(ctx context.Context, query, courseName string, lesson *int) (*Result, error) {
	var title string
	if courseName != "" {
		var err error
		title, err = e.resolver.Resolve(ctx, courseName)
		if errors.Is(err, ErrCourseNotFound) {
			return &Result{
				Lesson: lesson,
				Err:    fmt.Sprintf("No course found matching '%s'", courseName),
			}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	where := BuildFilter(title, lesson)
	hits, err := e.index.QueryContent(ctx, query, e.maxResults, where)
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}

	e.logger.Debug("content search",
		"query", query, "course", title, "hits", len(hits))
	return &Result{Hits: hits, ResolvedCourse: title, Lesson: lesson}, nil
}

// sourceLabel renders one hit's provenance as "Title - Lesson N", or
// just the title for preamble chunks.
func sourceLabel(h vectorstore.Hit) string {
	title := h.Metadata[vectorstore.MetaCourseTitle]
	if n, ok := h.Metadata[vectorstore.MetaLessonNumber]; ok {
		return fmt.Sprintf("%s - Lesson %s", title, n)
	}
	return title
}

// Sources returns the provenance labels of the hits in rank order.
func (r *Result) Sources() []string {
	if len(r.Hits) == 0 {
		return nil
	}
	sources := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		sources[i] = sourceLabel(h)
	}
	return sources
}

// Format renders the result as tool-output text: each hit under a
// bracketed provenance header, or a scoped no-results message.
func (r *Result) Format() string {
	if r.Err != "" {
		return r.Err
	}
	if len(r.Hits) == 0 {
		var scope strings.Builder
		scope.WriteString("No relevant content found")
		if r.ResolvedCourse != "" {
			fmt.Fprintf(&scope, " in course '%s'", r.ResolvedCourse)
		}
		if r.Lesson != nil {
			fmt.Fprintf(&scope, " in lesson %d", *r.Lesson)
		}
		scope.WriteString(".")
		return scope.String()
	}

	blocks := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		blocks[i] = fmt.Sprintf("[%s]\n%s", sourceLabel(h), h.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// Package ingest loads course documents from a folder into the vector
// index at startup.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lectern-ai/lectern/internal/course"
)

// contentStore is the slice of the vector store ingestion writes to.
type contentStore interface {
	HasCourse(title string) bool
	AddCourse(ctx context.Context, c course.Course) error
	AddChunks(ctx context.Context, chunks []course.Chunk) error
}

// Totals summarizes one ingestion run.
type Totals struct {
	Courses int
	Chunks  int
	Skipped int
}

// Loader reads course documents, chunks them and writes both catalog
// and content records. Documents are processed sequentially; duplicate
// titles are skipped, not replaced.
type Loader struct {
	store   contentStore
	chunker *course.Chunker
	logger  *slog.Logger
}

func NewLoader(store contentStore, chunker *course.Chunker, logger *slog.Logger) *Loader {
	return &Loader{store: store, chunker: chunker, logger: logger}
}

// LoadDir ingests every .txt file in dir, in name order. A file that
// fails to parse is logged and skipped; the run continues. A missing
// directory is an error.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*Totals, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	totals := &Totals{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		added, skipped, err := l.LoadFile(ctx, path)
		if err != nil {
			l.logger.Warn("document ingestion failed", "file", name, "error", err)
			continue
		}
		if skipped {
			totals.Skipped++
			continue
		}
		totals.Courses++
		totals.Chunks += added
	}

	l.logger.Info("ingestion complete",
		"dir", dir,
		"courses", totals.Courses,
		"chunks", totals.Chunks,
		"skipped", totals.Skipped,
	)
	return totals, nil
}

// LoadFile ingests one course document. It returns the number of
// chunks written, or skipped=true when a course with the same title is
// already indexed.
func (l *Loader) LoadFile(ctx context.Context, path string) (added int, skipped bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	c, sections, err := course.Parse(f)
	if err != nil {
		return 0, false, fmt.Errorf("parse document: %w", err)
	}

	if l.store.HasCourse(c.Title) {
		l.logger.Info("course already indexed, skipping", "title", c.Title)
		return 0, true, nil
	}

	chunks := course.BuildChunks(c, sections, l.chunker)
	if err := l.store.AddCourse(ctx, *c); err != nil {
		return 0, false, fmt.Errorf("index course %q: %w", c.Title, err)
	}
	if err := l.store.AddChunks(ctx, chunks); err != nil {
		return 0, false, fmt.Errorf("index chunks for %q: %w", c.Title, err)
	}

	l.logger.Debug("course indexed", "title", c.Title, "chunks", len(chunks))
	return len(chunks), false, nil
}

// Package vectorstore manages the two-collection vector index backing
// retrieval: a course catalog (one record per course, used for fuzzy name
// resolution) and course content (one record per chunk, used for search).
//
// The index is backed by chromem-go. Metadata values are strings per
// chromem's filter model; numeric fields (lesson_number, chunk_index) are
// stored as decimal strings.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/lectern-ai/lectern/internal/course"
)

// Collection names of the index.
const (
	CatalogCollection = "course_catalog"
	ContentCollection = "course_content"
)

// Metadata keys used on content records and in search filters.
const (
	MetaCourseTitle  = "course_title"
	MetaLessonNumber = "lesson_number"
	MetaChunkIndex   = "chunk_index"
)

// Catalog metadata keys.
const (
	metaInstructor  = "instructor"
	metaLink        = "link"
	metaLessons     = "lessons_json"
	metaLessonCount = "lesson_count"
)

// Hit is one similarity search match. Distance is 1 - cosine similarity,
// so lower means more similar.
type Hit struct {
	Text     string
	Metadata map[string]string
	Distance float32
}

// Similarity returns the cosine similarity for this hit.
func (h Hit) Similarity() float32 { return 1 - h.Distance }

// Store is the two-collection vector index. It is safe for concurrent use:
// reads dominate after startup ingestion, and the course registry is
// guarded by a read-write mutex.
type Store struct {
	db      *chromem.DB
	catalog *chromem.Collection
	content *chromem.Collection
	logger  *slog.Logger

	mu      sync.RWMutex
	courses map[string]course.Course
}

// New creates a Store. persistDir == "" keeps the index in memory; the
// course folder is then re-ingested on every start. With a persist dir,
// chromem writes collections to disk and re-ingestion overwrites records
// in place (AddDocument upserts by ID).
func New(persistDir string, embed chromem.EmbeddingFunc, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var db *chromem.DB
	var err error
	if persistDir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(persistDir, false)
		if err != nil {
			return nil, fmt.Errorf("opening persistent index at %s: %w", persistDir, err)
		}
	}

	catalog, err := db.GetOrCreateCollection(CatalogCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("creating %s collection: %w", CatalogCollection, err)
	}
	content, err := db.GetOrCreateCollection(ContentCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("creating %s collection: %w", ContentCollection, err)
	}

	return &Store{
		db:      db,
		catalog: catalog,
		content: content,
		logger:  logger,
		courses: make(map[string]course.Course),
	}, nil
}

// AddCourse writes one catalog record keyed by course title and registers
// the course for duplicate detection and outline lookups. The embedded
// text is the title itself; that is what fuzzy resolution matches against.
func (s *Store) AddCourse(ctx context.Context, c course.Course) error {
	lessonsJSON, err := json.Marshal(c.Lessons)
	if err != nil {
		return fmt.Errorf("marshaling lessons for %q: %w", c.Title, err)
	}

	doc := chromem.Document{
		ID:      c.Title,
		Content: c.Title,
		Metadata: map[string]string{
			metaInstructor:  c.Instructor,
			metaLink:        c.Link,
			metaLessons:     string(lessonsJSON),
			metaLessonCount: strconv.Itoa(len(c.Lessons)),
		},
	}
	if err := s.catalog.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("adding catalog record %q: %w", c.Title, err)
	}

	s.mu.Lock()
	s.courses[c.Title] = c
	s.mu.Unlock()

	s.logger.Debug("added course to catalog", "title", c.Title, "lessons", len(c.Lessons))
	return nil
}

// AddChunks writes one content record per chunk. Records carry the
// course_title, lesson_number and chunk_index metadata the filter builder
// matches against; preamble chunks (nil lesson) omit lesson_number.
func (s *Store) AddChunks(ctx context.Context, chunks []course.Chunk) error {
	for _, ch := range chunks {
		meta := map[string]string{
			MetaCourseTitle: ch.CourseTitle,
			MetaChunkIndex:  strconv.Itoa(ch.ChunkIndex),
		}
		lessonKey := "preamble"
		if ch.LessonNumber != nil {
			meta[MetaLessonNumber] = strconv.Itoa(*ch.LessonNumber)
			lessonKey = strconv.Itoa(*ch.LessonNumber)
		}

		doc := chromem.Document{
			ID:       fmt.Sprintf("%s::%s::%d", ch.CourseTitle, lessonKey, ch.ChunkIndex),
			Content:  ch.Text,
			Metadata: meta,
		}
		if err := s.content.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("adding chunk %s/%s/%d: %w", ch.CourseTitle, lessonKey, ch.ChunkIndex, err)
		}
	}
	return nil
}

// HasCourse reports whether a course with this exact title is registered.
func (s *Store) HasCourse(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.courses[title]
	return ok
}

// CourseByTitle returns the registered course for an exact title.
func (s *Store) CourseByTitle(title string) (course.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[title]
	return c, ok
}

// Titles returns all registered course titles, sorted.
func (s *Store) Titles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, 0, len(s.courses))
	for t := range s.courses {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// CourseCount returns the number of catalog records.
func (s *Store) CourseCount() int { return s.catalog.Count() }

// ChunkCount returns the number of content records.
func (s *Store) ChunkCount() int { return s.content.Count() }

// QueryCatalog runs a similarity query against the catalog collection.
// An empty catalog yields an empty result, not an error.
func (s *Store) QueryCatalog(ctx context.Context, text string, n int) ([]Hit, error) {
	return s.query(ctx, s.catalog, text, n, nil)
}

// QueryContent runs a similarity query against the content collection with
// an optional metadata filter (nil means unfiltered). Results are ordered
// by ascending distance.
func (s *Store) QueryContent(ctx context.Context, text string, n int, where map[string]string) ([]Hit, error) {
	return s.query(ctx, s.content, text, n, where)
}

func (s *Store) query(ctx context.Context, col *chromem.Collection, text string, n int, where map[string]string) ([]Hit, error) {
	// chromem rejects nResults larger than the collection; clamp instead.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := col.Query(ctx, text, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			Text:     r.Content,
			Metadata: r.Metadata,
			Distance: 1 - r.Similarity,
		})
	}
	return hits, nil
}

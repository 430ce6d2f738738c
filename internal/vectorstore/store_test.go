package vectorstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/lectern-ai/lectern/internal/course"
	"github.com/lectern-ai/lectern/internal/log"
)

// stubEmbedding returns fixed vectors for known texts so similarity
// ordering is fully deterministic, with a fallback direction for
// everything else.
func stubEmbedding(vectors map[string][]float32) func(ctx context.Context, text string) ([]float32, error) {
	return func(_ context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 0, 1}, nil
	}
}

func intPtr(n int) *int { return &n }

func testCourse() course.Course {
	return course.Course{
		Title:      "Introduction to MCP",
		Link:       "https://example.com/mcp",
		Instructor: "Jane Doe",
		Lessons: []course.Lesson{
			{Number: 0, Title: "Welcome"},
			{Number: 1, Title: "Protocol Basics"},
		},
	}
}

func newTestStore(t *testing.T, vectors map[string][]float32) *Store {
	t.Helper()
	s, err := New("", stubEmbedding(vectors), log.NewNop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestAddCourseAndRegistry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, map[string][]float32{
		"Introduction to MCP": {1, 0, 0, 0},
	})

	if err := s.AddCourse(ctx, testCourse()); err != nil {
		t.Fatalf("AddCourse() error: %v", err)
	}

	if !s.HasCourse("Introduction to MCP") {
		t.Error("HasCourse() should find exact title")
	}
	if s.HasCourse("introduction to mcp") {
		t.Error("HasCourse() must be exact, not case-insensitive")
	}
	if got := s.CourseCount(); got != 1 {
		t.Errorf("CourseCount() = %d, want 1", got)
	}

	c, ok := s.CourseByTitle("Introduction to MCP")
	if !ok {
		t.Fatal("CourseByTitle() should find registered course")
	}
	if len(c.Lessons) != 2 || c.Instructor != "Jane Doe" {
		t.Errorf("CourseByTitle() = %+v", c)
	}

	titles := s.Titles()
	if len(titles) != 1 || titles[0] != "Introduction to MCP" {
		t.Errorf("Titles() = %v", titles)
	}
}

func TestQueryCatalogOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, map[string][]float32{
		"Introduction to MCP": {1, 0, 0, 0},
		"Advanced Retrieval":  {0, 1, 0, 0},
		"MCP intro":           {0.9, 0.1, 0, 0},
	})

	if err := s.AddCourse(ctx, testCourse()); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCourse(ctx, course.Course{Title: "Advanced Retrieval"}); err != nil {
		t.Fatal(err)
	}

	hits, err := s.QueryCatalog(ctx, "MCP intro", 1)
	if err != nil {
		t.Fatalf("QueryCatalog() error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Text != "Introduction to MCP" {
		t.Errorf("top hit = %q, want the MCP course", hits[0].Text)
	}
	if hits[0].Distance < 0 || hits[0].Distance > 1 {
		t.Errorf("distance %v outside [0,1]", hits[0].Distance)
	}
}

func TestQueryCatalogEmpty(t *testing.T) {
	s := newTestStore(t, nil)
	hits, err := s.QueryCatalog(context.Background(), "anything", 1)
	if err != nil {
		t.Fatalf("empty catalog should not error, got %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("empty catalog should yield no hits, got %d", len(hits))
	}
}

func TestQueryClampsToCollectionSize(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, map[string][]float32{
		"Introduction to MCP": {1, 0, 0, 0},
	})
	if err := s.AddCourse(ctx, testCourse()); err != nil {
		t.Fatal(err)
	}

	// Asking for more results than records must not error.
	hits, err := s.QueryCatalog(ctx, "Introduction to MCP", 10)
	if err != nil {
		t.Fatalf("QueryCatalog() error: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("got %d hits, want 1", len(hits))
	}
}

func TestAddChunksAndFilteredQuery(t *testing.T) {
	ctx := context.Background()
	vectors := map[string][]float32{
		"protocol basics": {1, 0, 0, 0},
	}
	// Chunk texts share a direction with the query so they are retrievable.
	chunkTexts := []string{
		"Course Introduction to MCP Lesson 0 content: Welcome to the course.",
		"Course Introduction to MCP Lesson 1 content: The protocol defines messages.",
		"Course Advanced Retrieval Lesson 1 content: Dense vectors beat keywords.",
	}
	for i, text := range chunkTexts {
		v := []float32{0.5, 0, 0, 0}
		v[1] = float32(i) * 0.01 // slight spread, same general direction
		vectors[text] = v
	}

	s := newTestStore(t, vectors)
	chunks := []course.Chunk{
		{CourseTitle: "Introduction to MCP", LessonNumber: intPtr(0), ChunkIndex: 0, Text: chunkTexts[0]},
		{CourseTitle: "Introduction to MCP", LessonNumber: intPtr(1), ChunkIndex: 0, Text: chunkTexts[1]},
		{CourseTitle: "Advanced Retrieval", LessonNumber: intPtr(1), ChunkIndex: 0, Text: chunkTexts[2]},
	}
	if err := s.AddChunks(ctx, chunks); err != nil {
		t.Fatalf("AddChunks() error: %v", err)
	}
	if got := s.ChunkCount(); got != 3 {
		t.Errorf("ChunkCount() = %d, want 3", got)
	}

	// Unfiltered: all three reachable.
	hits, err := s.QueryContent(ctx, "protocol basics", 5, nil)
	if err != nil {
		t.Fatalf("QueryContent() error: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("unfiltered hits = %d, want 3", len(hits))
	}

	// Filter by course.
	hits, err = s.QueryContent(ctx, "protocol basics", 5, map[string]string{
		MetaCourseTitle: "Introduction to MCP",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("course-filtered hits = %d, want 2", len(hits))
	}
	for _, h := range hits {
		if h.Metadata[MetaCourseTitle] != "Introduction to MCP" {
			t.Errorf("hit leaked from other course: %v", h.Metadata)
		}
	}

	// Filter by course and lesson.
	hits, err = s.QueryContent(ctx, "protocol basics", 5, map[string]string{
		MetaCourseTitle:  "Introduction to MCP",
		MetaLessonNumber: "1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("lesson-filtered hits = %d, want 1", len(hits))
	}
	if hits[0].Metadata[MetaLessonNumber] != "1" {
		t.Errorf("wrong lesson: %v", hits[0].Metadata)
	}
}

func TestPreambleChunksOmitLessonNumber(t *testing.T) {
	ctx := context.Background()
	text := "Course Standalone content: Overview text."
	s := newTestStore(t, map[string][]float32{text: {1, 0, 0, 0}})

	err := s.AddChunks(ctx, []course.Chunk{
		{CourseTitle: "Standalone", LessonNumber: nil, ChunkIndex: 0, Text: text},
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := s.QueryContent(ctx, "overview", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if _, ok := hits[0].Metadata[MetaLessonNumber]; ok {
		t.Error("preamble chunk must not carry lesson_number metadata")
	}

	// A lesson filter must not match preamble chunks.
	hits, err = s.QueryContent(ctx, "overview", 1, map[string]string{MetaLessonNumber: "0"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("lesson filter matched preamble chunk: %v", hits)
	}
}

func TestHitSimilarity(t *testing.T) {
	h := Hit{Distance: 0.25}
	if got := h.Similarity(); got != 0.75 {
		t.Errorf("Similarity() = %v, want 0.75", got)
	}
}

func TestAddCourseUpsertsByTitle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, map[string][]float32{"Introduction to MCP": {1, 0, 0, 0}})

	c := testCourse()
	if err := s.AddCourse(ctx, c); err != nil {
		t.Fatal(err)
	}
	c.Instructor = "New Instructor"
	if err := s.AddCourse(ctx, c); err != nil {
		t.Fatal(err)
	}

	if got := s.CourseCount(); got != 1 {
		t.Errorf("CourseCount() = %d, want 1 after re-adding same title", got)
	}
	got, _ := s.CourseByTitle("Introduction to MCP")
	if got.Instructor != "New Instructor" {
		t.Errorf("registry should reflect latest record, got %q", got.Instructor)
	}
}

// Guard against accidental metadata key drift between writer and filters.
func TestMetadataKeys(t *testing.T) {
	for _, k := range []string{MetaCourseTitle, MetaLessonNumber, MetaChunkIndex} {
		if k == "" {
			t.Fatal("metadata key must not be empty")
		}
	}
	if fmt.Sprintf("%s/%s", MetaCourseTitle, MetaLessonNumber) != "course_title/lesson_number" {
		t.Errorf("metadata keys changed: %s, %s", MetaCourseTitle, MetaLessonNumber)
	}
}

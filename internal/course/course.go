// Package course defines the course-material data model and implements
// parsing and chunking of raw course documents.
package course

import "fmt"

// Course represents one ingested course document. Courses are immutable
// after ingestion; the title is the globally unique identifier.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson is a numbered unit within a course. Numbers are non-negative and
// unique within their course.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Chunk is a bounded span of course text prepared for embedding.
// LessonNumber is nil for content that precedes the first lesson marker.
// ChunkIndex is dense and zero-based per lesson.
type Chunk struct {
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
	Text         string
}

// ContextPrefix returns the context string injected before a chunk's raw
// text: "Course {title} Lesson {n} content: ", or without the lesson part
// for preamble chunks.
func ContextPrefix(courseTitle string, lessonNumber *int) string {
	if lessonNumber == nil {
		return fmt.Sprintf("Course %s content: ", courseTitle)
	}
	return fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, *lessonNumber)
}

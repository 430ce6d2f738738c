package course

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Header and lesson markers of the course document format. This grammar is
// a fixed external contract:
//
//	Course Title: Introduction to MCP
//	Course Link: https://example.com/mcp
//	Course Instructor: Jane Doe
//
//	Lesson 0: Welcome
//	Lesson Link: https://example.com/mcp/0
//	<content paragraphs>
//
//	Lesson 1: ...
const (
	titlePrefix      = "Course Title:"
	linkPrefix       = "Course Link:"
	instructorPrefix = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ErrMissingTitle indicates the document has no "Course Title:" header line.
var ErrMissingTitle = errors.New("document has no course title header")

// Section holds the raw content of one lesson (or of the preamble between
// the header and the first lesson marker, with Lesson == nil).
type Section struct {
	Lesson  *int
	Content string
}

// Parse reads a course document and returns the course metadata plus the
// raw content sections in document order.
func Parse(r io.Reader) (*Course, []Section, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	c := &Course{}
	var sections []Section

	var current *int      // lesson number of the section being accumulated
	var content []string  // lines of the section being accumulated
	headerDone := false   // set once the first lesson marker is seen
	seen := map[int]bool{} // lesson numbers, for uniqueness

	flush := func() {
		text := strings.TrimSpace(strings.Join(content, "\n"))
		if text != "" {
			sections = append(sections, Section{Lesson: current, Content: text})
		}
		content = content[:0]
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if !headerDone {
			switch {
			case strings.HasPrefix(trimmed, titlePrefix):
				c.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, titlePrefix))
				continue
			case strings.HasPrefix(trimmed, linkPrefix):
				c.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, linkPrefix))
				continue
			case strings.HasPrefix(trimmed, instructorPrefix):
				c.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, instructorPrefix))
				continue
			}
		}

		if m := lessonMarker.FindStringSubmatch(trimmed); m != nil {
			flush()
			headerDone = true

			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, nil, fmt.Errorf("parsing lesson number %q: %w", m[1], err)
			}
			if seen[n] {
				return nil, nil, fmt.Errorf("duplicate lesson number %d", n)
			}
			seen[n] = true

			num := n
			current = &num
			c.Lessons = append(c.Lessons, Lesson{Number: n, Title: strings.TrimSpace(m[2])})
			continue
		}

		if current != nil && strings.HasPrefix(trimmed, lessonLinkPrefix) {
			// Attach the link to the lesson just opened, but only if none
			// was recorded yet; later occurrences are content.
			last := &c.Lessons[len(c.Lessons)-1]
			if last.Link == "" && len(content) == 0 {
				last.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, lessonLinkPrefix))
				continue
			}
		}

		content = append(content, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading document: %w", err)
	}

	flush()

	if strings.TrimSpace(c.Title) == "" {
		return nil, nil, ErrMissingTitle
	}

	return c, sections, nil
}

// BuildChunks runs the chunker over every section and attaches course
// context. Each chunk's stored text carries the context prefix; ChunkIndex
// restarts at zero for every lesson.
func BuildChunks(c *Course, sections []Section, chunker *Chunker) []Chunk {
	var chunks []Chunk
	for _, sec := range sections {
		prefix := ContextPrefix(c.Title, sec.Lesson)
		for i, text := range chunker.Chunk(sec.Content) {
			chunks = append(chunks, Chunk{
				CourseTitle:  c.Title,
				LessonNumber: sec.Lesson,
				ChunkIndex:   i,
				Text:         prefix + text,
			})
		}
	}
	return chunks
}

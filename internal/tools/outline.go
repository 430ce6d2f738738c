package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/lectern-ai/lectern/internal/course"
	"github.com/lectern-ai/lectern/internal/search"
)

// GetCourseOutlineName is the genkit tool name for outline retrieval.
const GetCourseOutlineName = "get_course_outline"

// OutlineInput defines the arguments of get_course_outline.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema_description:"Course title to get the outline for; partial matches work (e.g. 'MCP')"`
}

type resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

type courseCatalog interface {
	CourseByTitle(title string) (course.Course, bool)
}

// OutlineTool returns a course's title, link and numbered lesson list
// from the catalog.
type OutlineTool struct {
	resolver resolver
	catalog  courseCatalog
}

func NewOutlineTool(r resolver, c courseCatalog) *OutlineTool {
	return &OutlineTool{resolver: r, catalog: c}
}

func (t *OutlineTool) Name() string { return GetCourseOutlineName }

func (t *OutlineTool) Description() string {
	return "Get the complete outline of a course: its title, link and full lesson list. " +
		"Use for questions about course structure, what a course covers, or lesson listings."
}

func (t *OutlineTool) Register(g *genkit.Genkit) ai.Tool {
	return genkit.DefineTool(g, t.Name(), t.Description(),
		func(tctx *ai.ToolContext, in OutlineInput) (string, error) {
			exec, err := t.run(tctx, in)
			if err != nil {
				return "", err
			}
			return exec.Output, nil
		})
}

func (t *OutlineTool) Execute(ctx context.Context, args any) (*Execution, error) {
	in, err := decodeArgs[OutlineInput](args)
	if err != nil {
		return nil, err
	}
	return t.run(ctx, in)
}

func (t *OutlineTool) run(ctx context.Context, in OutlineInput) (*Execution, error) {
	if in.CourseName == "" {
		return nil, errors.New("course_name is required")
	}

	title, err := t.resolver.Resolve(ctx, in.CourseName)
	if errors.Is(err, search.ErrCourseNotFound) {
		return &Execution{
			Output: fmt.Sprintf("No course found matching '%s'", in.CourseName),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course outline: %w", err)
	}

	c, ok := t.catalog.CourseByTitle(title)
	if !ok {
		// Resolver and catalog disagree; treat as not found.
		return &Execution{
			Output: fmt.Sprintf("No course found matching '%s'", in.CourseName),
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", c.Title)
	if c.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", c.Link)
	}
	if c.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", c.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):\n", len(c.Lessons))
	for _, l := range c.Lessons {
		fmt.Fprintf(&b, "  Lesson %d: %s\n", l.Number, l.Title)
	}
	return &Execution{
		Output:  strings.TrimRight(b.String(), "\n"),
		Sources: []string{c.Title},
	}, nil
}

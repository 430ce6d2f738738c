package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/lectern-ai/lectern/internal/search"
)

// SearchCourseContentName is the genkit tool name for content search.
const SearchCourseContentName = "search_course_content"

// SearchInput defines the arguments of search_course_content.
type SearchInput struct {
	Query        string `json:"query" jsonschema_description:"What to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema_description:"Course title to search within; partial matches work (e.g. 'MCP')"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema_description:"Specific lesson number to search within (e.g. 1, 2, 3)"`
}

// searcher is the slice of the search engine this tool needs.
type searcher interface {
	Search(ctx context.Context, query, courseName string, lesson *int) (*search.Result, error)
}

// SearchTool answers content questions by running a filtered similarity
// search and formatting the matched chunks with provenance headers.
type SearchTool struct {
	engine searcher
}

func NewSearchTool(engine searcher) *SearchTool {
	return &SearchTool{engine: engine}
}

func (t *SearchTool) Name() string { return SearchCourseContentName }

func (t *SearchTool) Description() string {
	return "Search course materials with smart course name matching and lesson filtering. " +
		"Use for questions about specific course content or detailed educational materials. " +
		"Returns matched excerpts labeled with their course and lesson."
}

// Register advertises the tool schema to genkit. The handler mirrors
// Execute so the tool behaves the same if the framework ever runs it
// directly.
func (t *SearchTool) Register(g *genkit.Genkit) ai.Tool {
	return genkit.DefineTool(g, t.Name(), t.Description(),
		func(tctx *ai.ToolContext, in SearchInput) (string, error) {
			exec, err := t.run(tctx, in)
			if err != nil {
				return "", err
			}
			return exec.Output, nil
		})
}

func (t *SearchTool) Execute(ctx context.Context, args any) (*Execution, error) {
	in, err := decodeArgs[SearchInput](args)
	if err != nil {
		return nil, err
	}
	return t.run(ctx, in)
}

func (t *SearchTool) run(ctx context.Context, in SearchInput) (*Execution, error) {
	if in.Query == "" {
		return nil, errors.New("query is required")
	}

	res, err := t.engine.Search(ctx, in.Query, in.CourseName, in.LessonNumber)
	if err != nil {
		return nil, fmt.Errorf("search course content: %w", err)
	}
	return &Execution{Output: res.Format(), Sources: res.Sources()}, nil
}

// Package tools defines the callable search tools offered to the
// generation backend and the manager that dispatches them by name.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Execution is the record of one tool invocation: the text handed back
// to the generation backend and the provenance labels of the material
// it was built from. Each call returns its own record; nothing is
// shared between invocations.
type Execution struct {
	Output  string
	Sources []string
}

// Tool is one callable unit. Register advertises its schema to genkit;
// Execute runs it with the raw argument object from a tool request.
type Tool interface {
	Name() string
	Description() string
	Register(g *genkit.Genkit) ai.Tool
	Execute(ctx context.Context, args any) (*Execution, error)
}

// decodeArgs converts the backend's loosely-typed argument object into
// the tool's input struct via a JSON round trip.
func decodeArgs[T any](args any) (T, error) {
	var in T
	raw, err := json.Marshal(args)
	if err != nil {
		return in, fmt.Errorf("encode tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("decode tool arguments: %w", err)
	}
	return in, nil
}

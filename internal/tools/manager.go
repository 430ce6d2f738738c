package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// ErrToolNotFound reports a dispatch for an unregistered tool name.
// This is a wiring mistake, not a user error, and aborts the query.
var ErrToolNotFound = errors.New("tool not found")

// Manager maps tool names to tools and dispatches execution. All
// registration happens during startup wiring; afterwards the Manager
// is read-only and safe for concurrent use.
type Manager struct {
	tools  map[string]Tool
	order  []string
	logger *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{tools: make(map[string]Tool), logger: logger}
}

// Register adds a tool under its name. Duplicate names are rejected.
func (m *Manager) Register(t Tool) error {
	name := t.Name()
	if _, ok := m.tools[name]; ok {
		return fmt.Errorf("register tool %q: duplicate name", name)
	}
	m.tools[name] = t
	m.order = append(m.order, name)
	return nil
}

// Names returns the registered tool names in registration order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Refs looks up the genkit-side registrations of the managed tools, for
// attaching to a generation call.
func (m *Manager) Refs(g *genkit.Genkit) []ai.ToolRef {
	refs := make([]ai.ToolRef, 0, len(m.order))
	for _, name := range m.order {
		if t := genkit.LookupTool(g, name); t != nil {
			refs = append(refs, t)
		}
	}
	return refs
}

// Execute dispatches to the named tool and returns its invocation
// record. An unregistered name yields ErrToolNotFound.
func (m *Manager) Execute(ctx context.Context, name string, args any) (*Execution, error) {
	t, ok := m.tools[name]
	if !ok {
		return nil, fmt.Errorf("execute %q: %w", name, ErrToolNotFound)
	}

	exec, err := t.Execute(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("execute %q: %w", name, err)
	}
	m.logger.Debug("tool executed", "tool", name, "sources", len(exec.Sources))
	return exec, nil
}

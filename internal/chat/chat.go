// Package chat orchestrates the two-stage generation protocol: a first
// backend call that may request one tool round, local tool execution,
// and a final call that synthesizes the answer without tools.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/lectern-ai/lectern/internal/tools"
)

// fallbackAnswer is returned when the model produces an empty final
// response.
const fallbackAnswer = "I apologize, but I couldn't generate a response. Please try rephrasing your question."

// ErrGeneration wraps backend call failures. These are fatal to the
// query; retrieval-layer problems never surface through it.
var ErrGeneration = errors.New("generation failed")

// state names the steps of the per-query protocol. The transitions are
// fixed: firstCall ends the query directly or requests tools; after one
// tool round the second call always ends it.
type state int

const (
	stateFirstCall state = iota
	stateToolRequested
	stateToolExecuted
	stateSecondCall
	stateAnswered
)

func (s state) String() string {
	switch s {
	case stateFirstCall:
		return "first_call"
	case stateToolRequested:
		return "tool_requested"
	case stateToolExecuted:
		return "tool_executed"
	case stateSecondCall:
		return "second_call"
	case stateAnswered:
		return "answered"
	default:
		return "unknown"
	}
}

// Generator is the generation backend surface the orchestrator calls.
type Generator interface {
	Generate(ctx context.Context, opts ...ai.GenerateOption) (*ai.ModelResponse, error)
}

// genkitGenerator adapts a genkit instance to Generator.
type genkitGenerator struct {
	g *genkit.Genkit
}

func (gg *genkitGenerator) Generate(ctx context.Context, opts ...ai.GenerateOption) (*ai.ModelResponse, error) {
	return genkit.Generate(ctx, gg.g, opts...)
}

// NewGenerator wraps a genkit instance as a Generator.
func NewGenerator(g *genkit.Genkit) Generator {
	return &genkitGenerator{g: g}
}

// toolRunner is the slice of the tool manager the orchestrator needs.
type toolRunner interface {
	Execute(ctx context.Context, name string, args any) (*tools.Execution, error)
}

// Answer is the final result of one query.
type Answer struct {
	Text    string
	Sources []string
}

// Service runs queries through the two-stage protocol.
//
// Service is safe for concurrent use: each query carries its own state
// and tool results travel with the call, never through shared slots.
type Service struct {
	generator Generator
	runner    toolRunner
	toolRefs  []ai.ToolRef
	modelName string

	retryConfig RetryConfig
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRetryConfig overrides the backoff settings for backend calls.
func WithRetryConfig(rc RetryConfig) Option {
	return func(s *Service) { s.retryConfig = rc }
}

// WithRateLimiter sets a proactive limiter applied before every backend
// attempt. nil disables limiting.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(s *Service) { s.rateLimiter = l }
}

// NewService creates the orchestrator. toolRefs are the genkit-side
// registrations offered to the first call; runner executes the
// requested tool locally.
func NewService(gen Generator, runner toolRunner, toolRefs []ai.ToolRef, modelName string, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		generator:   gen,
		runner:      runner,
		toolRefs:    toolRefs,
		modelName:   modelName,
		retryConfig: DefaultRetryConfig(),
		rateLimiter: rate.NewLimiter(10, 30),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer runs one query. history is the caller's formatted session
// history ("" for a fresh conversation); it is folded into the system
// prompt, not the message sequence.
//
// Backend failures are fatal and wrapped in ErrGeneration. A failing
// tool execution degrades to explanatory tool-result text so the second
// call still produces an answer; only an unregistered tool name aborts.
func (s *Service) Answer(ctx context.Context, query, history string) (*Answer, error) {
	st := stateFirstCall
	first, err := s.generateWithRetry(ctx,
		ai.WithModelName(s.modelName),
		ai.WithSystem(systemPrompt(history)),
		ai.WithPrompt(query),
		ai.WithTools(s.toolRefs...),
		ai.WithReturnToolRequests(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: first call: %w", ErrGeneration, err)
	}

	requests := first.ToolRequests()
	if len(requests) == 0 {
		s.transition(&st, stateAnswered)
		return &Answer{Text: s.finalText(first)}, nil
	}
	s.transition(&st, stateToolRequested)

	// One tool round: execute every request in the first response,
	// then close the protocol. Requests in later responses are never
	// honored.
	var sources []string
	parts := make([]*ai.Part, 0, len(requests))
	for _, req := range requests {
		output, reqSources, err := s.runTool(ctx, req)
		if err != nil {
			return nil, err
		}
		sources = append(sources, reqSources...)
		parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
			Name:   req.Name,
			Ref:    req.Ref,
			Output: output,
		}))
	}
	s.transition(&st, stateToolExecuted)

	messages := append(first.History(), ai.NewMessage(ai.RoleTool, nil, parts...))

	s.transition(&st, stateSecondCall)
	second, err := s.generateWithRetry(ctx,
		ai.WithModelName(s.modelName),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: second call: %w", ErrGeneration, err)
	}

	s.transition(&st, stateAnswered)
	return &Answer{Text: s.finalText(second), Sources: sources}, nil
}

// transition advances the protocol state, logging the step.
func (s *Service) transition(st *state, next state) {
	s.logger.Debug("protocol transition", "from", st.String(), "to", next.String())
	*st = next
}

// runTool executes one tool request. Execution failures become
// tool-result text; an unregistered name is a wiring error and aborts.
func (s *Service) runTool(ctx context.Context, req *ai.ToolRequest) (string, []string, error) {
	exec, err := s.runner.Execute(ctx, req.Name, req.Input)
	if err != nil {
		if errors.Is(err, tools.ErrToolNotFound) {
			return "", nil, err
		}
		s.logger.Warn("tool execution failed", "tool", req.Name, "error", err)
		return fmt.Sprintf("Tool execution failed: %v", err), nil, nil
	}
	return exec.Output, exec.Sources, nil
}

func (s *Service) finalText(resp *ai.ModelResponse) string {
	text := resp.Text()
	if text == "" {
		return fallbackAnswer
	}
	return text
}

package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
)

type mockEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEmbedder) Name() string { return "mock-embedder" }

func (m *mockEmbedder) Register(api.Registry) {}

func (m *mockEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	embeddings := make([]*ai.Embedding, len(req.Input))
	for i := range req.Input {
		embeddings[i] = &ai.Embedding{Embedding: m.vector}
	}
	return &ai.EmbedResponse{Embeddings: embeddings}, nil
}

func TestNewEmbeddingFunc(t *testing.T) {
	m := &mockEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	fn := NewEmbeddingFunc(m, nil)

	got, err := fn(context.Background(), "some text")
	if err != nil {
		t.Fatalf("embedding func error: %v", err)
	}
	if len(got) != 3 || got[0] != 0.1 {
		t.Errorf("vector = %v", got)
	}
	if m.calls != 1 {
		t.Errorf("embedder called %d times, want 1", m.calls)
	}
}

func TestNewEmbeddingFuncError(t *testing.T) {
	fn := NewEmbeddingFunc(&mockEmbedder{err: errors.New("quota")}, nil)
	if _, err := fn(context.Background(), "text"); err == nil {
		t.Error("embedder failure should propagate")
	}
}

func TestNewEmbeddingFuncEmptyResponse(t *testing.T) {
	fn := NewEmbeddingFunc(&mockEmbedder{vector: nil}, nil)
	if _, err := fn(context.Background(), "text"); err == nil {
		t.Error("empty embedding should be an error")
	}
}

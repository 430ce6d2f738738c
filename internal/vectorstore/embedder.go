package vectorstore

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// EmbeddingDimension is the vector width requested from the embedder.
// gemini-embedding-001 outputs 3072 dimensions by default but supports
// truncation via OutputDimensionality; 768 keeps the index compact with
// negligible retrieval loss.
const EmbeddingDimension int32 = 768

// NewEmbeddingFunc bridges a Genkit ai.Embedder to chromem-go's
// EmbeddingFunc. chromem normalizes vectors itself, so no manual
// normalization is needed here. limiter paces the embedding API calls;
// nil disables pacing.
func NewEmbeddingFunc(embedder ai.Embedder, limiter *rate.Limiter) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}
		dim := EmbeddingDimension
		resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
			Input:   []*ai.Document{ai.DocumentFromText(text, nil)},
			Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
		})
		if err != nil {
			return nil, fmt.Errorf("embed failed: %w", err)
		}

		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}

		return resp.Embeddings[0].Embedding, nil
	}
}

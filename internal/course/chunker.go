package course

import (
	"errors"
	"strings"
	"unicode"
)

// ErrOverlapTooLarge indicates the overlap budget is not smaller than the
// chunk budget, which would prevent the chunker from making progress.
var ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than chunk size")

// Chunker splits normalized text into overlapping sentence-aligned windows.
//
// The algorithm accumulates whole sentences greedily until adding the next
// one would exceed the size budget, emits the window, then steps back over
// trailing sentences until at least the overlap budget of characters is
// shared with the next window. Sentences are never split; a single sentence
// longer than the budget becomes its own oversized chunk.
type Chunker struct {
	size    int // character budget per chunk
	overlap int // characters shared between consecutive chunks
}

// NewChunker creates a Chunker. overlap >= size is a configuration error.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, errors.New("chunk size must be positive")
	}
	if overlap < 0 {
		return nil, errors.New("chunk overlap must not be negative")
	}
	if overlap >= size {
		return nil, ErrOverlapTooLarge
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into overlapping windows of whole sentences.
// Returns nil for empty or whitespace-only input.
func (c *Chunker) Chunk(text string) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(sentences) {
		end := start
		total := 0
		for end < len(sentences) {
			add := len(sentences[end])
			if end > start {
				add++ // joining space
			}
			if total+add > c.size && end > start {
				break
			}
			total += add
			end++
		}

		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		if end >= len(sentences) {
			break
		}

		// Step back over trailing sentences until the next window shares at
		// least the overlap budget. Bounded at start+1 so every iteration
		// advances.
		next := end
		shared := 0
		for next > start+1 && shared < c.overlap {
			next--
			shared += len(sentences[next]) + 1
		}
		start = next
	}

	return chunks
}

// SplitSentences normalizes whitespace and splits text into sentences.
// A sentence ends at '.', '!' or '?' (optionally followed by a closing
// quote or bracket) when the next character is whitespace.
func SplitSentences(text string) []string {
	normalized := normalizeWhitespace(text)
	if normalized == "" {
		return nil
	}

	var sentences []string
	runes := []rune(normalized)
	begin := 0
	i := 0
	for i < len(runes) {
		if isSentenceEnd(runes[i]) {
			// Absorb trailing closers: quotes, brackets.
			j := i + 1
			for j < len(runes) && isCloser(runes[j]) {
				j++
			}
			if j >= len(runes) || unicode.IsSpace(runes[j]) {
				s := strings.TrimSpace(string(runes[begin:j]))
				if s != "" {
					sentences = append(sentences, s)
				}
				// Skip the separating space.
				begin = j + 1
				i = j + 1
				continue
			}
			i = j
			continue
		}
		i++
	}

	if begin < len(runes) {
		if s := strings.TrimSpace(string(runes[begin:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

// normalizeWhitespace collapses all whitespace runs to single spaces.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

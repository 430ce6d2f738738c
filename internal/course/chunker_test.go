package course

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewChunkerValidation(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
		wantErr       bool
	}{
		{"valid", 800, 100, false},
		{"zero overlap", 800, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 800, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewChunker(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}

	if _, err := NewChunker(100, 100); !errors.Is(err, ErrOverlapTooLarge) {
		t.Error("overlap >= size should return ErrOverlapTooLarge")
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple",
			in:   "First sentence. Second sentence! Third?",
			want: []string{"First sentence.", "Second sentence!", "Third?"},
		},
		{
			name: "collapses whitespace",
			in:   "One  two\n\tthree. Four.",
			want: []string{"One two three.", "Four."},
		},
		{
			name: "decimal points are not boundaries",
			in:   "Version 2.5 shipped today. It works.",
			want: []string{"Version 2.5 shipped today.", "It works."},
		},
		{
			name: "quoted sentence end",
			in:   `He said "stop." Then he left.`,
			want: []string{`He said "stop."`, "Then he left."},
		},
		{
			name: "trailing fragment without punctuation",
			in:   "Complete sentence. trailing fragment",
			want: []string{"Complete sentence.", "trailing fragment"},
		},
		{
			name: "empty input",
			in:   "   \n\t ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkShortInputSingleChunk(t *testing.T) {
	c, err := NewChunker(800, 100)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Chunk("A short lesson. It has two sentences.")
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "A short lesson. It has two sentences." {
		t.Errorf("unexpected chunk text: %q", chunks[0])
	}
}

func TestChunkRespectsSizeBudget(t *testing.T) {
	const size, overlap = 200, 50
	c, err := NewChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}

	// 40 sentences of ~30 chars each, all well under the budget.
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence number %02d has content. ", i)
	}

	chunks := c.Chunk(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > size {
			t.Errorf("chunk %d length %d exceeds budget %d", i, len(chunk), size)
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	const size, overlap = 200, 50
	c, err := NewChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence number %02d has content. ", i)
	}

	chunks := c.Chunk(b.String())
	for i := 1; i < len(chunks); i++ {
		shared := sharedSuffixPrefix(chunks[i-1], chunks[i])
		if shared < overlap {
			t.Errorf("chunks %d and %d share %d chars, want >= %d\nprev: %q\nnext: %q",
				i-1, i, shared, overlap, chunks[i-1], chunks[i])
		}
	}
}

// sharedSuffixPrefix returns the length of the longest suffix of a that is
// a prefix of b.
func sharedSuffixPrefix(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if a[len(a)-n:] == b[:n] {
			return n
		}
	}
	return 0
}

func TestChunkNeverSplitsSentences(t *testing.T) {
	const size, overlap = 150, 30
	c, err := NewChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}

	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, fmt.Sprintf("This is full sentence number %02d.", i))
	}
	chunks := c.Chunk(strings.Join(sentences, " "))

	for i, chunk := range chunks {
		if !strings.HasSuffix(chunk, ".") {
			t.Errorf("chunk %d does not end on a sentence boundary: %q", i, chunk)
		}
		if !strings.HasPrefix(chunk, "This is full sentence") {
			t.Errorf("chunk %d does not start on a sentence boundary: %q", i, chunk)
		}
	}
}

func TestChunkOversizedSentenceKeptWhole(t *testing.T) {
	c, err := NewChunker(50, 10)
	if err != nil {
		t.Fatal(err)
	}

	long := "This single sentence is deliberately much longer than the fifty character budget."
	chunks := c.Chunk(long)
	if len(chunks) != 1 || chunks[0] != long {
		t.Errorf("oversized sentence should become one whole chunk, got %q", chunks)
	}
}

func TestChunkEmpty(t *testing.T) {
	c, err := NewChunker(800, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Chunk("  \n "); got != nil {
		t.Errorf("expected nil for blank input, got %q", got)
	}
}

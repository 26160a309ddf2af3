package token

import (
	"context"
	"strings"
	"testing"

	"github.com/sweetpotato0/docqa/corpus"
)

func newTestChunker(t *testing.T, opts ...Option) *Chunker {
	t.Helper()
	ch, err := New("cl100k_base", opts...)
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return ch
}

func TestChunkRespectsTokenWindow(t *testing.T) {
	ch := newTestChunker(t, WithMaxTokens(20), WithOverlapTokens(4))
	doc := corpus.Document{
		ID:      "long.txt",
		Content: strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20),
	}

	chunks, err := ch.Chunk(context.Background(), doc)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if got := ch.CountTokens(c.Content); got > 20 {
			t.Errorf("chunk %d has %d tokens, want <= 20", i, got)
		}
		if c.DocumentID != "long.txt" {
			t.Errorf("chunk %d: DocumentID = %q", i, c.DocumentID)
		}
	}
}

func TestChunkEmptyDocument(t *testing.T) {
	ch := newTestChunker(t)
	chunks, err := ch.Chunk(context.Background(), corpus.Document{ID: "empty.txt"})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
}

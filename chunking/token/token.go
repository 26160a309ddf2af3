// Package token provides a token-window chunker backed by tiktoken, so chunk
// sizes line up with the embedding model's context limits rather than with
// character counts.
package token

import (
	"context"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sweetpotato0/docqa/corpus"
)

// Chunker splits documents into fixed token windows with overlap.
type Chunker struct {
	enc           *tiktoken.Tiktoken
	maxTokens     int
	overlapTokens int
}

// Option customises the token chunker.
type Option func(*Chunker)

// WithMaxTokens sets the maximum allowed tokens per chunk (default 256).
func WithMaxTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.maxTokens = tokens
		}
	}
}

// WithOverlapTokens sets how many tokens are shared between consecutive chunks.
func WithOverlapTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens >= 0 {
			c.overlapTokens = tokens
		}
	}
}

// New creates a token chunker for the given model or encoding name.
func New(name string, opts ...Option) (*Chunker, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		// try by encoding name
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("load encoding %s: %w", name, err)
		}
	}
	ch := &Chunker{
		enc:           enc,
		maxTokens:     256,
		overlapTokens: 32,
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch, nil
}

// CountTokens returns the number of tokens in text.
func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Chunk implements chunking.Chunker.
func (c *Chunker) Chunk(ctx context.Context, doc corpus.Document) ([]corpus.Chunk, error) {
	corpus.EnsureDocumentID(&doc)

	ids := c.enc.Encode(doc.Content, nil, nil)
	if len(ids) == 0 {
		return []corpus.Chunk{
			{
				ID:         corpus.NextChunkID(doc.ID),
				DocumentID: doc.ID,
				Content:    doc.Content,
				Ordinal:    1,
			},
		}, nil
	}

	var chunks []corpus.Chunk
	start := 0
	ordinal := 0
	for start < len(ids) {
		end := start + c.maxTokens
		if end > len(ids) {
			end = len(ids)
		}
		ordinal++
		chunks = append(chunks, corpus.Chunk{
			ID:         corpus.NextChunkID(doc.ID),
			DocumentID: doc.ID,
			Content:    c.enc.Decode(ids[start:end]),
			Ordinal:    ordinal,
		})
		if end == len(ids) {
			break
		}
		start = end - c.overlapTokens
		if start < 0 {
			start = 0
		}
	}
	return chunks, nil
}

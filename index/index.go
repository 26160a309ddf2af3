// Package index maintains the searchable document index: it chunks and embeds
// documents into a vector store and answers nearest-chunk queries for the
// question-answering layers above it.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sweetpotato0/docqa/chunking"
	"github.com/sweetpotato0/docqa/corpus"
	"github.com/sweetpotato0/docqa/pkg/errors"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/vector"
)

// ChunkHit is a nearest-chunk search result. Distance is 1 - cosine
// similarity; lower means closer.
type ChunkHit struct {
	Text       string  `json:"text"`
	DocumentID string  `json:"document_id"`
	Distance   float32 `json:"distance"`
}

// Config holds index settings.
type Config struct {
	Chunker chunking.Chunker
	Rebuild bool
}

// Option configures the index.
type Option func(*Config)

// WithChunker overrides the default character chunker.
func WithChunker(c chunking.Chunker) Option {
	return func(cfg *Config) {
		if c != nil {
			cfg.Chunker = c
		}
	}
}

// WithRebuild forces re-embedding on Ingest even when document content is
// unchanged.
func WithRebuild(rebuild bool) Option {
	return func(cfg *Config) {
		cfg.Rebuild = rebuild
	}
}

// Index is safe for concurrent reads once built. Ingest takes the write lock;
// NearestChunks and Document take read locks.
type Index struct {
	store    vector.VectorStore
	embedder vector.Embedder
	chunker  chunking.Chunker
	rebuild  bool

	mu           sync.RWMutex
	docs         map[string]corpus.Document
	fingerprints map[string]string
	chunkIDs     map[string][]string
}

// New creates an index over the given store and embedder.
func New(store vector.VectorStore, embedder vector.Embedder, opts ...Option) *Index {
	cfg := &Config{
		Chunker: chunking.NewSimpleChunker(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Index{
		store:        store,
		embedder:     embedder,
		chunker:      cfg.Chunker,
		rebuild:      cfg.Rebuild,
		docs:         make(map[string]corpus.Document),
		fingerprints: make(map[string]string),
		chunkIDs:     make(map[string][]string),
	}
}

// Ingest chunks, embeds and stores the given documents. Re-ingesting a
// document with unchanged content is a no-op unless the index was created
// with WithRebuild.
func (ix *Index) Ingest(ctx context.Context, docs ...corpus.Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	logger := logging.WithComponent("index")
	for _, doc := range docs {
		corpus.EnsureDocumentID(&doc)

		fp := fingerprint(doc.Content)
		if !ix.rebuild && ix.fingerprints[doc.ID] == fp {
			logger.Debug("document unchanged, skipping", "document", doc.ID)
			continue
		}
		if err := ix.removeChunks(ctx, doc.ID); err != nil {
			return err
		}

		chunks, err := ix.chunker.Chunk(ctx, doc)
		if err != nil {
			return fmt.Errorf("chunk document %s: %w", doc.ID, err)
		}
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embed document %s: expected %d vectors, got %d",
				doc.ID, len(chunks), len(vectors))
		}

		ids := make([]string, 0, len(chunks))
		for i, c := range chunks {
			emb := &vector.Embedding{
				ID:         c.ID,
				DocumentID: c.DocumentID,
				Vector:     vectors[i],
				Text:       c.Content,
				Ordinal:    c.Ordinal,
			}
			if err := ix.store.AddEmbedding(ctx, emb); err != nil {
				return fmt.Errorf("store chunk %s: %w", c.ID, err)
			}
			ids = append(ids, c.ID)
		}

		ix.docs[doc.ID] = doc.Clone()
		ix.fingerprints[doc.ID] = fp
		ix.chunkIDs[doc.ID] = ids
		logger.Info("document indexed", "document", doc.ID, "chunks", len(chunks))
	}
	return nil
}

func (ix *Index) removeChunks(ctx context.Context, docID string) error {
	for _, id := range ix.chunkIDs[docID] {
		if err := ix.store.DeleteEmbedding(ctx, id); err != nil {
			return fmt.Errorf("remove stale chunk %s: %w", id, err)
		}
	}
	delete(ix.chunkIDs, docID)
	return nil
}

// NearestChunks embeds the query and returns up to k chunks ordered by
// ascending distance. An empty index yields an empty result, not an error.
func (ix *Index) NearestChunks(ctx context.Context, query string, k int) ([]ChunkHit, error) {
	ix.mu.RLock()
	empty := len(ix.docs) == 0
	ix.mu.RUnlock()
	if empty {
		return nil, nil
	}

	queryVec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := ix.store.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	hits := make([]ChunkHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, ChunkHit{
			Text:       m.Embedding.Text,
			DocumentID: m.Embedding.DocumentID,
			Distance:   m.Distance,
		})
	}
	return hits, nil
}

// Document returns the stored document with the given ID.
func (ix *Index) Document(id string) (corpus.Document, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	doc, ok := ix.docs[id]
	if !ok {
		return corpus.Document{}, fmt.Errorf("document %s: %w", id, errors.ErrNotFound)
	}
	return doc.Clone(), nil
}

// Lines returns the content lines of the stored document with the given ID.
func (ix *Index) Lines(id string) ([]string, error) {
	doc, err := ix.Document(id)
	if err != nil {
		return nil, err
	}
	return doc.Lines(), nil
}

// Documents returns all indexed documents.
func (ix *Index) Documents() []corpus.Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]corpus.Document, 0, len(ix.docs))
	for _, doc := range ix.docs {
		out = append(out, doc.Clone())
	}
	return out
}

// Size returns the number of indexed documents.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

func fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

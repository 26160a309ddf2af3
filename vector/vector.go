// Package vector defines the embedding store contract used by the document
// index, plus the similarity math shared by every store implementation.
package vector

import (
	"context"
	"math"
)

// Embedding represents a stored chunk vector.
type Embedding struct {
	ID         string
	DocumentID string
	Vector     []float32
	Text       string
	Ordinal    int
}

// Match pairs an embedding with its distance to the query vector. Distance is
// 1 - cosine similarity: zero for identical direction, growing as vectors
// diverge, never negative.
type Match struct {
	Embedding *Embedding
	Distance  float32
}

// VectorStore defines the interface for vector storage and similarity search.
type VectorStore interface {
	// AddEmbedding adds a new embedding to the store
	AddEmbedding(ctx context.Context, embedding *Embedding) error

	// Search finds the topK embeddings closest to the query vector,
	// ordered by ascending distance
	Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error)

	// DeleteEmbedding removes an embedding by ID
	DeleteEmbedding(ctx context.Context, id string) error

	// GetEmbedding retrieves a specific embedding by ID
	GetEmbedding(ctx context.Context, id string) (*Embedding, error)

	// Clear removes all embeddings
	Clear(ctx context.Context) error

	// Count returns the number of embeddings
	Count(ctx context.Context) (int, error)
}

// Embedder defines the interface for creating embeddings from text.
type Embedder interface {
	// Embed converts text to a vector embedding
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts to embeddings
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the number of embedding dimensions
	Dimension() int
}

// CosineSimilarity calculates the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dotProduct / (math.Sqrt(normA)*math.Sqrt(normB) + 1e-8))
}

// CosineDistance converts cosine similarity into a non-negative distance where
// lower means closer. Floating-point noise can push 1-cos slightly below zero
// for identical vectors; the result is clamped.
func CosineDistance(a, b []float32) float32 {
	d := 1 - CosineSimilarity(a, b)
	if d < 0 {
		return 0
	}
	return d
}

// Normalize scales the vector to unit length (L2 norm).
func Normalize(vec []float32) []float32 {
	if len(vec) == 0 {
		return vec
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

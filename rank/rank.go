// Package rank scores whole documents by aggregating nearest-chunk distances,
// so the answering agent can start from the most promising files.
package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sweetpotato0/docqa/index"
)

// DefaultTopChunks is how many global nearest chunks feed the aggregation.
const DefaultTopChunks = 20

// RankedFile is one document with its aggregate relevance score. Score is the
// mean chunk distance, so lower means more relevant.
type RankedFile struct {
	DocumentID string  `json:"document_id"`
	Score      float32 `json:"score"`
}

// Ranking is an ordered list of ranked files, best first.
type Ranking []RankedFile

// Format renders the ranking as prompt-ready text, one file per line.
func (r Ranking) Format() string {
	if len(r) == 0 {
		return "No relevant files found."
	}
	var b strings.Builder
	for _, f := range r {
		fmt.Fprintf(&b, "%s: %.4f\n", f.DocumentID, f.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Top returns at most n best-ranked files.
func (r Ranking) Top(n int) Ranking {
	if n <= 0 || n >= len(r) {
		return r
	}
	return r[:n]
}

// Searcher is the slice of the index the aggregator needs.
type Searcher interface {
	NearestChunks(ctx context.Context, query string, k int) ([]index.ChunkHit, error)
}

// Aggregator turns chunk-level search results into document-level scores.
type Aggregator struct {
	searcher  Searcher
	topChunks int
}

// Option configures the aggregator.
type Option func(*Aggregator)

// WithTopChunks overrides how many nearest chunks are aggregated.
func WithTopChunks(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topChunks = n
		}
	}
}

// NewAggregator creates an aggregator over the given searcher.
func NewAggregator(searcher Searcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		searcher:  searcher,
		topChunks: DefaultTopChunks,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FileScores retrieves the globally nearest chunks for the query and scores
// each document by the mean distance of its chunks in that set. Documents
// with no chunk in the top set are omitted entirely. An empty index produces
// an empty ranking, not an error.
func (a *Aggregator) FileScores(ctx context.Context, query string) (Ranking, error) {
	hits, err := a.searcher.NearestChunks(ctx, query, a.topChunks)
	if err != nil {
		return nil, fmt.Errorf("rank files: %w", err)
	}
	if len(hits) == 0 {
		return Ranking{}, nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, h := range hits {
		sums[h.DocumentID] += float64(h.Distance)
		counts[h.DocumentID]++
	}

	ranking := make(Ranking, 0, len(sums))
	for docID, sum := range sums {
		ranking = append(ranking, RankedFile{
			DocumentID: docID,
			Score:      float32(sum / float64(counts[docID])),
		})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score < ranking[j].Score
		}
		return ranking[i].DocumentID < ranking[j].DocumentID
	})
	return ranking, nil
}

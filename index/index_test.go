package index

import (
	"context"
	"strings"
	"testing"

	stderrors "errors"

	"github.com/sweetpotato0/docqa/corpus"
	"github.com/sweetpotato0/docqa/pkg/errors"
	"github.com/sweetpotato0/docqa/vector/inmemory"
)

type keywordEmbedder struct {
	calls int
}

var keywordSpace = []string{"budget", "quarter", "roadmap", "incident"}

func (k *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	k.calls++
	vec := make([]float32, len(keywordSpace))
	lower := strings.ToLower(text)
	for idx, kw := range keywordSpace {
		if strings.Contains(lower, kw) {
			vec[idx] = 1
		}
	}
	return vec, nil
}

func (k *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := k.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (k *keywordEmbedder) Dimension() int {
	return len(keywordSpace)
}

func TestIngestAndNearestChunks(t *testing.T) {
	ctx := context.Background()
	ix := New(inmemory.New(), &keywordEmbedder{})

	err := ix.Ingest(ctx,
		corpus.Document{ID: "budget_report_q1.txt", Content: "The quarter budget was 50,000."},
		corpus.Document{ID: "roadmap.txt", Content: "The roadmap covers new features."},
	)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if ix.Size() != 2 {
		t.Fatalf("Size = %d, want 2", ix.Size())
	}

	hits, err := ix.NearestChunks(ctx, "What was the budget for the quarter?", 2)
	if err != nil {
		t.Fatalf("NearestChunks: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].DocumentID != "budget_report_q1.txt" {
		t.Errorf("closest hit document = %s, want budget_report_q1.txt", hits[0].DocumentID)
	}
	if hits[0].Distance > hits[1].Distance {
		t.Errorf("hits not ordered by ascending distance")
	}
	if hits[0].Distance < 0 {
		t.Errorf("negative distance: %f", hits[0].Distance)
	}
}

func TestNearestChunksEmptyIndex(t *testing.T) {
	emb := &keywordEmbedder{}
	ix := New(inmemory.New(), emb)

	hits, err := ix.NearestChunks(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("NearestChunks: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits from empty index, got %d", len(hits))
	}
	if emb.calls != 0 {
		t.Fatalf("embedder called %d times on empty index", emb.calls)
	}
}

func TestIngestIdempotent(t *testing.T) {
	ctx := context.Background()
	emb := &keywordEmbedder{}
	ix := New(inmemory.New(), emb)

	doc := corpus.Document{ID: "budget.txt", Content: "budget details"}
	if err := ix.Ingest(ctx, doc); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	callsAfterFirst := emb.calls
	if err := ix.Ingest(ctx, doc); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if emb.calls != callsAfterFirst {
		t.Fatalf("unchanged document re-embedded: %d calls after first, %d after second",
			callsAfterFirst, emb.calls)
	}

	doc.Content = "revised budget details"
	if err := ix.Ingest(ctx, doc); err != nil {
		t.Fatalf("third Ingest: %v", err)
	}
	if emb.calls == callsAfterFirst {
		t.Fatalf("changed document not re-embedded")
	}
}

func TestIngestRebuild(t *testing.T) {
	ctx := context.Background()
	emb := &keywordEmbedder{}
	ix := New(inmemory.New(), emb, WithRebuild(true))

	doc := corpus.Document{ID: "budget.txt", Content: "budget details"}
	if err := ix.Ingest(ctx, doc); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	callsAfterFirst := emb.calls
	if err := ix.Ingest(ctx, doc); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if emb.calls == callsAfterFirst {
		t.Fatalf("rebuild index skipped re-embedding")
	}
}

func TestDocumentLookup(t *testing.T) {
	ctx := context.Background()
	ix := New(inmemory.New(), &keywordEmbedder{})

	if err := ix.Ingest(ctx, corpus.Document{ID: "a.txt", Content: "budget"}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	doc, err := ix.Document("a.txt")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.ID != "a.txt" {
		t.Errorf("Document ID = %s", doc.ID)
	}

	if _, err := ix.Document("missing.txt"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing document: got %v, want ErrNotFound", err)
	}
}

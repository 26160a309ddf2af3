package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sweetpotato0/docqa/corpus"
)

func TestSourceRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping MongoDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	src, err := New(ctx, uri, WithDatabase("docqa_test"), WithCollection("documents_test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer src.Close(ctx)

	doc := corpus.Document{
		ID:      "budget_report_q1.txt",
		Title:   "budget_report_q1",
		Content: "The Q1 budget was 50,000.",
	}
	if err := src.Store(ctx, doc); err != nil {
		t.Fatalf("Store: %v", err)
	}

	docs, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	found := false
	for _, d := range docs {
		if d.ID == doc.ID && d.Content == doc.Content {
			found = true
		}
	}
	if !found {
		t.Fatalf("stored document not found in Load result")
	}
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sweetpotato0/docqa/index"
	pkgerrors "github.com/sweetpotato0/docqa/pkg/errors"
)

type stubIndex struct {
	hits  []index.ChunkHit
	files map[string][]string
}

func (s *stubIndex) NearestChunks(ctx context.Context, query string, k int) ([]index.ChunkHit, error) {
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *stubIndex) Lines(id string) ([]string, error) {
	lines, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}
	return lines, nil
}

func TestRegistryRegisterAndExecute(t *testing.T) {
	reg := NewRegistry()
	tool := &Tool{
		Name:        "echo",
		Description: "Echo the input.",
		Parameters:  []Parameter{{Name: "text", Type: "string", Required: true}},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return args["text"].(string), nil
		},
	}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(tool); !errors.Is(err, pkgerrors.ErrAlreadyExists) {
		t.Fatalf("duplicate Register: got %v, want ErrAlreadyExists", err)
	}

	out, err := reg.Execute(context.Background(), "echo", map[string]interface{}{"text": "hi"})
	if err != nil || out != "hi" {
		t.Fatalf("Execute = %q, %v", out, err)
	}
	if _, err := reg.Execute(context.Background(), "missing", nil); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Execute of unknown tool: got %v, want ErrNotFound", err)
	}
	if _, err := reg.Execute(context.Background(), "echo", map[string]interface{}{}); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Fatalf("Execute without required arg: got %v, want ErrInvalidInput", err)
	}
}

func TestSemanticSearchTool(t *testing.T) {
	ix := &stubIndex{
		hits: []index.ChunkHit{
			{Text: "The Q1 budget was 50,000.", DocumentID: "budget_report_q1.txt", Distance: 0.12},
			{Text: "Roadmap items for Q2.", DocumentID: "roadmap.txt", Distance: 0.42},
		},
	}
	tool := NewSemanticSearch(ix)

	out, err := tool.Execute(context.Background(), map[string]interface{}{"query": "budget"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "source=budget_report_q1.txt") || !strings.Contains(out, "50,000") {
		t.Errorf("missing hit data:\n%s", out)
	}

	out, err = tool.Execute(context.Background(), map[string]interface{}{"query": "   "})
	if err != nil {
		t.Fatalf("Execute blank query: %v", err)
	}
	if !strings.HasPrefix(out, "Error:") {
		t.Errorf("blank query should yield textual error, got %q", out)
	}

	empty := NewSemanticSearch(&stubIndex{})
	out, err = empty.Execute(context.Background(), map[string]interface{}{"query": "budget"})
	if err != nil || out != "No matching chunks found." {
		t.Errorf("empty index: got %q, %v", out, err)
	}
}

func TestReadSectionTool(t *testing.T) {
	ix := &stubIndex{
		files: map[string][]string{
			"notes.txt": {"line one", "line two", "line three", "line four"},
		},
	}
	tool := NewReadSection(ix)
	ctx := context.Background()

	out, err := tool.Execute(ctx, map[string]interface{}{
		"document_id": "notes.txt", "start_line": float64(1), "num_lines": float64(2),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "1: line two") || !strings.Contains(out, "2: line three") {
		t.Errorf("wrong section:\n%s", out)
	}
	if strings.Contains(out, "line four") {
		t.Errorf("section overran num_lines:\n%s", out)
	}

	out, _ = tool.Execute(ctx, map[string]interface{}{
		"document_id": "notes.txt", "start_line": float64(4),
	})
	if out != "Error: start_line 4 exceeds file length (4 lines)" {
		t.Errorf("out-of-range observation = %q", out)
	}

	out, _ = tool.Execute(ctx, map[string]interface{}{
		"document_id": "missing.txt", "start_line": float64(0),
	})
	if !strings.HasPrefix(out, "Error:") {
		t.Errorf("missing document should yield textual error, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 600)
	got := Truncate(long, 0)
	if len(got) != DefaultObservationLimit {
		t.Errorf("truncated length = %d, want exactly %d", len(got), DefaultObservationLimit)
	}
	if got != long[:DefaultObservationLimit] {
		t.Errorf("truncation must keep the prefix")
	}
	if got := Truncate(long, 100); len(got) != 100 {
		t.Errorf("truncated length = %d, want exactly 100", len(got))
	}
	if Truncate("short", 100) != "short" {
		t.Errorf("short string should be unchanged")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// four 3-byte runes; a 7-byte limit falls mid-rune
	s := strings.Repeat("世", 4)
	got := Truncate(s, 7)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got)
	}
	if got != strings.Repeat("世", 2) {
		t.Errorf("got %q, want the two whole leading runes", got)
	}
}

func TestPromptDescriptions(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(NewSemanticSearch(&stubIndex{})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(NewReadSection(&stubIndex{})); err != nil {
		t.Fatalf("Register: %v", err)
	}

	text := reg.PromptDescriptions()
	if !strings.Contains(text, "semantic_search") || !strings.Contains(text, "read_section") {
		t.Errorf("missing tool names:\n%s", text)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "- read_section") {
		t.Errorf("tools not ordered by name:\n%s", text)
	}
}

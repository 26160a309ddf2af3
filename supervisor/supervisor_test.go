package supervisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sweetpotato0/docqa/corpus"
	"github.com/sweetpotato0/docqa/index"
	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/message"
	"github.com/sweetpotato0/docqa/workflow"
)

// scriptedLLM returns its responses in order, repeating the last one.
type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return &llm.GenerateResponse{
		Message: message.NewMessage(message.RoleAssistant, s.responses[idx]),
	}, nil
}

type stubIndex struct {
	docs []corpus.Document
	hits []index.ChunkHit
}

func (s *stubIndex) NearestChunks(ctx context.Context, query string, k int) ([]index.ChunkHit, error) {
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *stubIndex) Lines(id string) ([]string, error) {
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc.Lines(), nil
		}
	}
	return nil, fmt.Errorf("document %s not found", id)
}

func (s *stubIndex) Documents() []corpus.Document {
	return s.docs
}

func budgetIndex() *stubIndex {
	return &stubIndex{
		docs: []corpus.Document{
			{ID: "budget_report_q1.txt", Content: "Q1 Budget Report\nPrepared by finance\nThe approved Q1 budget was 50,000.\nDetails follow."},
			{ID: "roadmap_2025.txt", Content: "2025 Roadmap\nFour releases planned\nDetails follow."},
		},
		hits: []index.ChunkHit{
			{DocumentID: "budget_report_q1.txt", Distance: 0.12, Text: "The approved Q1 budget was 50,000."},
		},
	}
}

func TestSanitizePersona(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"financial", "financial"},
		{"  Financial \n", "financial"},
		{`"financial"`, "financial"},
		{"`project_management`", "project_management"},
		{"'RISK'", "risk"},
	}
	for _, tc := range cases {
		if got := sanitizePersona(tc.raw); got != tc.want {
			t.Errorf("sanitizePersona(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestPersonasClosedSet(t *testing.T) {
	want := []string{"feedback", "financial", "general", "performance", "project_management", "risk", "technical"}
	got := Personas()
	if len(got) != len(want) {
		t.Fatalf("personas = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("persona[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSupervisorRoutesAndAnswers(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		"financial",
		`{"thought": "search the budget report", "tool": "semantic_search", "args": {"query": "Q1 budget"}}`,
		`{"thought": "the figure is in the report", "final_answer": "The Q1 budget was 50,000 (from budget_report_q1.txt)."}`,
		`{"verdict": "yes"}`,
		"The approved Q1 budget was 50,000, per budget_report_q1.txt.",
	}}

	s, err := New(client, budgetIndex())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := s.Run(context.Background(), "What was the Q1 budget?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Persona != "financial" {
		t.Errorf("persona = %s, want financial", result.Persona)
	}
	if !strings.Contains(result.Answer, "50,000") {
		t.Errorf("answer = %q", result.Answer)
	}
	if client.calls != 5 {
		t.Errorf("LLM called %d times, want 5", client.calls)
	}
}

func TestSupervisorRejectsUnknownPersona(t *testing.T) {
	client := &scriptedLLM{responses: []string{"astrology"}}

	s, err := New(client, budgetIndex())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Run(context.Background(), "What was the Q1 budget?")
	var stageErr *workflow.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("got %v, want *workflow.StageError", err)
	}
	if stageErr.Stage != "route" {
		t.Errorf("failed stage = %s, want route", stageErr.Stage)
	}
	if !strings.Contains(err.Error(), "astrology") {
		t.Errorf("error should name the rejected persona, got %v", err)
	}
}

func TestSupervisorRequiresDocuments(t *testing.T) {
	client := &scriptedLLM{responses: []string{"unused"}}

	s, err := New(client, &stubIndex{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Run(context.Background(), "anything")
	var stageErr *workflow.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("got %v, want *workflow.StageError", err)
	}
	if stageErr.Stage != "preview" {
		t.Errorf("failed stage = %s, want preview", stageErr.Stage)
	}
	if client.calls != 0 {
		t.Errorf("LLM called %d times before preview failed", client.calls)
	}
}

func TestSupervisorStages(t *testing.T) {
	s, err := New(&scriptedLLM{responses: []string{"unused"}}, budgetIndex())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{"preview", "route", "consult", "summarize"}
	got := s.Stages()
	if len(got) != len(want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

// Package supervisor implements the routed question-answering workflow: a
// preview of the indexed documents is shown to a routing LLM, which picks one
// specialist persona; that persona's self-correcting agent gathers the answer
// and a summarizer merges the result into the final reply.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sweetpotato0/docqa/corpus"
	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/pkg/errors"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/pkg/telemetry"
	"github.com/sweetpotato0/docqa/react"
	"github.com/sweetpotato0/docqa/tools"
	"github.com/sweetpotato0/docqa/workflow"
)

// PreviewLines is how many leading lines of each document feed the routing
// knowledge base.
const PreviewLines = 3

// Index is the document access the supervisor needs: chunk search and bounded
// reads for the specialist agents, full document listing for the preview.
type Index interface {
	tools.Searcher
	tools.LineSource
	Documents() []corpus.Document
}

// State is threaded through the supervisor stages.
type State struct {
	OriginalQuery string            `json:"original_query"`
	KnowledgeBase map[string]string `json:"knowledge_base,omitempty"`
	Persona       string            `json:"agent_to_run,omitempty"`
	Results       map[string]string `json:"results,omitempty"`
	FinalSummary  string            `json:"final_summary,omitempty"`
}

// Result is what the caller receives on success.
type Result struct {
	Persona string `json:"persona"`
	Answer  string `json:"answer"`
}

// Config holds supervisor settings.
type Config struct {
	RouterPrompt     string
	SummarizerPrompt string
	MaxIterations    int
	MaxAttempts      int
}

// Option configures the supervisor.
type Option func(*Config)

// WithRouterPrompt overrides the routing instructions.
func WithRouterPrompt(prompt string) Option {
	return func(c *Config) {
		if prompt != "" {
			c.RouterPrompt = prompt
		}
	}
}

// WithSummarizerPrompt overrides the summarizer instructions.
func WithSummarizerPrompt(prompt string) Option {
	return func(c *Config) {
		if prompt != "" {
			c.SummarizerPrompt = prompt
		}
	}
}

// WithMaxIterations caps each specialist's reasoning loop (default 5).
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

// WithMaxAttempts caps each specialist's self-correction retries (default 5).
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// Supervisor routes questions to specialist agents.
type Supervisor struct {
	client  llm.Client
	ix      Index
	runners map[string]*react.SelfCorrecting
	seq     *workflow.Sequence[*State]
	cfg     Config
}

// New wires a supervisor over the given LLM and index. One self-correcting
// agent is built per persona, all sharing the same tool registry.
func New(client llm.Client, ix Index, opts ...Option) (*Supervisor, error) {
	cfg := Config{
		RouterPrompt:     defaultRouterPrompt,
		SummarizerPrompt: defaultSummarizerPrompt,
		MaxIterations:    5,
		MaxAttempts:      5,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if client == nil {
		return nil, fmt.Errorf("supervisor needs an LLM client")
	}
	if ix == nil {
		return nil, fmt.Errorf("supervisor needs a document index")
	}

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSemanticSearch(ix)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewReadSection(ix)); err != nil {
		return nil, err
	}

	grader := react.NewGrader(client)
	runners := make(map[string]*react.SelfCorrecting, len(personaPrompts))
	for persona, prompt := range personaPrompts {
		loop := react.NewLoop(client, registry,
			react.WithMaxIterations(cfg.MaxIterations),
			react.WithSystemPrompt(prompt+"\n\n"+loopContract),
		)
		runners[persona] = react.NewSelfCorrecting(loop, grader, react.WithMaxAttempts(cfg.MaxAttempts))
	}

	s := &Supervisor{
		client:  client,
		ix:      ix,
		runners: runners,
		cfg:     cfg,
	}

	seq, err := workflow.NewBuilder[*State]("supervisor").
		Stage("preview", s.preview).
		Stage("route", s.route).
		Stage("consult", s.consult).
		Stage("summarize", s.summarize).
		Build()
	if err != nil {
		return nil, err
	}
	s.seq = seq
	return s, nil
}

// Run answers one question through the routed workflow.
func (s *Supervisor) Run(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	ctx, span := telemetry.Tracer().Start(ctx, "supervisor.run")
	state, err := s.seq.Run(ctx, &State{OriginalQuery: query})
	telemetry.End(span, err)
	if err != nil {
		return nil, err
	}
	return &Result{
		Persona: state.Persona,
		Answer:  state.FinalSummary,
	}, nil
}

// Stages returns the stage names in execution order.
func (s *Supervisor) Stages() []string {
	return s.seq.Stages()
}

// Personas returns the closed set of specialist names, sorted.
func Personas() []string {
	out := make([]string, 0, len(personaPrompts))
	for p := range personaPrompts {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// preview builds the routing knowledge base from the first lines of each
// indexed document.
func (s *Supervisor) preview(ctx context.Context, state *State) (*State, error) {
	docs := s.ix.Documents()
	if len(docs) == 0 {
		return state, fmt.Errorf("knowledge base preview failed: no documents indexed")
	}
	kb := make(map[string]string, len(docs))
	for _, doc := range docs {
		kb[doc.ID] = doc.Preview(PreviewLines)
	}
	state.KnowledgeBase = kb
	logging.WithComponent("supervisor").Debug("knowledge base built", "documents", len(kb))
	return state, nil
}

// route asks the LLM which persona should handle the query. Anything outside
// the closed persona set is a routing failure, never a silent default.
func (s *Supervisor) route(ctx context.Context, state *State) (*State, error) {
	kb, err := json.MarshalIndent(state.KnowledgeBase, "", "  ")
	if err != nil {
		return state, fmt.Errorf("persona routing failed: %w", err)
	}
	user := fmt.Sprintf("Query: %s\n\nKnowledge Base Preview:\n%s", state.OriginalQuery, kb)

	resp, err := s.client.Generate(ctx, &llm.GenerateRequest{
		Messages: llm.Prompt(s.cfg.RouterPrompt, user),
	})
	if err != nil {
		return state, fmt.Errorf("persona routing failed: %w", err)
	}

	persona := sanitizePersona(resp.Message.Text())
	if _, ok := personaPrompts[persona]; !ok {
		return state, fmt.Errorf("persona routing failed: %w: unknown persona %q", errors.ErrInvalidInput, persona)
	}
	state.Persona = persona
	logging.WithComponent("supervisor").Info("query routed", "persona", persona)
	return state, nil
}

// consult runs the routed persona's self-correcting agent.
func (s *Supervisor) consult(ctx context.Context, state *State) (*State, error) {
	runner, ok := s.runners[state.Persona]
	if !ok {
		return state, fmt.Errorf("agent consultation failed: no agent for persona %q", state.Persona)
	}
	outcome, err := runner.Run(ctx, state.OriginalQuery)
	if err != nil {
		return state, fmt.Errorf("agent consultation failed: %w", err)
	}
	state.Results = map[string]string{state.Persona: outcome.Answer}
	return state, nil
}

// summarize merges the agent results into the final reply.
func (s *Supervisor) summarize(ctx context.Context, state *State) (*State, error) {
	results, err := json.MarshalIndent(state.Results, "", "  ")
	if err != nil {
		return state, fmt.Errorf("summary failed: %w", err)
	}
	user := fmt.Sprintf("User's Query: %s\n\nAgent Results:\n%s", state.OriginalQuery, results)

	resp, err := s.client.Generate(ctx, &llm.GenerateRequest{
		Messages: llm.Prompt(s.cfg.SummarizerPrompt, user),
	})
	if err != nil {
		return state, fmt.Errorf("summary failed: %w", err)
	}
	state.FinalSummary = strings.TrimSpace(resp.Message.Text())
	return state, nil
}

// sanitizePersona strips the quoting and casing noise small models wrap
// around a bare persona name.
func sanitizePersona(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(s)
	return strings.TrimSpace(s)
}

// Package pipeline composes the four-stage question answering workflow:
// analyze the query, rank the indexed files, gather evidence with the
// tool-using agent, and synthesize a cited answer. A stage failure aborts the
// run and is reported tagged with the stage that caused it.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sweetpotato0/docqa/cache"
	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/pkg/jsonx"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/pkg/telemetry"
	"github.com/sweetpotato0/docqa/rank"
	"github.com/sweetpotato0/docqa/react"
	"github.com/sweetpotato0/docqa/tools"
	"github.com/sweetpotato0/docqa/workflow"
)

// Index is the slice of the document index the pipeline needs: chunk search
// for ranking and evidence gathering, line access for bounded reads.
type Index interface {
	tools.Searcher
	tools.LineSource
}

// Pipeline answers questions over an indexed document collection.
type Pipeline struct {
	client     llm.Client
	aggregator *rank.Aggregator
	loop       *react.Loop
	corrector  *react.SelfCorrecting
	seq        *workflow.Sequence[*State]
	cfg        Config
}

// New wires a pipeline over the given LLM and index. The returned pipeline is
// safe for concurrent use.
func New(client llm.Client, ix Index, opts ...Option) (*Pipeline, error) {
	cfg := Config{
		AnalyzerPrompt:   defaultAnalyzerPrompt,
		SynthesisPrompt:  defaultSynthesisPrompt,
		MaxIterations:    5,
		ObservationLimit: tools.DefaultObservationLimit,
		TopChunks:        rank.DefaultTopChunks,
		MaxAttempts:      5,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if client == nil {
		return nil, fmt.Errorf("pipeline needs an LLM client")
	}
	if ix == nil {
		return nil, fmt.Errorf("pipeline needs a document index")
	}

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSemanticSearch(ix)); err != nil {
		return nil, err
	}
	if err := registry.Register(tools.NewReadSection(ix)); err != nil {
		return nil, err
	}

	loop := react.NewLoop(client, registry,
		react.WithMaxIterations(cfg.MaxIterations),
		react.WithObservationLimit(cfg.ObservationLimit),
	)
	p := &Pipeline{
		client:     client,
		aggregator: rank.NewAggregator(ix, rank.WithTopChunks(cfg.TopChunks)),
		loop:       loop,
		cfg:        cfg,
	}
	if cfg.Grader != nil {
		p.corrector = react.NewSelfCorrecting(loop, cfg.Grader, react.WithMaxAttempts(cfg.MaxAttempts))
	}

	seq, err := workflow.NewBuilder[*State]("docqa").
		Stage("analyze", p.analyze).
		Stage("rank", p.rankFiles).
		Stage("gather", p.gather).
		Stage("synthesize", p.synthesize).
		Build()
	if err != nil {
		return nil, err
	}
	p.seq = seq
	return p, nil
}

// Run answers one question. It returns exactly one of a result or an error;
// stage failures surface as *workflow.StageError.
func (p *Pipeline) Run(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	logger := logging.WithComponent("pipeline")

	if p.cfg.ResultCache != nil {
		entry, err := p.cfg.ResultCache.Get(ctx, query)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		} else if entry != nil {
			logger.Info("cache hit", "question", query)
			return &Result{Reasoning: entry.Reasoning, Answer: entry.Answer}, nil
		}
	}

	ctx, span := telemetry.Tracer().Start(ctx, "pipeline.run")
	state, err := p.seq.Run(ctx, &State{OriginalQuery: query})
	telemetry.End(span, err)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Reasoning: state.ReasoningTrace,
		Answer:    state.FinalAnswer,
	}
	if p.cfg.ResultCache != nil {
		if err := p.cfg.ResultCache.Set(ctx, &cache.Entry{
			Question:  query,
			Answer:    result.Answer,
			Reasoning: result.Reasoning,
		}); err != nil {
			logger.Warn("cache store failed", "error", err)
		}
	}
	return result, nil
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	return p.seq.Stages()
}

func (p *Pipeline) analyze(ctx context.Context, state *State) (*State, error) {
	resp, err := p.client.Generate(ctx, &llm.GenerateRequest{
		Messages: llm.Prompt(p.cfg.AnalyzerPrompt, state.OriginalQuery),
		JSONMode: true,
	})
	if err != nil {
		return state, fmt.Errorf("query analysis failed: %w", err)
	}
	analysis, err := jsonx.Decode[QueryAnalysis](resp.Message.Text())
	if err != nil {
		return state, fmt.Errorf("query analysis failed: %w", err)
	}
	state.Analysis = analysis
	return state, nil
}

func (p *Pipeline) rankFiles(ctx context.Context, state *State) (*State, error) {
	ranking, err := p.aggregator.FileScores(ctx, state.OriginalQuery)
	if err != nil {
		return state, fmt.Errorf("file relevance scoring failed: %w", err)
	}
	state.FileScores = ranking
	return state, nil
}

func (p *Pipeline) gather(ctx context.Context, state *State) (*State, error) {
	var outcome *react.Outcome
	var err error
	if p.corrector != nil {
		// graded against the bare question, not the rendered task
		outcome, err = p.corrector.RunTask(ctx, state.OriginalQuery, gatherTask(state))
	} else {
		outcome, err = p.loop.Run(ctx, gatherTask(state))
	}
	if err != nil {
		return state, fmt.Errorf("evidence gathering failed: %w", err)
	}

	evidence := make([]EvidenceItem, 0, len(outcome.Steps)+1)
	for _, step := range outcome.Steps {
		if step.Action == "invalid_decision" {
			continue
		}
		evidence = append(evidence, EvidenceItem{
			Action:      step.Action,
			Input:       step.Input,
			Observation: step.Observation,
		})
	}
	evidence = append(evidence, EvidenceItem{
		Type:    "final_output",
		Content: outcome.Answer,
	})
	state.Evidence = evidence
	return state, nil
}

func (p *Pipeline) synthesize(ctx context.Context, state *State) (*State, error) {
	rendered, err := json.MarshalIndent(state.Evidence, "", "  ")
	if err != nil {
		return state, fmt.Errorf("synthesis failed: %w", err)
	}
	user := fmt.Sprintf("Original Query: %s\n\nGathered Evidence:\n%s", state.OriginalQuery, rendered)

	resp, err := p.client.Generate(ctx, &llm.GenerateRequest{
		Messages: llm.Prompt(p.cfg.SynthesisPrompt, user),
	})
	if err != nil {
		return state, fmt.Errorf("synthesis failed: %w", err)
	}

	reasoning, answer := splitSynthesis(resp.Message.Text())
	state.ReasoningTrace = reasoning
	state.FinalAnswer = answer
	return state, nil
}

// gatherTask renders the agent task: the question, the structured analysis
// and the file ranking, so the agent starts from the most promising files.
func gatherTask(state *State) string {
	analysis := "{}"
	if state.Analysis != nil {
		if raw, err := json.MarshalIndent(state.Analysis, "", "  "); err == nil {
			analysis = string(raw)
		}
	}
	ranking := state.FileScores.Format()
	if len(state.FileScores) == 0 {
		ranking = "No ranking available; treat every file as equally relevant."
	}
	return fmt.Sprintf(
		"Original Query: %s\n\nQuery Analysis:\n%s\n\nAvailable Files with Relevance Scores (lower is better):\n%s",
		state.OriginalQuery, analysis, ranking,
	)
}

// splitSynthesis separates the REASONING and ANSWER sections. Output that does
// not follow the format is treated as a bare answer.
func splitSynthesis(text string) (reasoning, answer string) {
	const (
		reasoningMark = "**REASONING:**"
		answerMark    = "**ANSWER:**"
	)
	if idx := strings.Index(text, answerMark); idx >= 0 {
		head := text[:idx]
		answer = strings.TrimSpace(text[idx+len(answerMark):])
		head = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(head), reasoningMark))
		if head == "" {
			head = fallbackReasoning
		}
		return head, answer
	}
	return fallbackReasoning, strings.TrimSpace(text)
}

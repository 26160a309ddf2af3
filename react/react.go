// Package react implements the tool-using reasoning loop: the LLM picks one
// tool per step as a strict JSON decision, observes the result, and repeats
// until it commits to a final answer or runs out of iterations.
package react

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/pkg/jsonx"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/tools"
)

// ErrBudgetExhausted is returned when the loop hits its iteration limit
// without producing a final answer.
var ErrBudgetExhausted = fmt.Errorf("reasoning budget exhausted")

const defaultSystemPrompt = `You are a research assistant answering questions from an indexed document collection.
On every turn respond with exactly one JSON object, nothing else. Either call a tool:
{"thought": "<why this step>", "tool": "<tool name>", "args": {...}}
or finish:
{"thought": "<summary of evidence>", "final_answer": "<answer citing source files>"}
Ground every claim in tool observations. Cite the source file names you used.

Available tools:
%s`

// Decision is the JSON contract the LLM must follow on each step.
type Decision struct {
	Thought     string         `json:"thought"`
	Tool        string         `json:"tool,omitempty"`
	Args        map[string]any `json:"args,omitempty"`
	FinalAnswer string         `json:"final_answer,omitempty"`
}

// Step is one executed loop iteration. Failed steps carry the failure text in
// Observation so the model can correct course.
type Step struct {
	Thought     string `json:"thought"`
	Action      string `json:"action"`
	Input       string `json:"input,omitempty"`
	Observation string `json:"observation"`
}

// Outcome is the result of a loop run.
type Outcome struct {
	Steps  []Step `json:"steps"`
	Answer string `json:"answer"`
}

// Config holds loop settings.
type Config struct {
	MaxIterations    int
	ObservationLimit int
	SystemPrompt     string
}

// Option configures the loop.
type Option func(*Config)

// WithMaxIterations caps the number of reasoning steps (default 5).
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

// WithObservationLimit caps observation length in characters (default 500).
func WithObservationLimit(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ObservationLimit = n
		}
	}
}

// WithSystemPrompt overrides the default loop instructions. The prompt must
// contain a %s placeholder for the tool descriptions.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		if prompt != "" {
			c.SystemPrompt = prompt
		}
	}
}

// Loop drives the decide-act-observe cycle.
type Loop struct {
	client   llm.Client
	registry *tools.Registry
	cfg      Config
}

// NewLoop creates a reasoning loop over the given LLM and tool registry.
func NewLoop(client llm.Client, registry *tools.Registry, opts ...Option) *Loop {
	cfg := Config{
		MaxIterations:    5,
		ObservationLimit: tools.DefaultObservationLimit,
		SystemPrompt:     defaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loop{
		client:   client,
		registry: registry,
		cfg:      cfg,
	}
}

// Run executes the loop for one task. On budget exhaustion it returns the
// partial outcome together with ErrBudgetExhausted so callers keep the trace.
func (l *Loop) Run(ctx context.Context, task string) (*Outcome, error) {
	logger := logging.WithComponent("react")
	system := fmt.Sprintf(l.cfg.SystemPrompt, l.registry.PromptDescriptions())

	outcome := &Outcome{}
	for i := 0; i < l.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		resp, err := l.client.Generate(ctx, &llm.GenerateRequest{
			Messages: llm.Prompt(system, l.renderTask(task, outcome.Steps)),
			JSONMode: true,
		})
		if err != nil {
			return outcome, fmt.Errorf("generate decision: %w", err)
		}

		decision, err := jsonx.Decode[Decision](resp.Message.Text())
		if err != nil {
			logger.Warn("malformed decision", "step", i+1, "error", err)
			outcome.Steps = append(outcome.Steps, Step{
				Action:      "invalid_decision",
				Observation: fmt.Sprintf("Error: response was not a valid decision JSON object: %v", err),
			})
			continue
		}

		if decision.FinalAnswer != "" {
			outcome.Answer = strings.TrimSpace(decision.FinalAnswer)
			logger.Info("loop concluded", "steps", len(outcome.Steps))
			return outcome, nil
		}
		if decision.Tool == "" {
			outcome.Steps = append(outcome.Steps, Step{
				Thought:     decision.Thought,
				Action:      "invalid_decision",
				Observation: "Error: decision must either name a tool or provide final_answer",
			})
			continue
		}

		observation, err := l.registry.Execute(ctx, decision.Tool, decision.Args)
		if err != nil {
			// recoverable: surface the failure to the model as an observation
			observation = fmt.Sprintf("Error: %v", err)
		}
		step := Step{
			Thought:     decision.Thought,
			Action:      decision.Tool,
			Input:       encodeArgs(decision.Args),
			Observation: tools.Truncate(observation, l.cfg.ObservationLimit),
		}
		outcome.Steps = append(outcome.Steps, step)
		logger.Debug("step executed", "step", i+1, "tool", decision.Tool)
	}

	logger.Warn("iteration budget exhausted", "steps", len(outcome.Steps))
	return outcome, fmt.Errorf("%w after %d steps", ErrBudgetExhausted, l.cfg.MaxIterations)
}

func (l *Loop) renderTask(task string, steps []Step) string {
	var b strings.Builder
	b.WriteString("Task: ")
	b.WriteString(task)
	if len(steps) > 0 {
		b.WriteString("\n\nSteps so far:")
		for i, s := range steps {
			fmt.Fprintf(&b, "\n%d. Thought: %s\n   Action: %s", i+1, s.Thought, s.Action)
			if s.Input != "" {
				fmt.Fprintf(&b, "\n   Input: %s", s.Input)
			}
			fmt.Fprintf(&b, "\n   Observation: %s", s.Observation)
		}
		b.WriteString("\n\nDecide the next step.")
	}
	return b.String()
}

// Observations joins all tool observations collected during the run.
func (o *Outcome) Observations() string {
	var parts []string
	for _, s := range o.Steps {
		if s.Action == "invalid_decision" {
			continue
		}
		parts = append(parts, s.Observation)
	}
	return strings.Join(parts, "\n")
}

func encodeArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(raw)
}

package react

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/pkg/jsonx"
	"github.com/sweetpotato0/docqa/pkg/logging"
)

const defaultGraderPrompt = `You grade whether an answer is grounded in the evidence that was gathered for it.
Respond with one JSON object: {"verdict": "yes"} if the answer is supported by the evidence and addresses the question, {"verdict": "no"} otherwise.`

// Grader asks an LLM whether an answer is grounded in its evidence.
type Grader struct {
	client llm.Client
	prompt string
}

// NewGrader creates a grader over the given LLM.
func NewGrader(client llm.Client) *Grader {
	return &Grader{
		client: client,
		prompt: defaultGraderPrompt,
	}
}

type verdict struct {
	Verdict string `json:"verdict"`
}

// Grade returns true when the grader accepts the answer. Only an explicit
// "yes" verdict passes; anything else, including malformed grader output,
// counts as a rejection.
func (g *Grader) Grade(ctx context.Context, question, answer, evidence string) (bool, error) {
	user := fmt.Sprintf("Question: %s\n\nEvidence:\n%s\n\nAnswer:\n%s", question, evidence, answer)
	resp, err := g.client.Generate(ctx, &llm.GenerateRequest{
		Messages: llm.Prompt(g.prompt, user),
		JSONMode: true,
	})
	if err != nil {
		return false, fmt.Errorf("grade answer: %w", err)
	}

	v, err := jsonx.Decode[verdict](resp.Message.Text())
	if err != nil {
		return false, nil
	}
	return normalizeVerdict(v.Verdict) == "yes", nil
}

func normalizeVerdict(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.Trim(s, "\"'`")
	return s
}

// SelfCorrecting wraps a reasoning loop with grading and retries: answers
// that fail the grade, or attempts that gather no evidence, are discarded and
// the loop runs again up to MaxAttempts times.
type SelfCorrecting struct {
	loop        *Loop
	grader      *Grader
	maxAttempts int
}

// SelfCorrectOption configures the self-correcting wrapper.
type SelfCorrectOption func(*SelfCorrecting)

// WithMaxAttempts caps retry attempts (default 5).
func WithMaxAttempts(n int) SelfCorrectOption {
	return func(s *SelfCorrecting) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewSelfCorrecting wires a loop to a grader.
func NewSelfCorrecting(loop *Loop, grader *Grader, opts ...SelfCorrectOption) *SelfCorrecting {
	s := &SelfCorrecting{
		loop:        loop,
		grader:      grader,
		maxAttempts: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run repeats the loop until a graded answer passes or attempts run out. The
// task doubles as the grading question; use RunTask when the two differ.
func (s *SelfCorrecting) Run(ctx context.Context, task string) (*Outcome, error) {
	return s.RunTask(ctx, task, task)
}

// RunTask repeats the loop on task until a graded answer passes or attempts
// run out. The answer is graded against question, not the full task text.
// When every attempt fails it returns a fallback answer rather than an error:
// the trace of the last attempt is still in the outcome for inspection.
func (s *SelfCorrecting) RunTask(ctx context.Context, question, task string) (*Outcome, error) {
	logger := logging.WithComponent("selfcorrect")

	var last *Outcome
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		outcome, err := s.loop.Run(ctx, task)
		last = outcome
		if err != nil {
			if errors.Is(err, ErrBudgetExhausted) {
				logger.Warn("attempt exhausted budget", "attempt", attempt)
				continue
			}
			return outcome, err
		}

		evidence := outcome.Observations()
		if strings.TrimSpace(evidence) == "" {
			// nothing gathered; grading an unsupported answer is pointless
			logger.Warn("attempt produced no evidence", "attempt", attempt)
			continue
		}

		ok, err := s.grader.Grade(ctx, question, outcome.Answer, evidence)
		if err != nil {
			return outcome, err
		}
		if ok {
			logger.Info("answer accepted", "attempt", attempt)
			return outcome, nil
		}
		logger.Warn("answer rejected by grader", "attempt", attempt)
	}

	if last == nil {
		last = &Outcome{}
	}
	last.Answer = fmt.Sprintf("Could not find a confident answer after %d attempts.", s.maxAttempts)
	return last, nil
}

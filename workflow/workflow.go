// Package workflow runs named stages over a shared state, one after another.
// A stage failure stops the run immediately and is reported tagged with the
// stage that caused it.
package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/pkg/telemetry"
)

// StageFunc advances the state. Returning an error aborts the sequence.
type StageFunc[S any] func(ctx context.Context, state S) (S, error)

// StageError tags a failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type stage[S any] struct {
	name string
	run  StageFunc[S]
}

// Sequence executes its stages in order.
type Sequence[S any] struct {
	name   string
	stages []stage[S]
}

// Builder assembles a sequence stage by stage.
type Builder[S any] struct {
	name   string
	stages []stage[S]
	err    error
}

// NewBuilder starts a sequence definition. The name labels log records and
// trace spans.
func NewBuilder[S any](name string) *Builder[S] {
	return &Builder[S]{name: name}
}

// Stage appends a named stage. Names must be unique and non-empty.
func (b *Builder[S]) Stage(name string, fn StageFunc[S]) *Builder[S] {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = fmt.Errorf("stage name cannot be empty")
		return b
	}
	if fn == nil {
		b.err = fmt.Errorf("stage %s has no function", name)
		return b
	}
	for _, s := range b.stages {
		if s.name == name {
			b.err = fmt.Errorf("stage %s already defined", name)
			return b
		}
	}
	b.stages = append(b.stages, stage[S]{name: name, run: fn})
	return b
}

// Build finalizes the sequence.
func (b *Builder[S]) Build() (*Sequence[S], error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stages) == 0 {
		return nil, fmt.Errorf("sequence %s has no stages", b.name)
	}
	return &Sequence[S]{name: b.name, stages: b.stages}, nil
}

// Stages returns the stage names in execution order.
func (s *Sequence[S]) Stages() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.name
	}
	return names
}

// Run executes the stages in order, stopping at the first failure. The
// returned error is always a *StageError when a stage failed; context
// cancellation between stages is returned as-is.
func (s *Sequence[S]) Run(ctx context.Context, state S) (S, error) {
	logger := logging.WithComponent("workflow").With("sequence", s.name)
	tracer := telemetry.Tracer()

	for _, st := range s.stages {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		stageCtx, span := tracer.Start(ctx, "stage."+st.name)
		span.SetAttributes(attribute.String("workflow.sequence", s.name))

		started := time.Now()
		next, err := st.run(stageCtx, state)
		telemetry.End(span, err)
		if err != nil {
			logger.Error("stage failed", "stage", st.name, "error", err)
			return state, &StageError{Stage: st.name, Err: err}
		}
		state = next
		logger.Debug("stage completed", "stage", st.name, "duration", time.Since(started))
	}
	return state, nil
}

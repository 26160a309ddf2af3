package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type counters struct {
	analyzed int
	ranked   int
	answered int
}

func TestSequenceRunsStagesInOrder(t *testing.T) {
	var order []string
	seq, err := NewBuilder[*counters]("qa").
		Stage("analyze", func(ctx context.Context, s *counters) (*counters, error) {
			order = append(order, "analyze")
			s.analyzed++
			return s, nil
		}).
		Stage("rank", func(ctx context.Context, s *counters) (*counters, error) {
			order = append(order, "rank")
			s.ranked++
			return s, nil
		}).
		Stage("answer", func(ctx context.Context, s *counters) (*counters, error) {
			order = append(order, "answer")
			s.answered++
			return s, nil
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	state, err := seq.Run(context.Background(), &counters{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fmt.Sprint(order) != "[analyze rank answer]" {
		t.Errorf("order = %v", order)
	}
	if state.analyzed != 1 || state.ranked != 1 || state.answered != 1 {
		t.Errorf("state = %+v", state)
	}
}

func TestSequenceShortCircuitsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	state := &counters{}
	seq, err := NewBuilder[*counters]("qa").
		Stage("analyze", func(ctx context.Context, s *counters) (*counters, error) {
			s.analyzed++
			return s, nil
		}).
		Stage("rank", func(ctx context.Context, s *counters) (*counters, error) {
			return nil, boom
		}).
		Stage("answer", func(ctx context.Context, s *counters) (*counters, error) {
			s.answered++
			return s, nil
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = seq.Run(context.Background(), state)
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("got %v, want *StageError", err)
	}
	if stageErr.Stage != "rank" {
		t.Errorf("failing stage = %s, want rank", stageErr.Stage)
	}
	if !errors.Is(err, boom) {
		t.Errorf("StageError should unwrap to the stage's error")
	}
	if state.answered != 0 {
		t.Errorf("stage after failure still ran")
	}
}

func TestBuilderRejectsBadDefinitions(t *testing.T) {
	if _, err := NewBuilder[int]("empty").Build(); err == nil {
		t.Errorf("empty sequence should not build")
	}
	if _, err := NewBuilder[int]("dup").
		Stage("a", func(ctx context.Context, s int) (int, error) { return s, nil }).
		Stage("a", func(ctx context.Context, s int) (int, error) { return s, nil }).
		Build(); err == nil {
		t.Errorf("duplicate stage names should not build")
	}
	if _, err := NewBuilder[int]("anon").
		Stage("", func(ctx context.Context, s int) (int, error) { return s, nil }).
		Build(); err == nil {
		t.Errorf("empty stage name should not build")
	}
	if _, err := NewBuilder[int]("nil").Stage("a", nil).Build(); err == nil {
		t.Errorf("nil stage func should not build")
	}
}

func TestSequenceHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	seq, err := NewBuilder[int]("qa").
		Stage("first", func(ctx context.Context, s int) (int, error) {
			cancel()
			return s + 1, nil
		}).
		Stage("second", func(ctx context.Context, s int) (int, error) {
			return s + 10, nil
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	state, err := seq.Run(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if state != 1 {
		t.Errorf("state = %d, want 1 (second stage must not run)", state)
	}
}

func TestSequenceStages(t *testing.T) {
	seq, _ := NewBuilder[int]("qa").
		Stage("a", func(ctx context.Context, s int) (int, error) { return s, nil }).
		Stage("b", func(ctx context.Context, s int) (int, error) { return s, nil }).
		Build()
	got := seq.Stages()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Stages = %v", got)
	}
}

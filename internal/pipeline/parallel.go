package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ParallelStep runs independent steps concurrently and waits for all of
// them. The first failure cancels the others.
type ParallelStep struct {
	steps []Step
}

// Parallel groups steps that only read the corpus and write disjoint
// State fields.
func Parallel(steps ...Step) *ParallelStep {
	return &ParallelStep{steps: steps}
}

// Name returns the member names joined by "+".
func (s *ParallelStep) Name() string {
	names := make([]string, len(s.steps))
	for i, step := range s.steps {
		names[i] = step.Name()
	}
	return strings.Join(names, "+")
}

// Do runs every member step in its own goroutine.
func (s *ParallelStep) Do(ctx context.Context, state *State) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, step := range s.steps {
		g.Go(func() error {
			if err := step.Do(ctx, state); err != nil {
				return fmt.Errorf("%s: %w", step.Name(), err)
			}
			state.markCompleted(step.Name())
			return nil
		})
	}

	return g.Wait()
}

package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/websearch/internal/corpus"
	"github.com/nao1215/websearch/internal/model"
)

// State carries the artifacts produced by the steps of one run.
// Steps running in parallel must only write their own field.
type State struct {
	// Corpus is the crawled or loaded corpus. It is read-only once set.
	Corpus *corpus.Corpus

	// Manifest describes the crawl that produced Corpus, if any.
	Manifest *model.Manifest

	// Index is set by IndexStep.
	Index *model.Index

	// PageRank is set by PageRankStep.
	PageRank *model.PageRank

	mu        sync.Mutex
	completed []string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// markCompleted records a finished step. Safe for concurrent use.
func (s *State) markCompleted(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, name)
}

// Completed returns the names of the finished steps in completion order.
func (s *State) Completed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.completed))
	copy(out, s.completed)
	return out
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the state
// accumulated by previous steps.
type Step interface {
	// Do executes the pipeline step.
	// Returns an error if the stage failed and its artifact is unusable.
	Do(ctx context.Context, state *State) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first
// failing step. Cancellation is checked before each step; a running step
// handles ctx itself.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step", "step", step.Name())
		start := time.Now()

		if err := step.Do(ctx, state); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"elapsed", time.Since(start),
		)
		state.markCompleted(step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

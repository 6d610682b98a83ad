package pagerank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/websearch/internal/model"
)

// Defaults for an Engine.
const (
	DefaultDamping       = 0.85
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-6
)

var (
	// ErrInvalidDamping is returned when the damping factor is outside (0,1).
	ErrInvalidDamping = errors.New("damping factor must be in (0, 1)")

	// ErrInvalidMaxIterations is returned when max iterations is below 1.
	ErrInvalidMaxIterations = errors.New("max iterations must be at least 1")

	// ErrInvalidTolerance is returned when the tolerance is negative or NaN.
	ErrInvalidTolerance = errors.New("tolerance must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is below 1.
	ErrInvalidWorkers = errors.New("workers must be at least 1")

	// ErrInvalidInitialVector is returned for a start vector with negative
	// entries or no mass on the graph's nodes.
	ErrInvalidInitialVector = errors.New("initial vector must be non-negative with positive mass")
)

// Engine runs PageRank power iteration.
type Engine struct {
	damping float64
	maxIter int
	tol     float64
	workers int
	initial map[int]float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithDamping sets the damping factor d.
func WithDamping(d float64) Option {
	return func(e *Engine) {
		e.damping = d
	}
}

// WithMaxIterations sets the iteration limit.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIter = n
	}
}

// WithTolerance sets the L1 convergence threshold.
func WithTolerance(tol float64) Option {
	return func(e *Engine) {
		e.tol = tol
	}
}

// WithWorkers sets how many goroutines share each iteration.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithInitialVector starts iteration from the given scores instead of the
// uniform vector. The vector is rescaled to sum to 1 over the graph's
// nodes; nodes it does not mention start at 0.
func WithInitialVector(scores map[int]float64) Option {
	return func(e *Engine) {
		e.initial = scores
	}
}

// New creates an Engine and validates its parameters.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		damping: DefaultDamping,
		maxIter: DefaultMaxIterations,
		tol:     DefaultTolerance,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}

	switch {
	case math.IsNaN(e.damping) || e.damping <= 0 || e.damping >= 1:
		return nil, fmt.Errorf("%w: %v", ErrInvalidDamping, e.damping)
	case e.maxIter < 1:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxIterations, e.maxIter)
	case math.IsNaN(e.tol) || e.tol < 0:
		return nil, fmt.Errorf("%w: %v", ErrInvalidTolerance, e.tol)
	case e.workers < 1:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, e.workers)
	}
	return e, nil
}

// Rank computes PageRank over g.
//
// Iteration stops when the L1 change between successive vectors drops
// below the tolerance or the iteration limit is reached. Reaching the limit
// is not an error: the last vector is returned with Converged false.
// Normalized holds the min-max rescaled scores.
func (e *Engine) Rank(ctx context.Context, g *Graph) (*model.PageRank, error) {
	n := g.Len()
	result := &model.PageRank{
		Scores:     make(map[int]float64, n),
		Normalized: make(map[int]float64, n),
	}
	if n == 0 {
		result.Converged = true
		return result, nil
	}

	rank, err := e.startVector(g)
	if err != nil {
		return nil, err
	}
	next := make([]float64, n)
	invN := 1 / float64(n)

	// share[v] = rank[v] / outdeg(v), recomputed each iteration.
	share := make([]float64, n)

	for iter := 1; iter <= e.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var dangling float64
		for v := range n {
			if deg := len(g.out[v]); deg > 0 {
				share[v] = rank[v] / float64(deg)
			} else {
				share[v] = 0
				dangling += rank[v]
			}
		}
		base := (1-e.damping)*invN + e.damping*dangling*invN

		if err := e.iterate(ctx, g, share, base, next); err != nil {
			return nil, err
		}

		var delta float64
		for u := range n {
			delta += math.Abs(next[u] - rank[u])
		}
		rank, next = next, rank

		result.Iterations = iter
		result.Delta = delta
		if delta < e.tol {
			result.Converged = true
			break
		}
	}

	for i, id := range g.nodes {
		result.Scores[id] = rank[i]
	}
	result.Normalized = Normalize(result.Scores)
	return result, nil
}

// iterate fills next[u] = base + d * sum of share over u's in-links.
func (e *Engine) iterate(ctx context.Context, g *Graph, share []float64, base float64, next []float64) error {
	n := len(next)
	pull := func(lo, hi int) {
		for u := lo; u < hi; u++ {
			var sum float64
			for _, v := range g.in[u] {
				sum += share[v]
			}
			next[u] = base + e.damping*sum
		}
	}

	workers := min(e.workers, n)
	if workers <= 1 {
		pull(0, n)
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pull(lo, hi)
			return nil
		})
	}
	return eg.Wait()
}

func (e *Engine) startVector(g *Graph) ([]float64, error) {
	n := g.Len()
	rank := make([]float64, n)

	if e.initial == nil {
		for i := range rank {
			rank[i] = 1 / float64(n)
		}
		return rank, nil
	}

	var sum float64
	for i, id := range g.nodes {
		v := e.initial[id]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: doc_id %d has %v", ErrInvalidInitialVector, id, v)
		}
		rank[i] = v
		sum += v
	}
	if sum <= 0 {
		return nil, ErrInvalidInitialVector
	}
	for i := range rank {
		rank[i] /= sum
	}
	return rank, nil
}

// Normalize min-max rescales scores into [0,1].
// When every score is equal, each becomes 1.
func Normalize(scores map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		lo = min(lo, s)
		hi = max(hi, s)
	}

	span := hi - lo
	for id, s := range scores {
		if span == 0 {
			out[id] = 1
			continue
		}
		out[id] = (s - lo) / span
	}
	return out
}

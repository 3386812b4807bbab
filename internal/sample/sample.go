// Package sample provides design-space exploration helpers: uniform random
// draws from the normalized design space and a traced evaluation wrapper for
// building datasets from solver runs.
package sample

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sobench/sobench/internal/encode"
	"github.com/sobench/sobench/internal/problem"
	"github.com/sobench/sobench/internal/store"
)

// Random draws n design vectors uniformly from the normalized space using
// the given source. Each vector has dim components in [NormLower, NormUpper].
func Random(rng *rand.Rand, dim, n int) [][]float64 {
	span := encode.NormUpper - encode.NormLower
	vectors := make([][]float64, n)
	for i := range vectors {
		v := make([]float64, dim)
		for j := range v {
			v[j] = encode.NormLower + rng.Float64()*span
		}
		vectors[i] = v
	}
	return vectors
}

// Grid enumerates the full lattice of perDim evenly spaced levels per
// component over the normalized space, endpoints included. The result has
// perDim^dim vectors; callers keep dim small for grid sweeps.
func Grid(dim, perDim int) [][]float64 {
	if dim <= 0 || perDim <= 0 {
		return nil
	}

	levels := make([]float64, perDim)
	if perDim == 1 {
		levels[0] = (encode.NormLower + encode.NormUpper) / 2
	} else {
		step := (encode.NormUpper - encode.NormLower) / float64(perDim-1)
		for i := range levels {
			levels[i] = encode.NormLower + float64(i)*step
		}
	}

	total := 1
	for i := 0; i < dim; i++ {
		total *= perDim
	}

	vectors := make([][]float64, total)
	for n := 0; n < total; n++ {
		v := make([]float64, dim)
		rest := n
		for j := dim - 1; j >= 0; j-- {
			v[j] = levels[rest%perDim]
			rest /= perDim
		}
		vectors[n] = v
	}
	return vectors
}

// Sampler pairs a problem with an optional trace writer. Every evaluation
// through the sampler is appended to the trace so sweeps leave a dataset
// behind, not just solver directories.
type Sampler struct {
	mu    sync.Mutex
	prob  *problem.Problem
	trace *store.TraceWriter
	count int
}

// NewSampler wraps the given problem. The trace writer may be nil, in which
// case evaluations are not recorded.
func NewSampler(prob *problem.Problem, trace *store.TraceWriter) (*Sampler, error) {
	if prob == nil {
		return nil, fmt.Errorf("problem cannot be nil")
	}
	return &Sampler{prob: prob, trace: trace}, nil
}

// Evaluate runs one design vector through the problem and records the
// outcome. The first requested metric's value is written to the trace.
func (s *Sampler) Evaluate(ctx context.Context, vector []float64, metrics ...string) ([]float64, error) {
	values, err := s.prob.Evaluate(ctx, vector, metrics...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.count++
	n := s.count
	s.mu.Unlock()

	if s.trace != nil {
		entry := store.TraceEntry{
			Evaluation: n,
			Value:      values[0],
			Timestamp:  time.Now(),
			Vector:     append([]float64{}, vector...),
		}
		if err := s.trace.Write(entry); err != nil {
			slog.Warn("Failed to record sample", "evaluation", n, "error", err)
		}
	}

	return values, nil
}

// Count returns the number of successful evaluations so far.
func (s *Sampler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Sweep evaluates every vector in order, skipping failures, and returns the
// values for the vectors that succeeded alongside their indices.
func (s *Sampler) Sweep(ctx context.Context, vectors [][]float64, metrics ...string) (indices []int, values [][]float64, err error) {
	for i, v := range vectors {
		select {
		case <-ctx.Done():
			return indices, values, ctx.Err()
		default:
		}

		vals, err := s.Evaluate(ctx, v, metrics...)
		if err != nil {
			slog.Warn("Sweep evaluation failed", "index", i, "error", err)
			continue
		}
		indices = append(indices, i)
		values = append(values, vals)
	}
	return indices, values, nil
}

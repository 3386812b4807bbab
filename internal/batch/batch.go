package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/sobench/sobench/internal/problem"
)

// Result holds the outcome of one evaluation in a batch.
type Result struct {
	// Index is the position of the design vector in the submitted batch
	Index int

	// DeckID is the simulation directory identity assigned to this
	// evaluation
	DeckID int

	// Values are the metric values in request order
	Values []float64

	// Elapsed is the wall-clock duration of the evaluation
	Elapsed time.Duration

	// Err is the evaluation error, if any
	Err error
}

// Pool evaluates batches of design vectors against a shared problem with a
// bounded number of concurrent solver invocations. Each evaluation is given
// a distinct explicit directory identity so concurrent runs never collide
// on disk.
type Pool struct {
	prob    *problem.Problem
	workers int
}

// NewPool creates a pool that runs at most workers evaluations concurrently.
// The problem must be configured with the explicit identity policy, since
// the pool assigns directory identities itself.
func NewPool(prob *problem.Problem, workers int) (*Pool, error) {
	if prob == nil {
		return nil, fmt.Errorf("problem cannot be nil")
	}
	if workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", workers)
	}
	return &Pool{prob: prob, workers: workers}, nil
}

// Evaluate runs every vector in the batch and returns one Result per vector,
// in batch order. Directory identities are assigned as firstID, firstID+1,
// ... so callers can keep successive batches disjoint. Individual failures
// are reported per-result; the batch itself only fails if the context is
// cancelled before all work is submitted.
func (p *Pool) Evaluate(ctx context.Context, firstID int, vectors [][]float64, metrics ...string) ([]Result, error) {
	if firstID <= 0 {
		return nil, fmt.Errorf("firstID must be positive, got %d", firstID)
	}

	results := make([]Result, len(vectors))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	slog.Debug("Starting batch evaluation",
		"size", len(vectors),
		"workers", p.workers,
		"first_id", firstID,
	)

	for i, vec := range vectors {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(vectors); j++ {
				results[j] = Result{Index: j, DeckID: firstID + j, Err: err}
			}
			wg.Wait()
			return results, err
		}

		select {
		case <-ctx.Done():
			// Mark the remaining slots as cancelled and stop submitting
			for j := i; j < len(vectors); j++ {
				results[j] = Result{Index: j, DeckID: firstID + j, Err: ctx.Err()}
			}
			wg.Wait()
			return results, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, v []float64) {
			defer wg.Done()
			defer func() { <-sem }()

			id := firstID + idx
			start := time.Now()
			values, err := p.prob.EvaluateWithID(ctx, id, v, metrics...)
			results[idx] = Result{
				Index:   idx,
				DeckID:  id,
				Values:  values,
				Elapsed: time.Since(start),
				Err:     err,
			}
			if err != nil {
				slog.Warn("Batch evaluation failed", "deck_id", id, "error", err)
			}
		}(i, vec)
	}

	wg.Wait()
	return results, nil
}

// Objective evaluates the batch against a single metric and returns one
// value per vector. Failed evaluations yield +Inf so minimizing callers
// steer away from them.
func (p *Pool) Objective(ctx context.Context, firstID int, vectors [][]float64, metric string) ([]float64, error) {
	results, err := p.Evaluate(ctx, firstID, vectors, metric)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(results))
	for i, r := range results {
		if r.Err != nil {
			values[i] = math.Inf(1)
			continue
		}
		values[i] = r.Values[0]
	}
	return values, nil
}

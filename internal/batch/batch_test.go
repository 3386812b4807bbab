package batch

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sobench/sobench/internal/config"
	"github.com/sobench/sobench/internal/deck"
	"github.com/sobench/sobench/internal/model"
	"github.com/sobench/sobench/internal/problem"
	"github.com/sobench/sobench/internal/sim"
)

type stubRunner struct {
	mu       sync.Mutex
	calls    int
	maxBusy  int
	busy     int
	failDeck string
	dir      string
}

func (r *stubRunner) RunStage(ctx context.Context, req sim.StageRequest) (sim.Artifacts, error) {
	r.mu.Lock()
	r.calls++
	r.busy++
	if r.busy > r.maxBusy {
		r.maxBusy = r.busy
	}
	fail := r.failDeck != "" && filepath.Base(req.Workspace) == r.failDeck
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.busy--
		r.mu.Unlock()
	}()

	if fail {
		return sim.Artifacts{}, &sim.SimulationError{Stage: req.Stage, Err: context.Canceled}
	}
	return sim.Artifacts{
		StarterOutPath: filepath.Join(r.dir, "combine_0000.out"),
		TablePath:      filepath.Join(r.dir, "combineT01.csv"),
	}, nil
}

const starterFixture = `     TOTAL MASS AND MASS CENTER OF THE MODEL
a
b
c
  2.757000E+02
`

func newTestPool(t *testing.T, workers int) (*Pool, *stubRunner) {
	t.Helper()
	fixtures := t.TempDir()
	if err := os.WriteFile(filepath.Join(fixtures, "combine_0000.out"), []byte(starterFixture), 0644); err != nil {
		t.Fatalf("failed to write starter fixture: %v", err)
	}

	runner := &stubRunner{dir: fixtures}
	cfg := config.Default()
	cfg.WorkDir = t.TempDir()

	prob, err := problem.New(model.StarBox, 5, cfg,
		problem.WithStageRunner(runner),
		problem.WithIdentityPolicy(deck.Explicit),
		problem.WithMetrics("mass"),
	)
	if err != nil {
		t.Fatalf("problem.New error: %v", err)
	}

	pool, err := NewPool(prob, workers)
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}
	return pool, runner
}

func batchVectors(n int) [][]float64 {
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = []float64{0, 0, 0, 0, 0}
	}
	return vectors
}

func TestPoolEvaluate(t *testing.T) {
	pool, runner := newTestPool(t, 2)

	results, err := pool.Evaluate(context.Background(), 1, batchVectors(4), "mass")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d failed: %v", i, r.Err)
			continue
		}
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.DeckID != i+1 {
			t.Errorf("result %d deck id = %d, want %d", i, r.DeckID, i+1)
		}
		if math.Abs(r.Values[0]-25.7) > 1e-9 {
			t.Errorf("result %d mass = %v, want 25.7", i, r.Values[0])
		}
	}

	if runner.calls != 4 {
		t.Errorf("runner invoked %d times, want 4", runner.calls)
	}
	if runner.maxBusy > 2 {
		t.Errorf("observed %d concurrent runs, limit is 2", runner.maxBusy)
	}
}

func TestPoolPartialFailure(t *testing.T) {
	pool, runner := newTestPool(t, 2)
	runner.failDeck = "starbox_deck2"

	results, err := pool.Evaluate(context.Background(), 1, batchVectors(3), "mass")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if results[0].Err != nil || results[2].Err != nil {
		t.Error("healthy evaluations failed alongside the faulty one")
	}
	if results[1].Err == nil {
		t.Error("faulty evaluation reported no error")
	}
}

func TestPoolObjective(t *testing.T) {
	pool, runner := newTestPool(t, 2)
	runner.failDeck = "starbox_deck3"

	values, err := pool.Objective(context.Background(), 1, batchVectors(3), "mass")
	if err != nil {
		t.Fatalf("Objective error: %v", err)
	}

	if math.Abs(values[0]-25.7) > 1e-9 {
		t.Errorf("values[0] = %v, want 25.7", values[0])
	}
	if !math.IsInf(values[2], 1) {
		t.Errorf("failed evaluation value = %v, want +Inf", values[2])
	}
}

func TestPoolDisjointBatches(t *testing.T) {
	pool, _ := newTestPool(t, 2)
	ctx := context.Background()

	first, err := pool.Evaluate(ctx, 1, batchVectors(2), "mass")
	if err != nil {
		t.Fatalf("first batch error: %v", err)
	}
	second, err := pool.Evaluate(ctx, 3, batchVectors(2), "mass")
	if err != nil {
		t.Fatalf("second batch error: %v", err)
	}

	ids := map[int]bool{}
	for _, r := range append(first, second...) {
		if ids[r.DeckID] {
			t.Errorf("deck id %d reused across batches", r.DeckID)
		}
		ids[r.DeckID] = true
	}
}

func TestPoolRejectsBadArgs(t *testing.T) {
	pool, _ := newTestPool(t, 1)

	if _, err := pool.Evaluate(context.Background(), 0, batchVectors(1), "mass"); err == nil {
		t.Error("Evaluate accepted non-positive firstID")
	}
	if _, err := NewPool(nil, 1); err == nil {
		t.Error("NewPool accepted nil problem")
	}
}

func TestPoolCancelledContext(t *testing.T) {
	pool, _ := newTestPool(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Evaluate(ctx, 1, batchVectors(2), "mass")
	if err == nil {
		t.Fatal("Evaluate on cancelled context succeeded")
	}
}

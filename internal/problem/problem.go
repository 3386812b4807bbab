// Package problem is the caller-facing facade of the benchmark: it binds one
// structural archetype at one dimensionality to an encoder, a workspace
// identity scheme, a simulation state machine and a metric composer.
package problem

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/sobench/sobench/internal/config"
	"github.com/sobench/sobench/internal/deck"
	"github.com/sobench/sobench/internal/encode"
	"github.com/sobench/sobench/internal/metric"
	"github.com/sobench/sobench/internal/model"
	"github.com/sobench/sobench/internal/sim"
)

const (
	normLower = encode.NormLower
	normUpper = encode.NormUpper
)

// Problem evaluates design vectors of a fixed dimensionality against one
// problem family. Evaluations are serialized by the caller; parallel callers
// must use the Explicit identity policy with distinct ids. Explicit ids keep
// their evaluation record across calls, so asking for more metrics on an id
// already evaluated reuses completed simulation stages instead of re-running
// them.
type Problem struct {
	family    model.Family
	dimension int
	params    model.Params
	policy    deck.Policy

	identity *deck.Identity
	machine  *sim.Machine
	composer *metric.Composer

	mu      sync.Mutex
	records map[int]*sim.Record

	baseDir string
	metrics []string
}

// Option customizes problem construction.
type Option func(*settings)

type settings struct {
	policy  deck.Policy
	runner  sim.StageRunner
	metrics []string
}

// WithIdentityPolicy selects how evaluation ids are issued. The default is
// deck.Sequential.
func WithIdentityPolicy(policy deck.Policy) Option {
	return func(s *settings) { s.policy = policy }
}

// WithStageRunner overrides the stage runner, replacing the OpenRadioss
// subprocess runner built from the solver config.
func WithStageRunner(runner sim.StageRunner) Option {
	return func(s *settings) { s.runner = runner }
}

// WithMetrics sets the default requested metrics used when Evaluate is called
// without any.
func WithMetrics(metrics ...string) Option {
	return func(s *settings) { s.metrics = metrics }
}

// New constructs a problem instance. The dimensionality must have an encoding
// table entry for the family, and any default metrics must be permitted for
// it; both are checked here so no evaluation pays for an invalid setup.
func New(family model.Family, dimension int, cfg config.Solver, opts ...Option) (*Problem, error) {
	s := settings{policy: deck.Sequential}
	for _, opt := range opts {
		opt(&s)
	}

	params := model.FamilyParams(family)

	if _, err := encode.Ranges(family, dimension); err != nil {
		return nil, err
	}

	metrics := s.metrics
	if len(metrics) == 0 {
		metrics = []string{params.DefaultMetric}
	}
	for _, name := range metrics {
		if params.MetricForbidden(name) {
			return nil, &ForbiddenMetricError{Family: family, Metric: name}
		}
	}

	runner := s.runner
	if runner == nil {
		runner = sim.NewExecRunner(cfg.WrapperPath, params, sim.MeshOptions{
			HLevel:        cfg.HLevel,
			GmshVerbosity: cfg.GmshVerbosity,
		})
	}

	hints := sim.ResourceHints{
		Threads:            cfg.Threads,
		Processes:          cfg.Processes,
		WriteVisualization: cfg.WriteVTK,
	}

	machine := sim.NewMachine(runner, family, hints)

	return &Problem{
		family:    family,
		dimension: dimension,
		params:    params,
		policy:    s.policy,
		identity:  deck.NewIdentity(s.policy),
		machine:   machine,
		composer:  metric.NewComposer(machine),
		records:   make(map[int]*sim.Record),
		baseDir:   cfg.WorkDir,
		metrics:   metrics,
	}, nil
}

// Family returns the problem's structural archetype.
func (p *Problem) Family() model.Family { return p.family }

// Dimension returns the design vector length the problem expects.
func (p *Problem) Dimension() int { return p.dimension }

// DefaultMetrics returns the metrics evaluated when none are requested.
func (p *Problem) DefaultMetrics() []string {
	return append([]string{}, p.metrics...)
}

// Evaluate runs one design evaluation under the instance's identity policy
// (sequential ids) and returns the requested metrics in request order. With
// no metrics given, the instance defaults apply.
func (p *Problem) Evaluate(ctx context.Context, vector []float64, metrics ...string) ([]float64, error) {
	return p.evaluate(ctx, 0, vector, metrics)
}

// EvaluateWithID runs one design evaluation under a caller-supplied id. The
// instance must use the Explicit identity policy; callers issuing parallel
// evaluations must guarantee distinct ids so deck directories never collide.
func (p *Problem) EvaluateWithID(ctx context.Context, id int, vector []float64, metrics ...string) ([]float64, error) {
	return p.evaluate(ctx, id, vector, metrics)
}

func (p *Problem) evaluate(ctx context.Context, explicitID int, vector []float64, metrics []string) ([]float64, error) {
	if len(metrics) == 0 {
		metrics = p.metrics
	}

	// Fail-fast checks, in order of cost: nothing external runs on an
	// invalid request.
	for _, name := range metrics {
		if p.params.MetricForbidden(name) {
			return nil, &ForbiddenMetricError{Family: p.family, Metric: name}
		}
	}
	if err := p.validateVector(vector); err != nil {
		return nil, err
	}

	physical, err := encode.Encode(p.family, p.dimension, vector)
	if err != nil {
		return nil, err
	}

	id, err := p.identity.Assign(explicitID)
	if err != nil {
		return nil, err
	}

	workspace, err := deck.Prepare(p.baseDir, p.family, id)
	if err != nil {
		return nil, err
	}

	rec := p.record(id, workspace, physical)

	slog.Debug("evaluating design",
		"family", p.family.String(),
		"evaluation_id", id,
		"metrics", metrics,
	)

	return p.composer.Resolve(ctx, rec, metrics)
}

// record returns the evaluation record for an id. Explicit ids are memoized
// so a second evaluation of the same design reuses completed stages; a
// changed design vector under a reused id gets a fresh record and the deck
// is rebuilt. Sequential ids are never reissued, so nothing is retained for
// them.
func (p *Problem) record(id int, workspace string, physical []float64) *sim.Record {
	if p.policy != deck.Explicit {
		return sim.NewRecord(id, p.family, workspace, physical)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if rec, ok := p.records[id]; ok && samePhysical(rec.Physical, physical) {
		return rec
	}
	rec := sim.NewRecord(id, p.family, workspace, physical)
	p.records[id] = rec
	return rec
}

func samePhysical(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Release drops the memoized record of an explicit evaluation id once the
// caller is done with it. Reusing the id afterwards re-runs its stages.
func (p *Problem) Release(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.records, id)
}

func (p *Problem) validateVector(vector []float64) error {
	if len(vector) != p.dimension {
		return &OutOfRangeError{
			Index:  -1,
			Reason: "vector length does not match the problem dimension",
		}
	}
	for i, v := range vector {
		if v < normLower || v > normUpper || math.IsNaN(v) {
			return &OutOfRangeError{Index: i, Value: v}
		}
	}
	return nil
}

// ObjectiveFunc adapts one metric to a plain minimization objective for an
// external optimizer. Evaluation errors surface as +Inf so the optimizer
// steers away from failing designs instead of aborting the search.
func (p *Problem) ObjectiveFunc(ctx context.Context, metricName string) func([]float64) float64 {
	return func(vector []float64) float64 {
		values, err := p.Evaluate(ctx, vector, metricName)
		if err != nil {
			slog.Warn("evaluation failed inside objective",
				"family", p.family.String(),
				"metric", metricName,
				"error", err,
			)
			return math.Inf(1)
		}
		return values[0]
	}
}

package metric

import (
	"context"
	"math"

	"github.com/sobench/sobench/internal/sim"
)

// Composer computes requested metrics against one evaluation record, driving
// the state machine no further than the cheapest sufficient stage.
type Composer struct {
	machine *sim.Machine
}

// NewComposer creates a composer over the given state machine.
func NewComposer(machine *sim.Machine) *Composer {
	return &Composer{machine: machine}
}

// Resolve computes the named metrics for the record and returns them in
// request order. The deepest stage any requested metric needs is ensured
// once up front, so a request mixing partial-stage and full-stage metrics
// pays for a single solver invocation. Unknown names resolve to NaN instead
// of failing the whole batch; the caller validated forbidden names up front.
func (c *Composer) Resolve(ctx context.Context, rec *sim.Record, names []string) ([]float64, error) {
	target := sim.StageNotStarted
	for _, name := range names {
		if s := RequiredStage(name); s > target {
			target = s
		}
	}
	if target > sim.StageNotStarted {
		if err := c.machine.EnsureStage(ctx, rec, target); err != nil {
			return nil, err
		}
	}

	out := make([]float64, len(names))
	for i, name := range names {
		v, err := c.resolveOne(ctx, rec, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Composer) resolveOne(ctx context.Context, rec *sim.Record, name string) (float64, error) {
	spec, ok := specs[name]
	if !ok {
		return math.NaN(), nil
	}

	if spec.Primitive() {
		if err := c.machine.EnsureStage(ctx, rec, spec.Stage); err != nil {
			return 0, err
		}
		return rec.Cache[name], nil
	}

	deps := make(map[string]float64, len(spec.Deps))
	for _, dep := range spec.Deps {
		v, err := c.resolveOne(ctx, rec, dep)
		if err != nil {
			return 0, err
		}
		deps[dep] = v
	}
	return spec.Compose(deps), nil
}

// Package metric resolves requested metric names into simulation stages and
// composes derived objectives from primitive metrics.
package metric

import (
	"math"

	"github.com/sobench/sobench/internal/sim"
)

// Intrusion thresholds and penalty coefficients of the constrained
// objectives. Beyond the threshold the penalty term dominates minimization.
const (
	seaIntrusionLimit  = 60.0
	seaPenaltySlope    = 100.0
	massIntrusionLimit = 50.0
	massPenaltyBase    = 4.25952
	massPenaltySlope   = 10.0
)

// Spec declares what one metric needs: the simulation stage for primitives,
// or the primitive dependencies and combination rule for composites.
type Spec struct {
	Stage   sim.Stage
	Deps    []string
	Compose func(p map[string]float64) float64
}

// Primitive reports whether the spec describes a primitive metric.
func (s Spec) Primitive() bool {
	return s.Compose == nil
}

// specs is the process-wide metric table. Composite formulas are fixed and
// not caller-configurable.
var specs = map[string]Spec{
	sim.MetricMass:           {Stage: sim.StagePartial},
	sim.MetricAbsorbedEnergy: {Stage: sim.StagePartial},
	sim.MetricIntrusion:      {Stage: sim.StageFull},
	sim.MetricMeanForce:      {Stage: sim.StageFull},
	sim.MetricMaxForce:       {Stage: sim.StageFull},

	"specific_energy_absorbed": {
		Deps: []string{sim.MetricAbsorbedEnergy, sim.MetricMass},
		Compose: func(p map[string]float64) float64 {
			return p[sim.MetricAbsorbedEnergy] / p[sim.MetricMass]
		},
	},
	"load_uniformity": {
		Deps: []string{sim.MetricMaxForce, sim.MetricMeanForce},
		Compose: func(p map[string]float64) float64 {
			return math.Abs(p[sim.MetricMaxForce] / p[sim.MetricMeanForce])
		},
	},
	"penalized_sea": {
		Deps: []string{sim.MetricAbsorbedEnergy, sim.MetricMass, sim.MetricIntrusion},
		Compose: func(p map[string]float64) float64 {
			if p[sim.MetricIntrusion] <= seaIntrusionLimit {
				return -(p[sim.MetricAbsorbedEnergy] / p[sim.MetricMass])
			}
			return seaPenaltySlope * (p[sim.MetricIntrusion] - seaIntrusionLimit)
		},
	},
	"penalized_mass": {
		Deps: []string{sim.MetricMass, sim.MetricIntrusion},
		Compose: func(p map[string]float64) float64 {
			if p[sim.MetricIntrusion] <= massIntrusionLimit {
				return p[sim.MetricMass]
			}
			return massPenaltyBase + massPenaltySlope*(p[sim.MetricIntrusion]/massIntrusionLimit-1)
		},
	},
}

// Lookup returns the spec for a metric name.
func Lookup(name string) (Spec, bool) {
	s, ok := specs[name]
	return s, ok
}

// Known reports whether name is a supported metric.
func Known(name string) bool {
	_, ok := specs[name]
	return ok
}

// Names returns all supported metric names; primitives first, then
// composites, each group sorted by required stage.
func Names() []string {
	return []string{
		sim.MetricMass,
		sim.MetricAbsorbedEnergy,
		sim.MetricIntrusion,
		sim.MetricMeanForce,
		sim.MetricMaxForce,
		"specific_energy_absorbed",
		"load_uniformity",
		"penalized_sea",
		"penalized_mass",
	}
}

// RequiredStage returns the minimum simulation stage that must complete
// before the metric can be computed. Unknown names need no stage at all;
// they resolve to NaN.
func RequiredStage(name string) sim.Stage {
	spec, ok := specs[name]
	if !ok {
		return sim.StageNotStarted
	}
	if spec.Primitive() {
		return spec.Stage
	}
	stage := sim.StageNotStarted
	for _, dep := range spec.Deps {
		if s := RequiredStage(dep); s > stage {
			stage = s
		}
	}
	return stage
}

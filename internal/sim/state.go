package sim

import (
	"context"
	"log/slog"

	"github.com/sobench/sobench/internal/model"
)

// Primitive metric names cached on the evaluation record. Partial-stage
// primitives come from the starter summary, full-stage primitives from the
// time-series table.
const (
	MetricMass           = "mass"
	MetricAbsorbedEnergy = "absorbed_energy"
	MetricIntrusion      = "intrusion"
	MetricMeanForce      = "mean_impact_force"
	MetricMaxForce       = "max_impact_force"
)

// Record is the mutable state of one design evaluation. Its stage only moves
// forward and cache entries are never invalidated: a new design vector gets a
// new record under a new id, never a recycled one.
type Record struct {
	ID        int
	Family    model.Family
	Workspace string
	Physical  []float64

	Stage Stage
	Cache map[string]float64
	Table *ResultTable

	artifacts Artifacts
}

// NewRecord creates a not-started record for an evaluation id, its deck
// directory and its encoded physical parameters.
func NewRecord(id int, family model.Family, workspace string, physical []float64) *Record {
	return &Record{
		ID:        id,
		Family:    family,
		Workspace: workspace,
		Physical:  physical,
		Stage:     StageNotStarted,
		Cache:     make(map[string]float64),
	}
}

// Machine drives records through simulation stages. One EnsureStage call at a
// time per record; parallel callers must use distinct evaluation ids.
type Machine struct {
	runner StageRunner
	family model.Family
	params model.Params
	hints  ResourceHints
}

// NewMachine creates a state machine over the given stage runner.
func NewMachine(runner StageRunner, family model.Family, hints ResourceHints) *Machine {
	return &Machine{
		runner: runner,
		family: family,
		params: model.FamilyParams(family),
		hints:  hints,
	}
}

// EnsureStage advances the record to at least the target stage, invoking the
// external runner once for the missing stage. A stage already recorded as
// done is never re-run; this is what keeps repeated metric requests on one
// design vector from paying for repeated simulations. On failure the record
// keeps its last successful stage and cache, and the same target may be
// retried.
func (m *Machine) EnsureStage(ctx context.Context, rec *Record, target Stage) error {
	if rec.Stage >= target {
		return nil
	}

	slog.Info("running simulation stage",
		"family", m.family.String(),
		"evaluation_id", rec.ID,
		"stage", target.String(),
		"workspace", rec.Workspace,
	)

	// The wrapper runs the starter as part of a full run, so a single
	// invocation at the target depth covers all missing stages.
	artifacts, err := m.runner.RunStage(ctx, StageRequest{
		Family:    rec.Family,
		Physical:  rec.Physical,
		Workspace: rec.Workspace,
		Stage:     target,
		Hints:     m.hints,
	})
	if err != nil {
		if _, ok := err.(*SimulationError); ok {
			return err
		}
		return &SimulationError{Stage: target, Err: err}
	}
	rec.artifacts = artifacts

	if err := m.cachePartial(rec); err != nil {
		return &SimulationError{Stage: target, Err: err}
	}
	if target == StageFull {
		if err := m.cacheFull(rec); err != nil {
			return &SimulationError{Stage: target, Err: err}
		}
	}

	rec.Stage = target
	return nil
}

// cachePartial extracts the setup-only primitives from the starter summary.
func (m *Machine) cachePartial(rec *Record) error {
	if _, ok := rec.Cache[MetricMass]; ok {
		return nil
	}

	raw, err := ExtractMass(rec.artifacts.StarterOutPath)
	if err != nil {
		return err
	}

	rec.Cache[MetricMass] = (raw - m.params.WallMass) * m.params.MassScale
	rec.Cache[MetricAbsorbedEnergy] = m.params.AbsorbedEnergy(m.family)
	return nil
}

// cacheFull loads the time-series table once and derives the transient
// primitives from it.
func (m *Machine) cacheFull(rec *Record) error {
	if rec.Table == nil {
		table, err := LoadResultTable(rec.artifacts.TablePath)
		if err != nil {
			return err
		}
		rec.Table = table
	}

	intrusion, err := rec.Table.Intrusion(m.params.TrackNodeKey, m.params.ImpactorOffset)
	if err != nil {
		return err
	}
	rec.Cache[MetricIntrusion] = intrusion

	force, err := rec.Table.ForceSeries(m.params.TrackNodeKey, m.params.ForceKey, m.params.MaterialCard)
	if err != nil {
		return err
	}
	rec.Cache[MetricMaxForce] = PeakForce(force)
	rec.Cache[MetricMeanForce] = MeanForce(force)
	return nil
}

// RequiredStage returns the minimum stage at which a primitive metric is
// derivable, or StageNotStarted for names that are not primitives.
func RequiredStage(metric string) Stage {
	switch metric {
	case MetricMass, MetricAbsorbedEnergy:
		return StagePartial
	case MetricIntrusion, MetricMeanForce, MetricMaxForce:
		return StageFull
	default:
		return StageNotStarted
	}
}

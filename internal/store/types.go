package store

import (
	"fmt"
	"time"
)

// RunConfig holds the configuration an optimization run was started with
// (record copy). This avoids import cycles with the command package.
type RunConfig struct {
	Family    string `json:"family"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Iters     int    `json:"iters"`
	PopSize   int    `json:"popSize"`
	Seed      int64  `json:"seed"`
	Restarts  int    `json:"restarts,omitempty"`
}

// RunRecord represents the persisted outcome of an optimization run.
// All fields are serialized to JSON for persistence.
//
// The record saves the BEST DESIGN found so far, but does NOT save the
// internal optimizer state (population, velocities, etc.). Resuming a run
// therefore restarts the optimizer with a fresh population; the best value
// never gets worse because the best design vector is kept, but the search
// trajectory will differ from an uninterrupted run. Saving full optimizer
// state would tie the record format to a specific optimizer implementation,
// so only the portable outcome is stored.
type RunRecord struct {
	// RunID is the unique identifier for this optimization run
	RunID string `json:"runId"`

	// BestVector is the normalized design vector that achieved BestValue
	BestVector []float64 `json:"bestVector"`

	// BestValue is the objective value achieved by BestVector
	BestValue float64 `json:"bestValue"`

	// Evaluations is the number of objective evaluations performed
	Evaluations int `json:"evaluations"`

	// Timestamp records when this record was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration, needed for validation on resume.
	// Resumed runs must use compatible settings (same family, dimension,
	// metric).
	Config RunConfig `json:"config"`
}

// RunInfo contains metadata about a run without the full vector data.
// Used for listing runs efficiently.
type RunInfo struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	// BestValue is the objective value at record time
	BestValue float64 `json:"bestValue"`

	// Evaluations is the evaluation count at record time
	Evaluations int `json:"evaluations"`

	// Timestamp records when this record was created
	Timestamp time.Time `json:"timestamp"`

	// Family is the benchmark family name
	Family string `json:"family"`

	// Dimension is the design-vector dimension
	Dimension int `json:"dimension"`

	// Metric is the optimized objective name
	Metric string `json:"metric"`
}

// NewRunRecord creates a record from run state.
func NewRunRecord(runID string, bestVector []float64, bestValue float64, evaluations int, config RunConfig) *RunRecord {
	return &RunRecord{
		RunID:       runID,
		BestVector:  bestVector,
		BestValue:   bestValue,
		Evaluations: evaluations,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:       r.RunID,
		BestValue:   r.BestValue,
		Evaluations: r.Evaluations,
		Timestamp:   r.Timestamp,
		Family:      r.Config.Family,
		Dimension:   r.Config.Dimension,
		Metric:      r.Config.Metric,
	}
}

// Validate checks if the record has valid data.
// Returns an error if any required field is missing or invalid.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(r.BestVector) == 0 {
		return &ValidationError{Field: "BestVector", Reason: "cannot be empty"}
	}
	if r.Evaluations < 0 {
		return &ValidationError{Field: "Evaluations", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Family == "" {
		return &ValidationError{Field: "Config.Family", Reason: "cannot be empty"}
	}
	if r.Config.Metric == "" {
		return &ValidationError{Field: "Config.Metric", Reason: "cannot be empty"}
	}
	if r.Config.Dimension <= 0 {
		return &ValidationError{Field: "Config.Dimension", Reason: "must be positive"}
	}
	if r.Config.Iters <= 0 {
		return &ValidationError{Field: "Config.Iters", Reason: "must be positive"}
	}
	if r.Config.PopSize <= 0 {
		return &ValidationError{Field: "Config.PopSize", Reason: "must be positive"}
	}
	if len(r.BestVector) != r.Config.Dimension {
		return &ValidationError{
			Field:  "BestVector",
			Reason: fmt.Sprintf("length mismatch: expected %d components", r.Config.Dimension),
		}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this record can be resumed with the given config.
// Returns an error if the configs are incompatible.
func (r *RunRecord) IsCompatible(config RunConfig) error {
	if r.Config.Family != config.Family {
		return &CompatibilityError{
			Field:    "Family",
			Expected: r.Config.Family,
			Actual:   config.Family,
		}
	}
	if r.Config.Dimension != config.Dimension {
		return &CompatibilityError{
			Field:    "Dimension",
			Expected: fmt.Sprintf("%d", r.Config.Dimension),
			Actual:   fmt.Sprintf("%d", config.Dimension),
		}
	}
	if r.Config.Metric != config.Metric {
		return &CompatibilityError{
			Field:    "Metric",
			Expected: r.Config.Metric,
			Actual:   config.Metric,
		}
	}
	return nil
}

// CompatibilityError represents a run record compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}

// Package sim stages external solver runs per evaluation and caches their
// results. It owns the evaluation state machine that guarantees each
// simulation stage runs at most once per evaluation id.
package sim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sobench/sobench/internal/model"
)

// Stage is how far an evaluation's simulation has progressed.
type Stage int

const (
	StageNotStarted Stage = iota
	// StagePartial is the starter-only run: model setup and static
	// quantities such as mass, no transient analysis.
	StagePartial
	// StageFull is the complete transient run producing the time-series
	// result table.
	StageFull
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StagePartial:
		return "partial"
	case StageFull:
		return "full"
	default:
		return "unknown"
	}
}

// ResourceHints tunes a stage invocation without affecting its results.
type ResourceHints struct {
	Threads            int
	Processes          int
	WriteVisualization bool
}

// MeshOptions is handed to the wrapper's deck builder through the
// environment; the solver stage itself ignores it.
type MeshOptions struct {
	// HLevel is the mesh refinement level.
	HLevel int
	// GmshVerbosity is the mesher's log verbosity.
	GmshVerbosity int
}

// StageRequest describes one stage invocation.
type StageRequest struct {
	Family    model.Family
	Physical  []float64 // physical parameter vector from the encoder
	Workspace string    // deck directory owning the run's artifacts
	Stage     Stage
	Hints     ResourceHints
}

// Artifacts locates the solver outputs the core knows how to read. TablePath
// is empty after a partial run.
type Artifacts struct {
	StarterOutPath string
	TablePath      string
}

// StageRunner builds the model and invokes the external solver at the
// requested depth. Implementations clear stale artifacts at start of run;
// the state machine never cleans up after a failed stage.
type StageRunner interface {
	RunStage(ctx context.Context, req StageRequest) (Artifacts, error)
}

// SimulationError reports a failed external stage. The evaluation record is
// left at its last successful stage and the same stage may be retried.
type SimulationError struct {
	Stage Stage
	Err   error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation %s stage failed: %v", e.Stage, e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

func (e *SimulationError) Is(target error) bool {
	_, ok := target.(*SimulationError)
	return ok
}

// ExecRunner invokes the OpenRadioss wrapper script as a subprocess. The
// wrapper builds the input deck from the design parameterization written
// into the workspace, then solves; a partial request runs only the starter. Stdout and stderr land in output.txt and error.txt inside the
// workspace so failed runs can be inspected in place.
type ExecRunner struct {
	// WrapperPath is the OpenRadioss run wrapper (python script).
	WrapperPath string
	// Params identifies which artifact names the run produces.
	Params model.Params
	// Mesh is forwarded to the wrapper's deck builder.
	Mesh MeshOptions
}

// NewExecRunner creates a runner for the given wrapper script and family
// parameters.
func NewExecRunner(wrapperPath string, params model.Params, mesh MeshOptions) *ExecRunner {
	return &ExecRunner{WrapperPath: wrapperPath, Params: params, Mesh: mesh}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// RunStage writes the design parameterization into the workspace, then
// executes one solver stage and blocks until it completes or fails. A
// starter-only run is pinned to a single thread and process since it does no
// transient work.
func (r *ExecRunner) RunStage(ctx context.Context, req StageRequest) (Artifacts, error) {
	if err := WriteDesign(req.Workspace, req.Family, req.Physical, r.Mesh); err != nil {
		return Artifacts{}, &SimulationError{Stage: req.Stage, Err: err}
	}

	inputPath := filepath.Join(req.Workspace, r.Params.InputFileName)

	nt, np := req.Hints.Threads, req.Hints.Processes
	writeVTK := req.Hints.WriteVisualization
	if req.Stage == StagePartial {
		nt, np = 1, 1
		writeVTK = false
	}
	if nt < 1 {
		nt = 1
	}
	if np < 1 {
		np = 1
	}

	args := []string{
		r.WrapperPath,
		inputPath,
		fmt.Sprintf("%d", nt),
		fmt.Sprintf("%d", np),
		"sp",
		yesNo(writeVTK),
		"yes", // convert time-history output to csv
		yesNo(req.Stage == StagePartial),
	}

	cmd := exec.CommandContext(ctx, "python3", args...)
	cmd.Dir = req.Workspace
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("SOBENCH_H_LEVEL=%d", r.Mesh.HLevel),
		fmt.Sprintf("SOBENCH_GMSH_VERBOSITY=%d", r.Mesh.GmshVerbosity),
	)

	stdout, err := os.Create(filepath.Join(req.Workspace, "output.txt"))
	if err != nil {
		return Artifacts{}, &SimulationError{Stage: req.Stage, Err: err}
	}
	defer stdout.Close()

	stderr, err := os.Create(filepath.Join(req.Workspace, "error.txt"))
	if err != nil {
		return Artifacts{}, &SimulationError{Stage: req.Stage, Err: err}
	}
	defer stderr.Close()

	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return Artifacts{}, &SimulationError{Stage: req.Stage, Err: fmt.Errorf("wrapper execution: %w", err)}
	}

	artifacts := Artifacts{
		StarterOutPath: filepath.Join(req.Workspace, r.Params.StarterFileName),
	}
	if req.Stage == StageFull {
		artifacts.TablePath = filepath.Join(req.Workspace, r.Params.ResultFileName)
	}
	return artifacts, nil
}

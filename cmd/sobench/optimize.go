package main

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sobench/sobench/internal/encode"
	"github.com/sobench/sobench/internal/model"
	"github.com/sobench/sobench/internal/opt"
	"github.com/sobench/sobench/internal/problem"
	"github.com/sobench/sobench/internal/store"
	"github.com/spf13/cobra"
)

var (
	optFamily       string
	optDim          int
	optMetric       string
	optIters        int
	optPopSize      int
	optSeed         int64
	optRestarts     int
	optDataDir      string
	optTraceVectors bool
	optNoConverge   bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run single-objective optimization over a benchmark family",
	Long: `Minimizes a metric over the normalized design space using the mayfly
algorithm. Each restart reuses the evaluation cache on disk; the best design
vector and an evaluation trace are persisted under the data directory.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optFamily, "family", "", "Benchmark family: StarBox, ThreePointBending, CrashTube (required)")
	optimizeCmd.Flags().IntVar(&optDim, "dim", 0, "Design vector dimension (required)")
	optimizeCmd.Flags().StringVar(&optMetric, "metric", "", "Objective metric (default: family default)")
	optimizeCmd.Flags().IntVar(&optIters, "iters", 100, "Max iterations per restart")
	optimizeCmd.Flags().IntVar(&optPopSize, "pop", 30, "Population size")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 42, "Random seed")
	optimizeCmd.Flags().IntVar(&optRestarts, "restarts", 1, "Number of optimizer restarts")
	optimizeCmd.Flags().StringVar(&optDataDir, "data-dir", "./data", "Base directory for run records")
	optimizeCmd.Flags().BoolVar(&optTraceVectors, "trace-vectors", false, "Include design vectors in the trace file")
	optimizeCmd.Flags().BoolVar(&optNoConverge, "no-convergence", false, "Disable early stopping across restarts")

	optimizeCmd.MarkFlagRequired("family")
	optimizeCmd.MarkFlagRequired("dim")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	family, err := parseFamilyFlag(optFamily)
	if err != nil {
		return err
	}

	cfg, err := loadSolverConfig()
	if err != nil {
		return err
	}

	metric := optMetric
	if metric == "" {
		metric = model.FamilyParams(family).DefaultMetric
	}

	prob, err := problem.New(family, optDim, cfg, problem.WithMetrics(metric))
	if err != nil {
		return fmt.Errorf("failed to build problem: %w", err)
	}

	runID := uuid.NewString()
	runStore, err := store.NewFSStore(optDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	trace, err := store.NewTraceWriter(optDataDir, runID, false)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}
	defer trace.Close()

	slog.Info("Starting optimization",
		"run_id", runID,
		"family", family.String(),
		"dim", optDim,
		"metric", metric,
		"iters", optIters,
		"pop", optPopSize,
		"restarts", optRestarts,
	)

	// Wrap the objective to count evaluations and feed the trace.
	base := prob.ObjectiveFunc(cmd.Context(), metric)
	var mu sync.Mutex
	evaluations := 0
	objective := func(v []float64) float64 {
		value := base(v)

		mu.Lock()
		evaluations++
		n := evaluations
		mu.Unlock()

		entry := store.TraceEntry{
			Evaluation: n,
			Value:      value,
			Timestamp:  time.Now(),
		}
		if optTraceVectors {
			entry.Vector = append([]float64{}, v...)
		}
		if err := trace.Write(entry); err != nil {
			slog.Warn("Failed to write trace entry", "evaluation", n, "error", err)
		}
		return value
	}

	lower := make([]float64, optDim)
	upper := make([]float64, optDim)
	for i := range lower {
		lower[i] = encode.NormLower
		upper[i] = encode.NormUpper
	}

	convCfg := opt.DefaultConvergenceConfig()
	if optNoConverge {
		convCfg = opt.DisabledConvergenceConfig()
	}
	tracker := opt.NewConvergenceTracker(convCfg)

	start := time.Now()
	var bestVector []float64
	bestValue := 0.0
	for restart := 0; restart < optRestarts; restart++ {
		optimizer := opt.NewMayfly(optIters, optPopSize, optSeed+int64(restart))
		vector, value := optimizer.Run(objective, lower, upper, optDim)

		if bestVector == nil || value < bestValue {
			bestVector = vector
			bestValue = value
		}

		slog.Info("Restart complete",
			"restart", restart,
			"value", value,
			"best_value", bestValue,
		)

		if tracker.Update(value) {
			break
		}
	}
	elapsed := time.Since(start)

	if err := trace.Flush(); err != nil {
		slog.Warn("Failed to flush trace", "error", err)
	}

	record := store.NewRunRecord(runID, bestVector, bestValue, evaluations, store.RunConfig{
		Family:    family.String(),
		Dimension: optDim,
		Metric:    metric,
		Iters:     optIters,
		PopSize:   optPopSize,
		Seed:      optSeed,
		Restarts:  optRestarts,
	})
	if err := runStore.SaveRun(runID, record); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	slog.Info("Optimization complete",
		"run_id", runID,
		"elapsed", elapsed,
		"best_value", bestValue,
		"evaluations", evaluations,
	)

	fmt.Printf("Run %s: best %s = %g after %d evaluations (%.1fs)\n",
		runID, metric, bestValue, evaluations, elapsed.Seconds())

	return nil
}

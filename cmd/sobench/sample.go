package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sobench/sobench/internal/problem"
	"github.com/sobench/sobench/internal/sample"
	"github.com/sobench/sobench/internal/store"
	"github.com/spf13/cobra"
)

var (
	sampleFamily  string
	sampleDim     int
	sampleCount   int
	sampleSeed    int64
	sampleMetrics []string
	sampleDataDir string
	sampleGrid    int
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Evaluate random design vectors and record a dataset",
	Long: `Draws design vectors uniformly from the normalized space, evaluates
each through the solver pipeline and writes the results to a trace file for
later analysis or surrogate training.`,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVar(&sampleFamily, "family", "", "Benchmark family: StarBox, ThreePointBending, CrashTube (required)")
	sampleCmd.Flags().IntVar(&sampleDim, "dim", 0, "Design vector dimension (required)")
	sampleCmd.Flags().IntVar(&sampleCount, "count", 10, "Number of samples to draw")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 42, "Random seed")
	sampleCmd.Flags().StringSliceVar(&sampleMetrics, "metrics", nil, "Metrics to compute (default: family default)")
	sampleCmd.Flags().StringVar(&sampleDataDir, "data-dir", "./data", "Base directory for sample traces")
	sampleCmd.Flags().IntVar(&sampleGrid, "grid", 0, "Levels per component for a grid sweep instead of random sampling")

	sampleCmd.MarkFlagRequired("family")
	sampleCmd.MarkFlagRequired("dim")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	family, err := parseFamilyFlag(sampleFamily)
	if err != nil {
		return err
	}

	cfg, err := loadSolverConfig()
	if err != nil {
		return err
	}

	opts := []problem.Option{}
	if len(sampleMetrics) > 0 {
		opts = append(opts, problem.WithMetrics(sampleMetrics...))
	}

	prob, err := problem.New(family, sampleDim, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to build problem: %w", err)
	}

	runID := uuid.NewString()
	trace, err := store.NewTraceWriter(sampleDataDir, runID, false)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}
	defer trace.Close()

	sampler, err := sample.NewSampler(prob, trace)
	if err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}

	var vectors [][]float64
	if sampleGrid > 0 {
		vectors = sample.Grid(sampleDim, sampleGrid)
	} else {
		rng := rand.New(rand.NewSource(sampleSeed))
		vectors = sample.Random(rng, sampleDim, sampleCount)
	}
	total := len(vectors)

	slog.Info("Starting sampling",
		"run_id", runID,
		"family", family.String(),
		"dim", sampleDim,
		"count", total,
	)

	start := time.Now()
	indices, _, err := sampler.Sweep(cmd.Context(), vectors, prob.DefaultMetrics()...)
	if err != nil {
		return fmt.Errorf("sampling aborted: %w", err)
	}
	elapsed := time.Since(start)

	if err := trace.Flush(); err != nil {
		slog.Warn("Failed to flush trace", "error", err)
	}

	slog.Info("Sampling complete",
		"run_id", runID,
		"succeeded", len(indices),
		"failed", total-len(indices),
		"elapsed", elapsed,
	)

	fmt.Printf("Run %s: %d/%d samples succeeded, trace at %s\n",
		runID, len(indices), total, trace.Path())

	return nil
}

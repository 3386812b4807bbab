package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sobench/sobench/internal/config"
	"github.com/sobench/sobench/internal/model"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sobench",
	Short: "Structural crashworthiness optimization benchmark harness",
	Long: `Sobench evaluates crashworthiness design vectors through an external
finite-element solver, memoizes simulation stages per design, and drives
single-objective optimization over the resulting metrics.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stdout, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Solver configuration file (YAML)")
}

// loadSolverConfig loads the solver configuration from the --config flag,
// falling back to defaults when no file is given.
func loadSolverConfig() (config.Solver, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// parseFamilyFlag resolves the --family flag value.
func parseFamilyFlag(name string) (model.Family, error) {
	family, ok := model.ParseFamily(name)
	if !ok {
		return 0, fmt.Errorf("unknown family %q (want StarBox, ThreePointBending or CrashTube)", name)
	}
	return family, nil
}

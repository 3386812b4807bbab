// Package config loads the solver runner configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Solver holds everything needed to drive the external OpenRadioss wrapper.
// Zero-valued fields are filled from defaults on load.
type Solver struct {
	// WrapperPath is the OpenRadioss run wrapper script.
	WrapperPath string `yaml:"open_radioss_path"`
	// WorkDir is the base directory under which deck directories are created.
	WorkDir string `yaml:"work_dir"`

	Threads   int  `yaml:"threads"`
	Processes int  `yaml:"processes"`
	WriteVTK  bool `yaml:"write_vtk"`

	// HLevel is the mesh refinement level handed to the mesher.
	HLevel int `yaml:"h_level"`
	// GmshVerbosity is the mesher's log verbosity.
	GmshVerbosity int `yaml:"gmsh_verbosity"`
}

// Default returns the solver configuration defaults.
func Default() Solver {
	return Solver{
		WorkDir:   ".",
		Threads:   1,
		Processes: 1,
		HLevel:    1,
	}
}

// Load reads and validates a solver configuration file, filling unset fields
// with defaults.
func Load(path string) (Solver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Solver{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Solver{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into a Solver config, applies defaults and validates.
func Parse(data []byte) (Solver, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Solver{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Solver{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Solver) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	if c.Processes < 1 {
		return fmt.Errorf("processes must be positive, got %d", c.Processes)
	}
	if c.HLevel < 1 {
		return fmt.Errorf("h_level must be positive, got %d", c.HLevel)
	}
	if c.GmshVerbosity < 0 {
		return fmt.Errorf("gmsh_verbosity cannot be negative, got %d", c.GmshVerbosity)
	}
	return nil
}

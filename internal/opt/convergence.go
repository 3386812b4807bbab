package opt

import (
	"log/slog"
	"math"
)

// ConvergenceConfig defines parameters for detecting optimization convergence
type ConvergenceConfig struct {
	// Enabled controls whether convergence detection is active
	Enabled bool

	// Patience is the number of restarts with no improvement before stopping
	Patience int

	// Threshold is the minimum relative improvement required to count as progress
	// Example: 0.001 = 0.1% improvement required
	// Relative improvement = (oldValue - newValue) / |oldValue|
	Threshold float64
}

// DefaultConvergenceConfig returns sensible defaults for convergence detection
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Enabled:   true,
		Patience:  3,
		Threshold: 0.001, // 0.1% improvement
	}
}

// DisabledConvergenceConfig returns a config with convergence detection disabled
func DisabledConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Enabled: false,
	}
}

// ConvergenceTracker tracks objective history and detects when optimization
// has stalled across restarts
type ConvergenceTracker struct {
	config          ConvergenceConfig
	history         []float64
	bestValue       float64 // Best objective value ever seen
	lastSignificant float64 // Last value that was a significant improvement
	staleCount      int     // Number of restarts without significant improvement
}

// NewConvergenceTracker creates a new convergence tracker with the given config
func NewConvergenceTracker(config ConvergenceConfig) *ConvergenceTracker {
	return &ConvergenceTracker{
		config:          config,
		history:         []float64{},
		bestValue:       math.Inf(1),
		lastSignificant: math.Inf(1),
		staleCount:      0,
	}
}

// Update records a new objective value and returns true if convergence is detected
func (c *ConvergenceTracker) Update(value float64) bool {
	if !c.config.Enabled {
		return false // Never converge if disabled
	}

	c.history = append(c.history, value)

	if value < c.bestValue {
		c.bestValue = value
	}

	// First value - initialize lastSignificant
	if len(c.history) == 1 {
		c.lastSignificant = value
		return false
	}

	// Check if this is a significant improvement from last significant point
	relativeImprovement := (c.lastSignificant - value) / math.Abs(c.lastSignificant)

	if relativeImprovement >= c.config.Threshold {
		// Significant improvement - reset stale counter
		c.lastSignificant = value
		c.staleCount = 0
		slog.Debug("Objective improvement detected",
			"value", value,
			"relative_improvement", relativeImprovement,
			"stale_count", c.staleCount,
		)
	} else {
		// No significant improvement
		c.staleCount++
		slog.Debug("No significant objective improvement",
			"value", value,
			"last_significant", c.lastSignificant,
			"relative_improvement", relativeImprovement,
			"stale_count", c.staleCount,
			"patience", c.config.Patience,
		)

		if c.staleCount >= c.config.Patience {
			slog.Info("Convergence detected - stopping early",
				"stale_count", c.staleCount,
				"patience", c.config.Patience,
				"best_value", c.bestValue,
			)
			return true
		}
	}

	return false
}

// BestValue returns the best objective value seen so far
func (c *ConvergenceTracker) BestValue() float64 {
	return c.bestValue
}

// History returns the full objective history
func (c *ConvergenceTracker) History() []float64 {
	return append([]float64{}, c.history...) // Return copy
}

// StaleCount returns the current number of restarts without improvement
func (c *ConvergenceTracker) StaleCount() int {
	return c.staleCount
}

// Reset clears the tracker's state
func (c *ConvergenceTracker) Reset() {
	c.history = []float64{}
	c.bestValue = math.Inf(1)
	c.lastSignificant = math.Inf(1)
	c.staleCount = 0
}

package opt

import (
	"math"
	"testing"
)

func TestConvergenceDisabled(t *testing.T) {
	tracker := NewConvergenceTracker(DisabledConvergenceConfig())

	for i := 0; i < 20; i++ {
		if tracker.Update(1.0) {
			t.Fatal("disabled tracker reported convergence")
		}
	}
}

func TestConvergenceAfterPatience(t *testing.T) {
	tracker := NewConvergenceTracker(ConvergenceConfig{
		Enabled:   true,
		Patience:  3,
		Threshold: 0.001,
	})

	if tracker.Update(100.0) {
		t.Fatal("converged on first value")
	}

	// Three stalled updates in a row trip the patience limit.
	if tracker.Update(99.99) {
		t.Fatal("converged after one stale update")
	}
	if tracker.Update(99.98) {
		t.Fatal("converged after two stale updates")
	}
	if !tracker.Update(99.97) {
		t.Fatal("did not converge after patience exhausted")
	}
}

func TestConvergenceResetOnImprovement(t *testing.T) {
	tracker := NewConvergenceTracker(ConvergenceConfig{
		Enabled:   true,
		Patience:  2,
		Threshold: 0.01,
	})

	tracker.Update(100.0)
	tracker.Update(99.99) // stale
	if tracker.StaleCount() != 1 {
		t.Errorf("StaleCount = %d, want 1", tracker.StaleCount())
	}

	// A 5% improvement resets the stale counter.
	if tracker.Update(95.0) {
		t.Fatal("converged on significant improvement")
	}
	if tracker.StaleCount() != 0 {
		t.Errorf("StaleCount = %d after improvement, want 0", tracker.StaleCount())
	}
}

func TestConvergenceNegativeValues(t *testing.T) {
	// Objectives can be negative (negated specific energy); relative
	// improvement uses the magnitude of the reference value.
	tracker := NewConvergenceTracker(ConvergenceConfig{
		Enabled:   true,
		Patience:  2,
		Threshold: 0.01,
	})

	tracker.Update(-200.0)
	if tracker.Update(-210.0) {
		t.Fatal("converged on 5% improvement of negative objective")
	}
	if tracker.StaleCount() != 0 {
		t.Errorf("StaleCount = %d, want 0 after improvement", tracker.StaleCount())
	}
}

func TestBestValueTracking(t *testing.T) {
	tracker := NewConvergenceTracker(DefaultConvergenceConfig())

	if !math.IsInf(tracker.BestValue(), 1) {
		t.Errorf("initial BestValue = %v, want +Inf", tracker.BestValue())
	}

	tracker.Update(5.0)
	tracker.Update(3.0)
	tracker.Update(4.0)

	if tracker.BestValue() != 3.0 {
		t.Errorf("BestValue = %v, want 3", tracker.BestValue())
	}

	history := tracker.History()
	if len(history) != 3 {
		t.Fatalf("History length = %d, want 3", len(history))
	}
	if history[1] != 3.0 {
		t.Errorf("History[1] = %v, want 3", history[1])
	}
}

func TestTrackerReset(t *testing.T) {
	tracker := NewConvergenceTracker(DefaultConvergenceConfig())
	tracker.Update(1.0)
	tracker.Update(1.0)

	tracker.Reset()

	if len(tracker.History()) != 0 {
		t.Error("History not cleared by Reset")
	}
	if tracker.StaleCount() != 0 {
		t.Error("StaleCount not cleared by Reset")
	}
	if !math.IsInf(tracker.BestValue(), 1) {
		t.Error("BestValue not cleared by Reset")
	}
}

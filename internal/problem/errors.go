package problem

import (
	"fmt"

	"github.com/sobench/sobench/internal/model"
)

// OutOfRangeError reports a design vector violating the caller contract:
// wrong length or a component outside the normalized search space. Raised
// before any external process is invoked.
type OutOfRangeError struct {
	Index  int // -1 for a length mismatch
	Value  float64
	Reason string
}

func (e *OutOfRangeError) Error() string {
	if e.Index < 0 {
		return "design vector out of range: " + e.Reason
	}
	return fmt.Sprintf("design vector component %d out of range: %g not in [%g, %g]",
		e.Index, e.Value, normLower, normUpper)
}

func (e *OutOfRangeError) Is(target error) bool {
	_, ok := target.(*OutOfRangeError)
	return ok
}

// ForbiddenMetricError reports a metric that is not physically meaningful for
// the problem family. Raised before any workspace is created.
type ForbiddenMetricError struct {
	Family model.Family
	Metric string
}

func (e *ForbiddenMetricError) Error() string {
	return fmt.Sprintf("metric %q is not allowed for the %s problem", e.Metric, e.Family)
}

func (e *ForbiddenMetricError) Is(target error) bool {
	_, ok := target.(*ForbiddenMetricError)
	return ok
}

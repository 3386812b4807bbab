// Package encode maps normalized design vectors into physical parameter
// vectors. Encoding is a pure function of (family, dimension, vector): no
// state, no I/O, safe for concurrent use.
package encode

import (
	"fmt"

	"github.com/sobench/sobench/internal/model"
)

// Normalized search-space bounds shared by every design variable.
const (
	NormLower = -5.0
	NormUpper = 5.0
)

// Range is a physical lower/upper bound pair for one design variable slot.
type Range struct {
	Lower float64
	Upper float64
}

// UnsupportedDimensionError reports a dimensionality for which the family
// defines no encoding table entry.
type UnsupportedDimensionError struct {
	Family    model.Family
	Dimension int
}

func (e *UnsupportedDimensionError) Error() string {
	return fmt.Sprintf("unsupported dimension %d for family %s", e.Dimension, e.Family)
}

func (e *UnsupportedDimensionError) Is(target error) bool {
	_, ok := target.(*UnsupportedDimensionError)
	return ok
}

// Dimension limits per family. StarBox extends its 5-slot base with
// thickness-profile slots, ThreePointBending is all thickness slots, and
// CrashTube packs up to ten three-role trigger groups.
const (
	maxStarBoxDim           = 35
	maxThreePointBendingDim = 40
	maxCrashTubeDim         = 30
)

var starBoxBase = [5]Range{
	{60, 120}, // length
	{60, 120}, // width
	{0, 30},   // star offset u
	{0, 30},   // star offset v
	{0.7, 3},  // thickness
}

// CrashTube role ranges in round-robin order: position, depth, height.
var crashTubePattern = [3]Range{
	{-10, 10},
	{-4, 4},
	{0, 4},
}

// Ranges returns the ordered physical ranges controlled by a design vector of
// the given dimensionality.
func Ranges(family model.Family, dimension int) ([]Range, error) {
	if dimension <= 0 {
		return nil, &UnsupportedDimensionError{Family: family, Dimension: dimension}
	}

	switch family {
	case model.StarBox:
		if dimension > maxStarBoxDim {
			return nil, &UnsupportedDimensionError{Family: family, Dimension: dimension}
		}
		ranges := make([]Range, dimension)
		for i := range ranges {
			if i < len(starBoxBase) {
				ranges[i] = starBoxBase[i]
			} else {
				ranges[i] = Range{0.7, 3} // thickness-profile control point
			}
		}
		// Low dimensionalities drop slots from the tail of the base order,
		// except dim 3 which controls length, width and thickness.
		if dimension == 3 {
			ranges[2] = starBoxBase[4]
		}
		return ranges, nil

	case model.ThreePointBending:
		if dimension > maxThreePointBendingDim {
			return nil, &UnsupportedDimensionError{Family: family, Dimension: dimension}
		}
		ranges := make([]Range, dimension)
		for i := range ranges {
			ranges[i] = Range{0.5, 3} // sheet thickness
		}
		return ranges, nil

	case model.CrashTube:
		if dimension > maxCrashTubeDim {
			return nil, &UnsupportedDimensionError{Family: family, Dimension: dimension}
		}
		ranges := make([]Range, dimension)
		for i := range ranges {
			ranges[i] = crashTubePattern[i%3]
		}
		return ranges, nil

	default:
		return nil, &UnsupportedDimensionError{Family: family, Dimension: dimension}
	}
}

// Affine maps one normalized value onto the physical range r.
func Affine(normalized float64, r Range) float64 {
	scale := (r.Upper - r.Lower) / (NormUpper - NormLower)
	return r.Lower + (normalized-NormLower)*scale
}

// Encode maps a normalized design vector into physical units using the
// family's encoding table for the given dimensionality. The vector length
// must equal dimension; component bound checks are the caller's contract and
// happen at the problem boundary.
func Encode(family model.Family, dimension int, vector []float64) ([]float64, error) {
	if len(vector) != dimension {
		return nil, fmt.Errorf("design vector has %d components, dimension is %d", len(vector), dimension)
	}

	ranges, err := Ranges(family, dimension)
	if err != nil {
		return nil, err
	}

	physical := make([]float64, dimension)
	for i, v := range vector {
		physical[i] = Affine(v, ranges[i])
	}
	return physical, nil
}

package encode

import (
	"errors"
	"math"
	"testing"

	"github.com/sobench/sobench/internal/model"
)

func TestAffineEndpoints(t *testing.T) {
	r := Range{Lower: 60, Upper: 120}

	if got := Affine(NormLower, r); got != 60 {
		t.Errorf("Affine(-5) = %v, want 60", got)
	}
	if got := Affine(NormUpper, r); got != 120 {
		t.Errorf("Affine(5) = %v, want 120", got)
	}
	if got := Affine(0, r); got != 90 {
		t.Errorf("Affine(0) = %v, want 90", got)
	}
}

func TestAffineNegativeRange(t *testing.T) {
	r := Range{Lower: -10, Upper: 10}

	if got := Affine(0, r); got != 0 {
		t.Errorf("Affine(0) = %v, want 0", got)
	}
	if got := Affine(2.5, r); got != 5 {
		t.Errorf("Affine(2.5) = %v, want 5", got)
	}
}

func TestStarBoxRanges(t *testing.T) {
	tests := []struct {
		dim  int
		want []Range
	}{
		{1, []Range{{60, 120}}},
		{2, []Range{{60, 120}, {60, 120}}},
		{3, []Range{{60, 120}, {60, 120}, {0.7, 3}}},
		{4, []Range{{60, 120}, {60, 120}, {0, 30}, {0, 30}}},
		{5, []Range{{60, 120}, {60, 120}, {0, 30}, {0, 30}, {0.7, 3}}},
	}

	for _, tt := range tests {
		got, err := Ranges(model.StarBox, tt.dim)
		if err != nil {
			t.Fatalf("Ranges(StarBox, %d) error: %v", tt.dim, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Ranges(StarBox, %d) has %d slots, want %d", tt.dim, len(got), len(tt.want))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Ranges(StarBox, %d)[%d] = %v, want %v", tt.dim, i, got[i], tt.want[i])
			}
		}
	}
}

func TestStarBoxProfileSlots(t *testing.T) {
	ranges, err := Ranges(model.StarBox, 12)
	if err != nil {
		t.Fatalf("Ranges error: %v", err)
	}
	for i := 5; i < 12; i++ {
		if ranges[i] != (Range{0.7, 3}) {
			t.Errorf("slot %d = %v, want thickness range", i, ranges[i])
		}
	}
}

func TestThreePointBendingRanges(t *testing.T) {
	ranges, err := Ranges(model.ThreePointBending, 7)
	if err != nil {
		t.Fatalf("Ranges error: %v", err)
	}
	for i, r := range ranges {
		if r != (Range{0.5, 3}) {
			t.Errorf("slot %d = %v, want {0.5 3}", i, r)
		}
	}
}

func TestCrashTubeRanges(t *testing.T) {
	ranges, err := Ranges(model.CrashTube, 7)
	if err != nil {
		t.Fatalf("Ranges error: %v", err)
	}
	want := []Range{{-10, 10}, {-4, 4}, {0, 4}, {-10, 10}, {-4, 4}, {0, 4}, {-10, 10}}
	for i := range want {
		if ranges[i] != want[i] {
			t.Errorf("slot %d = %v, want %v", i, ranges[i], want[i])
		}
	}
}

func TestRangesUnsupportedDimension(t *testing.T) {
	tests := []struct {
		family model.Family
		dim    int
	}{
		{model.StarBox, 0},
		{model.StarBox, -1},
		{model.StarBox, 36},
		{model.ThreePointBending, 41},
		{model.CrashTube, 31},
	}

	for _, tt := range tests {
		_, err := Ranges(tt.family, tt.dim)
		if err == nil {
			t.Errorf("Ranges(%s, %d) succeeded, want error", tt.family, tt.dim)
			continue
		}
		var dimErr *UnsupportedDimensionError
		if !errors.As(err, &dimErr) {
			t.Errorf("Ranges(%s, %d) error type %T, want UnsupportedDimensionError", tt.family, tt.dim, err)
		}
	}
}

func TestEncodeStarBoxCorners(t *testing.T) {
	vector := []float64{-5, -5, -5, -5, -5}
	physical, err := Encode(model.StarBox, 5, vector)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	want := []float64{60, 60, 0, 0, 0.7}
	for i := range want {
		if math.Abs(physical[i]-want[i]) > 1e-12 {
			t.Errorf("physical[%d] = %v, want %v", i, physical[i], want[i])
		}
	}
}

func TestEncodeLengthMismatch(t *testing.T) {
	_, err := Encode(model.StarBox, 5, []float64{0, 0, 0})
	if err == nil {
		t.Fatal("Encode with short vector succeeded, want error")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	vector := []float64{1.25, -3.5, 0, 4.75, -0.5}
	a, err := Encode(model.StarBox, 5, vector)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	b, err := Encode(model.StarBox, 5, vector)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("component %d differs between calls: %v vs %v", i, a[i], b[i])
		}
	}
}

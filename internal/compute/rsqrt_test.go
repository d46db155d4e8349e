package compute

import (
	"math"
	"testing"
)

func TestExactInvSqrt(t *testing.T) {
	for _, x := range []float32{1e-9, 0.25, 1, 4, 100, 1e6} {
		got := float64(ExactInvSqrt(x))
		want := 1.0 / math.Sqrt(float64(x))
		if math.Abs(got-want)/want > 1e-7 {
			t.Errorf("ExactInvSqrt(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestFastInvSqrtError(t *testing.T) {
	// The bit-shift approximation with one Newton step stays within
	// about 2e-3 relative error across the kernel's input range.
	for x := float32(1e-9); x < 1e9; x *= 1.37 {
		got := float64(FastInvSqrt(x))
		want := 1.0 / math.Sqrt(float64(x))
		rel := math.Abs(got-want) / want
		if rel > 2e-3 {
			t.Fatalf("FastInvSqrt(%v): relative error %v exceeds 2e-3", x, rel)
		}
	}
}

func TestFastInvSqrtFinite(t *testing.T) {
	for _, x := range []float32{1e-30, 1e-9, 1, 1e30} {
		v := float64(FastInvSqrt(x))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("FastInvSqrt(%v) = %v", x, v)
		}
	}
}

package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	a := []float32{1.0, 2.0, 3.0}
	b := []float32{1.0, 2.5, 3.0}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if d != 0.5 {
		t.Fatalf("MaxAbsDiff = %v, want 0.5", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	_, err := MaxAbsDiff([]float32{1}, []float32{1, 2})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestMaxStep(t *testing.T) {
	if got := MaxStep([]float32{0, 0.25, 0.5, -0.5}); got != 1 {
		t.Fatalf("MaxStep = %v, want 1", got)
	}

	if got := MaxStep(nil); got != 0 {
		t.Fatalf("MaxStep(nil) = %v, want 0", got)
	}
}

func TestRequireSliceNearlyEqualPasses(t *testing.T) {
	RequireSliceNearlyEqual(t, []float32{1, 2}, []float32{1, 2.0000001}, 1e-6)
	RequireFinite(t, []float32{0, float32(math.MaxFloat32)})
}

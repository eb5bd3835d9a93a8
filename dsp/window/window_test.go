package window

import (
	"math"
	"testing"
)

func allTypes() []Type {
	return []Type{
		TypeRectangular,
		TypeHann,
		TypeHamming,
		TypeBlackman,
		TypeBlackmanHarris4Term,
		TypeFlatTop,
	}
}

func TestGenerateFiniteAndSymmetric(t *testing.T) {
	for _, typ := range allTypes() {
		t.Run(Info(typ).Name, func(t *testing.T) {
			w := Generate(typ, 65)
			if len(w) != 65 {
				t.Fatalf("len=%d, want 65", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}

				if math.Abs(v-w[len(w)-1-i]) > 1e-12 {
					t.Fatalf("not symmetric at %d: %v vs %v", i, v, w[len(w)-1-i])
				}
			}

			if math.Abs(w[32]-1) > 1e-6 && typ != TypeFlatTop {
				t.Fatalf("centre = %v, want 1", w[32])
			}
		})
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	sym := Generate(TypeHann, 8)
	per := Generate(TypeHann, 8, WithPeriodic())

	if sym[7] != 0 && math.Abs(sym[7]) > 1e-12 {
		t.Fatalf("symmetric Hann must end at 0: %v", sym[7])
	}

	if per[7] < 0.1 {
		t.Fatalf("periodic Hann must not end at 0: %v", per[7])
	}
}

func TestENBWMatchesMetadata(t *testing.T) {
	for _, typ := range allTypes() {
		t.Run(Info(typ).Name, func(t *testing.T) {
			w := Generate(typ, 4096, WithPeriodic())

			enbw, err := EquivalentNoiseBandwidth(w)
			if err != nil {
				t.Fatalf("ENBW: %v", err)
			}

			if math.Abs(enbw-Info(typ).ENBW) > 1e-3 {
				t.Fatalf("ENBW = %v, want %v", enbw, Info(typ).ENBW)
			}

			cg, err := CoherentGain(w)
			if err != nil {
				t.Fatalf("CoherentGain: %v", err)
			}

			if math.Abs(cg-Info(typ).CoherentGain) > 1e-6 {
				t.Fatalf("coherent gain = %v, want %v", cg, Info(typ).CoherentGain)
			}
		})
	}
}

func TestApplyHelpers(t *testing.T) {
	buf := []float64{2, 2, 2, 2}
	Apply(TypeHann, buf)

	want := Generate(TypeHann, 4)
	for i := range buf {
		if math.Abs(buf[i]-2*want[i]) > 1e-12 {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], 2*want[i])
		}
	}

	out, err := ApplyCoefficients([]float64{1, 2}, []float64{0.5, 0.25})
	if err != nil || out[0] != 0.5 || out[1] != 0.5 {
		t.Fatalf("ApplyCoefficients = %v, %v", out, err)
	}

	if _, err := ApplyCoefficients([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestValidationAndEdgeCases(t *testing.T) {
	if Generate(TypeHann, 0) != nil {
		t.Fatal("expected nil for zero length")
	}

	if w := Generate(TypeBlackman, 1); len(w) != 1 {
		t.Fatalf("len = %d, want 1", len(w))
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}

	if _, err := EquivalentNoiseBandwidth([]float64{1, -1}); err == nil {
		t.Fatal("expected error for zero coherent gain")
	}

	if _, err := ParseType("kaiser"); err == nil {
		t.Fatal("expected error for unsupported window")
	}

	for _, typ := range allTypes() {
		got, err := ParseType(Info(typ).Name)
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", Info(typ).Name, got, err)
		}
	}
}

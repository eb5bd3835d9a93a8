package effects

import "testing"

func TestDistortionValidation(t *testing.T) {
	invalid := []DistortionOption{
		WithDistortionDrive(100),
		WithDistortionDrive(-1),
		WithDistortionCurve(60),
		WithDistortionBias(2),
		WithDistortionMix(1.5),
		WithDistortionMode(ShaperMode(999)),
	}

	for i, opt := range invalid {
		if _, err := NewDistortion(opt); err == nil {
			t.Fatalf("option %d: expected error", i)
		}
	}

	d, err := NewDistortion()
	if err != nil {
		t.Fatalf("NewDistortion() error = %v", err)
	}

	if d.Mode() != ShaperSoftClip || d.Drive() != 1 || d.Mix() != 1 {
		t.Fatalf("unexpected defaults: %+v mix=%v", d.Controls(), d.Mix())
	}

	if err := d.SetMode(ShaperMode(-1)); err == nil {
		t.Fatal("expected error for invalid mode")
	}

	if err := d.SetDrive(21); err == nil {
		t.Fatal("expected error for invalid drive")
	}

	if err := d.SetCurve(-51); err == nil {
		t.Fatal("expected error for invalid curve")
	}

	if err := d.SetBias(-1.5); err == nil {
		t.Fatal("expected error for invalid bias")
	}

	if err := d.SetMix(-0.1); err == nil {
		t.Fatal("expected error for invalid mix")
	}
}

func TestDistortionMixZeroPassthrough(t *testing.T) {
	d, err := NewDistortion(
		WithDistortionMode(ShaperHardClip),
		WithDistortionDrive(10),
		WithDistortionMix(0),
	)
	if err != nil {
		t.Fatalf("NewDistortion() error = %v", err)
	}

	for _, in := range []float32{-1.2, -0.5, 0, 0.4, 1.3} {
		if out := d.ProcessSample(in); out != in {
			t.Fatalf("mix=0 passthrough mismatch: in=%g out=%g", in, out)
		}
	}
}

func TestDistortionSetters(t *testing.T) {
	d, _ := NewDistortion()

	if err := d.SetMode(ShaperTapeTube); err != nil {
		t.Fatal(err)
	}

	if err := d.SetDrive(2); err != nil {
		t.Fatal(err)
	}

	if err := d.SetCurve(0.25); err != nil {
		t.Fatal(err)
	}

	if err := d.SetBias(0.1); err != nil {
		t.Fatal(err)
	}

	if err := d.SetMix(0.5); err != nil {
		t.Fatal(err)
	}

	x := float32(0.6)
	want := 0.5*x + 0.5*TapeTube(x, 2, 0.25, 0.1)

	if got := d.ProcessSample(x); !near32(got, want, 1e-6) {
		t.Fatalf("got %v want %v", got, want)
	}

	d.SetGatedSoftClip(true)

	if !d.Controls().GatedSoftClip {
		t.Fatal("gated flag not stored")
	}
}

func TestDistortionProcessInPlaceMatchesSample(t *testing.T) {
	d, _ := NewDistortion(
		WithDistortionMode(ShaperOddEven),
		WithDistortionDrive(3),
		WithDistortionCurve(0.5),
		WithDistortionMix(0.7),
	)

	in := []float32{-0.9, -0.3, 0, 0.2, 0.8, 1.4}
	buf := append([]float32(nil), in...)
	d.ProcessInPlace(buf)

	for i, x := range in {
		if buf[i] != d.ProcessSample(x) {
			t.Fatalf("index %d: in-place %v != sample %v", i, buf[i], d.ProcessSample(x))
		}
	}
}

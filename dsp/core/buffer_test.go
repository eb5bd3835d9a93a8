package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float32, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}

	if grown := EnsureLen(buf, 16); len(grown) != 16 {
		t.Fatalf("len = %d, want 16", len(grown))
	}
}

func TestCopyInto(t *testing.T) {
	dst := make([]float64, 2)

	n := CopyInto(dst, []float64{1, 2, 3})
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}

	if dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("unexpected dst: %#v", dst)
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	frames := []float32{1, -1, 2, -2, 3, -3}
	chans := [][]float32{make([]float32, 3), make([]float32, 3)}

	if n := Deinterleave(chans, frames); n != 3 {
		t.Fatalf("Deinterleave frames = %d, want 3", n)
	}

	if chans[0][2] != 3 || chans[1][2] != -3 {
		t.Fatalf("unexpected channels: %v", chans)
	}

	out := make([]float32, 6)
	if n := Interleave(out, chans); n != 3 {
		t.Fatalf("Interleave frames = %d, want 3", n)
	}

	for i := range frames {
		if out[i] != frames[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], frames[i])
		}
	}
}

func TestInterleaveShortChannel(t *testing.T) {
	out := make([]float32, 8)
	n := Interleave(out, [][]float32{{1, 2, 3}, {4}})

	if n != 1 {
		t.Fatalf("frames = %d, want 1", n)
	}
}

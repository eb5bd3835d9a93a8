package testutil

import "math"

// DC generates a constant-valued signal.
func DC(value float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// LinearRamp generates slope*i. Every interpolation kernel used by the
// delay line reproduces it exactly at any fractional delay.
func LinearRamp(slope float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = slope * float32(i)
	}

	return out
}

// Delayed returns x shifted right by n samples, zero-filled.
func Delayed(x []float32, n int) []float32 {
	out := make([]float32, len(x))
	if n < len(x) {
		copy(out[n:], x)
	}

	return out
}

// Stereo allocates a two-channel buffer of length frames.
func Stereo(frames int) [][]float32 {
	return [][]float32{make([]float32, frames), make([]float32, frames)}
}

// PeakIn returns the largest absolute value of x in [from, to).
func PeakIn(x []float32, from, to int) float32 {
	var peak float32

	for i := max(from, 0); i < min(to, len(x)); i++ {
		peak = max(peak, float32(math.Abs(float64(x[i]))))
	}

	return peak
}

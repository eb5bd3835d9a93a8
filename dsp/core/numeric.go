package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// Feedback paths that decay towards silence call it once per sample.
func FlushDenormals(x float32) float32 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// PercentToUnit maps a percentage to a factor (100 % is 1).
func PercentToUnit(percent float64) float64 {
	return percent * 0.01
}

// PanEqualPower returns the left and right gains for pan in [-1, 1].
// Centre gives cos(pi/4) on both sides; the summed power is always 1.
func PanEqualPower(pan float64) (left, right float64) {
	x := math.Pi / 4 * (Clamp(pan, -1, 1) + 1)
	return math.Cos(x), math.Sin(x)
}

// MillisecondsToSamples converts a duration to a (fractional) sample count.
func MillisecondsToSamples(ms, sampleRate float64) float64 {
	return ms * sampleRate / 1000
}

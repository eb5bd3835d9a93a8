//go:build !fastmath

package effects

import "math"

// mathTanh computes tanh(x) using standard library math.
func mathTanh(x float64) float64 {
	return math.Tanh(x)
}

// mathExp computes e^x using standard library math.
func mathExp(x float64) float64 {
	return math.Exp(x)
}

// mathAtan computes atan(x) using standard library math.
func mathAtan(x float64) float64 {
	return math.Atan(x)
}

// mathPow computes a^p for a >= 0 using standard library math.
func mathPow(a, p float64) float64 {
	return math.Pow(a, p)
}

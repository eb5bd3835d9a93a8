//go:build fastmath

package effects

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

// mathTanh computes tanh(x) from a fast exponential.
// Uses the identity: tanh(x) = 1 - 2/(e^(2x) + 1)
func mathTanh(x float64) float64 {
	switch {
	case x > 20:
		return 1
	case x < -20:
		return -1
	}

	return 1 - 2/(approx.FastExp(2*x)+1)
}

// mathExp computes e^x using fast approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}

// mathAtan computes atan(x) using standard library.
// Note: algo-approx has no arctangent, and the tape shaper is the only caller.
func mathAtan(x float64) float64 {
	return math.Atan(x)
}

// mathPow computes a^p for a >= 0 using fast approximation.
// Uses the identity: a^p = e^(p * ln(a))
func mathPow(a, p float64) float64 {
	if a <= 0 {
		if p == 0 {
			return 1
		}

		return 0
	}

	return approx.FastExp(p * approx.FastLog(a))
}

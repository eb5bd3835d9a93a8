package interp

import (
	"fmt"
	"strings"
)

// Mode selects the interpolation kernel used for fractional delay reads.
// The numeric values match the host "delay quality" selector.
type Mode int

const (
	Linear Mode = iota
	Lagrange
	Cubic
	Hermite
)

// DefaultMode is the kernel used when nothing else is configured.
const DefaultMode = Lagrange

var modeNames = [...]string{
	Linear:   "linear",
	Lagrange: "lagrange",
	Cubic:    "cubic",
	Hermite:  "hermite",
}

// String returns the lower-case kernel name.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}

	return modeNames[m]
}

// Valid reports whether m names a known kernel.
func (m Mode) Valid() bool {
	return m >= Linear && m <= Hermite
}

// Taps returns the number of buffer samples the kernel reads.
func (m Mode) Taps() int {
	if m == Linear {
		return 2
	}

	return 4
}

// MinDelay returns the smallest delay in samples the kernel can read.
// The 4-point kernels need one newer sample than the integer delay.
func (m Mode) MinDelay() float64 {
	if m == Linear {
		return 0
	}

	return 1
}

// GuardSamples returns how far below the buffer capacity the delay must stay
// so that every tap lands inside the buffer after a single wrap.
func (m Mode) GuardSamples() int {
	if m == Linear {
		return 2
	}

	return 3
}

// ParseMode parses a kernel name or its numeric selector.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name || s == fmt.Sprint(i) {
			return Mode(i), nil
		}
	}

	return 0, fmt.Errorf("interpolation mode is invalid: %q", s)
}

// Linear2 interpolates between x0 and x1.
func Linear2(t, x0, x1 float32) float32 {
	return x0 + t*(x1-x0)
}

// Lagrange4 evaluates the cubic Lagrange polynomial through the points at
// offsets -1, 0, 1, 2 and returns its value at t.
func Lagrange4(t, xm1, x0, x1, x2 float32) float32 {
	c := x1 - 0.5*x0 - xm1/3 - x2/6
	b := 0.5*(xm1+x1) - x0
	a := (x2-xm1)/6 + 0.5*(x0-x1)

	return x0 + t*(c+t*(b+t*a))
}

// Cubic4 is the four-point cubic with coefficients taken straight from the
// sample differences (a0 = x2-x1-xm1+x0). It passes through x0 and x1 but
// is not exact on ramps between them.
func Cubic4(t, xm1, x0, x1, x2 float32) float32 {
	a0 := x2 - x1 - xm1 + x0
	a1 := xm1 - x0 - a0
	a2 := x1 - xm1
	a3 := x0

	return ((a0*t+a1)*t+a2)*t + a3
}

// Hermite4 computes the Catmull-Rom cubic Hermite spline between x0 and x1.
// The tangents are central differences around the two inner points.
func Hermite4(t, xm1, x0, x1, x2 float32) float32 {
	slope0 := (x1 - xm1) * 0.5
	slope1 := (x2 - x0) * 0.5
	v := x0 - x1
	w := slope0 + v
	a := w + v + slope1
	b := w + a

	stage1 := a*t - b
	stage2 := stage1*t + slope0

	return stage2*t + x0
}

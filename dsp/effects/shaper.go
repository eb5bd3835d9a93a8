package effects

import (
	"fmt"
	"math"
	"strings"
)

// ShaperMode selects the transfer function of the waveshaping stage.
// Values match the mode numbers of the host's distortion selector.
type ShaperMode int

const (
	ShaperOff ShaperMode = iota
	ShaperSoftClip
	ShaperHardClip
	ShaperInflator
	ShaperTapeTube
	ShaperSwell
	ShaperOddEven
)

var shaperModeNames = [...]string{
	ShaperOff:      "off",
	ShaperSoftClip: "soft",
	ShaperHardClip: "hard",
	ShaperInflator: "inflator",
	ShaperTapeTube: "tapetube",
	ShaperSwell:    "swell",
	ShaperOddEven:  "oddeven",
}

// String returns the short mode name.
func (m ShaperMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("ShaperMode(%d)", int(m))
	}

	return shaperModeNames[m]
}

// Valid reports whether m names a known shaper.
func (m ShaperMode) Valid() bool {
	return m >= ShaperOff && m <= ShaperOddEven
}

// ParseShaperMode parses a shaper name or its numeric selector.
func ParseShaperMode(s string) (ShaperMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range shaperModeNames {
		if s == name || s == fmt.Sprint(i) {
			return ShaperMode(i), nil
		}
	}

	return 0, fmt.Errorf("shaper mode is invalid: %q", s)
}

// ShaperModes lists every shaper in selector order.
func ShaperModes() []ShaperMode {
	return []ShaperMode{
		ShaperOff, ShaperSoftClip, ShaperHardClip, ShaperInflator,
		ShaperTapeTube, ShaperSwell, ShaperOddEven,
	}
}

// ShaperControls holds the per-sample controls of the shaping stage.
// GatedSoftClip restricts the soft clipper to samples above full scale.
type ShaperControls struct {
	Mode          ShaperMode
	Drive         float32
	Curve         float32
	Bias          float32
	GatedSoftClip bool
}

// Shape applies the transfer function selected by c.Mode to x.
// ShaperOff and unknown modes pass x through.
func Shape(x float32, c ShaperControls) float32 {
	switch c.Mode {
	case ShaperSoftClip:
		if c.GatedSoftClip {
			return SoftClipGated(x, c.Drive)
		}

		return SoftClip(x, c.Drive)
	case ShaperHardClip:
		return HardClip(x)
	case ShaperInflator:
		return Inflator(x, c.Curve)
	case ShaperTapeTube:
		return TapeTube(x, c.Drive, c.Curve, c.Bias)
	case ShaperSwell:
		return Swell(x, c.Drive, c.Curve)
	case ShaperOddEven:
		return OddEven(x, c.Drive, c.Curve)
	default:
		return x
	}
}

// ShapeMix blends the shaped signal with x: (1-mix)*x + mix*Shape(x, c).
func ShapeMix(x float32, c ShaperControls, mix float32) float32 {
	if mix == 0 || c.Mode == ShaperOff {
		return x
	}

	return (1-mix)*x + mix*Shape(x, c)
}

// SoftClip returns tanh(drive*x).
func SoftClip(x, drive float32) float32 {
	return float32(mathTanh(float64(drive * x)))
}

// SoftClipGated returns tanh(drive*x) for |x| > 1 and x otherwise.
func SoftClipGated(x, drive float32) float32 {
	if x > 1 || x < -1 {
		return SoftClip(x, drive)
	}

	return x
}

// HardClip limits x to [-1, 1].
func HardClip(x float32) float32 {
	if x < -1 {
		return -1
	}

	if x > 1 {
		return 1
	}

	return x
}

// Inflator is the 4th-order polynomial shaper. curve is nominally in
// [-50, 50]; 0 gives A=1.5, B=0, C=-0.5, D=1/16.
func Inflator(x, curve float32) float32 {
	c := float64(curve)
	a := 1 + (c+50)/100
	b := -c / 50
	cc := (c - 50) / 100
	d := 1.0/16 - c/400 + c*c/40000

	v := float64(x)
	v2 := v * v
	v3 := v2 * v
	v4 := v2 * v2

	return float32(a*v + b*v2 + cc*v3 - (d*v2 - 2*v3 + v4))
}

// TapeTube blends an arctangent tape curve with an exponential tube curve.
// curve 0 is all tape, 1 is all tube. The tube term is not odd-symmetric,
// so it adds even harmonics and DC.
func TapeTube(x, drive, curve, bias float32) float32 {
	v := float64(x)
	dr := float64(drive)
	b := float64(bias)

	tape := 2 / math.Pi * mathAtan(dr*v+b)

	sign := 1.0
	if v < 0 {
		sign = -1
	}

	tube := 1 - mathExp(-math.Abs(v)*(dr+3.7*b*sign))

	cv := float64(curve)

	return float32((1-cv)*tape + cv*tube)
}

// OddEven blends tanh(drive*x), rich in odd harmonics, with its square,
// which only carries even harmonics. curve 0 is all odd, 1 is all even.
func OddEven(x, drive, curve float32) float32 {
	odd := mathTanh(float64(drive * x))
	even := odd * odd
	cv := float64(curve)

	return float32((1-cv)*odd + cv*even)
}

// Swell returns ((1+drive)*x) / (1 + |drive*x|^curve).
// It is unbounded for curve near 0.
func Swell(x, drive, curve float32) float32 {
	v := float64(x)
	dr := float64(drive)

	den := 1 + mathPow(math.Abs(dr*v), float64(curve))

	return float32((1 + dr) * v / den)
}

package smooth

import "math"

// DefaultRampSeconds is the ramp duration used for gain-like parameters.
const DefaultRampSeconds = 0.05

// Curve selects how a Ramp travels from current to target.
type Curve int

const (
	// Linear moves by a constant increment per sample.
	Linear Curve = iota
	// Multiplicative moves by a constant factor per sample. It needs strictly
	// positive values and falls back to a jump otherwise.
	Multiplicative
)

// Ramp reaches a new target in a fixed number of samples and snaps onto it
// at the last step.
type Ramp struct {
	curve     Curve
	current   float64
	target    float64
	step      float64
	steps     int
	countdown int
}

// NewRamp returns a ramp using curve. It must be Reset before use.
func NewRamp(curve Curve) *Ramp {
	return &Ramp{curve: curve}
}

// Reset sets the ramp length to floor(rampSeconds*sampleRate) samples and
// stops any ramp in progress at its target.
func (r *Ramp) Reset(sampleRate, rampSeconds float64) {
	r.steps = 0
	if sampleRate > 0 && rampSeconds > 0 {
		r.steps = int(math.Floor(rampSeconds * sampleRate))
	}

	r.current = r.target
	r.countdown = 0
}

// SetCurrentAndTarget jumps to v.
func (r *Ramp) SetCurrentAndTarget(v float64) {
	r.current = v
	r.target = v
	r.countdown = 0
}

// SetTarget starts a ramp from the current value to v.
func (r *Ramp) SetTarget(v float64) {
	if v == r.target {
		return
	}

	r.target = v
	if r.steps <= 0 {
		r.SetCurrentAndTarget(v)
		return
	}

	switch r.curve {
	case Multiplicative:
		if r.current <= 0 || v <= 0 {
			r.SetCurrentAndTarget(v)
			return
		}

		r.step = math.Exp(math.Log(v/r.current) / float64(r.steps))
	default:
		r.step = (v - r.current) / float64(r.steps)
	}

	r.countdown = r.steps
}

// Next advances one sample and returns the new current value.
func (r *Ramp) Next() float64 {
	if r.countdown <= 0 {
		return r.current
	}

	r.countdown--
	if r.countdown == 0 {
		r.current = r.target
		return r.current
	}

	if r.curve == Multiplicative {
		r.current *= r.step
	} else {
		r.current += r.step
	}

	return r.current
}

// skip advances n samples at once.
func (r *Ramp) skip(n int) float64 {
	if n >= r.countdown {
		r.current = r.target
		r.countdown = 0

		return r.current
	}

	for ; n > 0; n-- {
		r.Next()
	}

	return r.current
}

// Current returns the value reached by the last Next.
func (r *Ramp) Current() float64 { return r.current }

// Target returns the value being ramped to.
func (r *Ramp) Target() float64 { return r.target }

// IsSmoothing reports whether a ramp is in progress.
func (r *Ramp) IsSmoothing() bool { return r.countdown > 0 }

// Steps returns the ramp length in samples.
func (r *Ramp) Steps() int { return r.steps }

package smooth

import "math"

// DefaultDelayTimeConstant is the one-pole time constant for delay time.
const DefaultDelayTimeConstant = 0.2

// OnePole follows its target with current += (target-current)*coeff.
// It approaches the target asymptotically and does not snap.
type OnePole struct {
	coeff   float64
	current float64
	target  float64
}

// Reset computes coeff = 1 - exp(-1/(timeConstant*sampleRate)) and clears
// the state, so the next SetTarget initialises the smoother.
// A non-positive time constant makes the smoother follow its target instantly.
func (p *OnePole) Reset(sampleRate, timeConstant float64) {
	p.coeff = 1
	if sampleRate > 0 && timeConstant > 0 {
		p.coeff = 1 - math.Exp(-1/(timeConstant*sampleRate))
	}

	p.current = 0
	p.target = 0
}

// SetTarget sets the value to follow. While the current value is still zero
// the smoother jumps straight to v.
func (p *OnePole) SetTarget(v float64) {
	if p.current == 0 {
		p.current = v
	}

	p.target = v
}

// SetCurrentAndTarget jumps to v.
func (p *OnePole) SetCurrentAndTarget(v float64) {
	p.current = v
	p.target = v
}

// Next advances one sample and returns the new current value.
func (p *OnePole) Next() float64 {
	p.current += (p.target - p.current) * p.coeff
	return p.current
}

// Current returns the value reached by the last Next.
func (p *OnePole) Current() float64 { return p.current }

// Target returns the followed value.
func (p *OnePole) Target() float64 { return p.target }

// Coefficient returns the per-sample smoothing coefficient.
func (p *OnePole) Coefficient() float64 { return p.coeff }

// Package transition implements the crossfade that moves a delay read tap
// from one delay time to another without a click.
package transition

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-clipdelay/dsp/interp"
)

const (
	// DefaultSeconds is the crossfade length used by the delay processor.
	DefaultSeconds = 0.05
	// Epsilon is the smallest delay change in samples that starts a crossfade.
	Epsilon = 0.01
)

// ErrInvalidConfig is returned by Prepare for a non-positive rate or duration.
var ErrInvalidConfig = errors.New("transition: sample rate and duration must be > 0")

// Reader reads a delay line at a fractional delay.
type Reader interface {
	Read(delay float64, mode interp.Mode) float32
}

// Crossfade is the per-channel transition state. Progress is 0 while idle.
// A crossfade runs to completion; targets set meanwhile are ignored and the
// next idle Retarget picks up whatever the caller wants at that point.
type Crossfade struct {
	increment float64
	progress  float64
	current   float64
	target    float64
	primed    bool
}

// Prepare sets the crossfade length and resets the state.
func (c *Crossfade) Prepare(sampleRate, seconds float64) error {
	if !(sampleRate > 0) || !(seconds > 0) || math.IsInf(sampleRate, 0) || math.IsInf(seconds, 0) {
		return fmt.Errorf("%w: rate=%f duration=%f", ErrInvalidConfig, sampleRate, seconds)
	}

	c.increment = 1 / (seconds * sampleRate)
	if c.increment > 1 {
		c.increment = 1
	}

	c.Reset()

	return nil
}

// Reset returns to idle. The next Retarget adopts its target directly.
func (c *Crossfade) Reset() {
	c.progress = 0
	c.current = 0
	c.target = 0
	c.primed = false
}

// SetCurrent stops any crossfade and holds delay. Later Retarget calls fade
// away from it.
func (c *Crossfade) SetCurrent(delay float64) {
	c.progress = 0
	c.current = delay
	c.target = delay
	c.primed = true
}

// Retarget requests a new delay in samples and reports whether a crossfade
// started. It does nothing while a crossfade is running.
func (c *Crossfade) Retarget(target float64) bool {
	if c.progress > 0 {
		return false
	}

	c.target = target
	if !c.primed {
		c.current = target
		c.primed = true

		return false
	}

	if math.Abs(target-c.current) <= Epsilon {
		return false
	}

	c.progress = c.increment

	return true
}

// Process reads r at the current delay and, while crossfading, blends in the
// read at the target delay with the same kernel. It then advances progress.
func (c *Crossfade) Process(r Reader, mode interp.Mode) float32 {
	old := r.Read(c.current, mode)
	if c.progress == 0 {
		return old
	}

	next := r.Read(c.target, mode)
	p := float32(c.progress)
	out := (1-p)*old + p*next

	c.progress += c.increment
	if c.progress >= 1 {
		c.current = c.target
		c.progress = 0
	}

	return out
}

// Active reports whether a crossfade is running.
func (c *Crossfade) Active() bool { return c.progress > 0 }

// Progress returns the blend weight of the next Process call, 0 when idle.
func (c *Crossfade) Progress() float64 { return c.progress }

// Current returns the delay in samples being faded out, or held while idle.
func (c *Crossfade) Current() float64 { return c.current }

// Target returns the delay in samples being faded in.
func (c *Crossfade) Target() float64 { return c.target }

// Increment returns the per-sample progress step.
func (c *Crossfade) Increment() float64 { return c.increment }

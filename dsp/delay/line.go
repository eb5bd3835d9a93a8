package delay

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-clipdelay/dsp/interp"
	"github.com/cwbudde/algo-clipdelay/internal/assert"
)

// GuardSamples is the headroom added to the requested maximum delay so that
// every interpolation kernel can read its outer taps without a second wrap.
const GuardSamples = 4

// ErrInvalidMaxDelay is returned when a non-positive maximum delay is requested.
var ErrInvalidMaxDelay = errors.New("delay: maximum delay must be > 0")

// Line is a single-channel circular delay buffer with fractional reads.
// Integer delay D addresses the sample written D writes ago, so delay 0 is
// the most recent sample.
type Line struct {
	buffer     []float32
	writeIndex int
}

// New returns a line able to delay by up to maxDelaySamples.
func New(maxDelaySamples int) (*Line, error) {
	l := &Line{}
	if err := l.SetMaximumDelay(maxDelaySamples); err != nil {
		return nil, err
	}

	return l, nil
}

// SetMaximumDelay grows the buffer when maxDelaySamples no longer fits.
// Growing discards the history. The buffer never shrinks.
func (l *Line) SetMaximumDelay(maxDelaySamples int) error {
	if maxDelaySamples <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxDelay, maxDelaySamples)
	}

	need := maxDelaySamples + GuardSamples
	if need <= len(l.buffer) {
		return nil
	}

	l.buffer = make([]float32, need)
	l.writeIndex = need - 1

	return nil
}

// Capacity returns the buffer length in samples.
func (l *Line) Capacity() int {
	return len(l.buffer)
}

// MaxDelay returns the largest delay the line was sized for.
func (l *Line) MaxDelay() int {
	return len(l.buffer) - GuardSamples
}

// Reset zeroes the history. The next write lands at index 0.
func (l *Line) Reset() {
	clear(l.buffer)
	l.writeIndex = len(l.buffer) - 1
}

// Write advances the cursor and stores x.
func (l *Line) Write(x float32) {
	l.writeIndex++
	if l.writeIndex >= len(l.buffer) {
		l.writeIndex = 0
	}

	l.buffer[l.writeIndex] = x
}

// Read returns the sample delay samples in the past, interpolated with mode.
// The caller keeps delay within [mode.MinDelay(), Capacity()-mode.GuardSamples()].
func (l *Line) Read(delay float64, mode interp.Mode) float32 {
	size := len(l.buffer)
	assert.DelayInRange(delay, mode.MinDelay(), float64(size-mode.GuardSamples()))

	whole := int(delay)
	t := float32(delay - float64(whole))

	base := l.writeIndex - whole
	if base < 0 {
		base += size
	}

	x0 := l.buffer[base]
	x1 := l.buffer[l.wrap(base-1)]

	switch mode {
	case interp.Linear:
		return interp.Linear2(t, x0, x1)
	case interp.Cubic:
		return interp.Cubic4(t, l.buffer[l.wrap(base+1)], x0, x1, l.buffer[l.wrap(base-2)])
	case interp.Hermite:
		return interp.Hermite4(t, l.buffer[l.wrap(base+1)], x0, x1, l.buffer[l.wrap(base-2)])
	default:
		return interp.Lagrange4(t, l.buffer[l.wrap(base+1)], x0, x1, l.buffer[l.wrap(base-2)])
	}
}

// at returns the sample at integer delay without interpolation.
func (l *Line) at(delay int) float32 {
	assert.DelayInRange(float64(delay), 0, float64(len(l.buffer)-1))

	return l.buffer[l.wrap(l.writeIndex-delay)]
}

func (l *Line) wrap(i int) int {
	size := len(l.buffer)
	if i < 0 {
		return i + size
	}

	if i >= size {
		return i - size
	}

	return i
}

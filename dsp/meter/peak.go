// Package meter publishes per-channel peak levels from the audio thread to
// a display that polls at its own rate.
package meter

import (
	"math"
	"sync/atomic"
)

// Peak is a lock-free peak watermark. The audio thread raises it with
// UpdateIfGreater; the reader collects it with ReadAndReset.
// The zero value is ready to use.
type Peak struct {
	bits atomic.Uint32
}

// Reset sets the watermark to zero.
func (p *Peak) Reset() {
	p.bits.Store(0)
}

// UpdateIfGreater raises the watermark to v when v exceeds it.
func (p *Peak) UpdateIfGreater(v float32) {
	next := math.Float32bits(v)
	for {
		old := p.bits.Load()
		if !(v > math.Float32frombits(old)) {
			return
		}

		if p.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// ReadAndReset returns the watermark and sets it to zero.
func (p *Peak) ReadAndReset() float32 {
	return math.Float32frombits(p.bits.Swap(0))
}

// Load returns the watermark without resetting it.
func (p *Peak) Load() float32 {
	return math.Float32frombits(p.bits.Load())
}

// MaxAbs returns the largest absolute value in buf.
func MaxAbs(buf []float32) float32 {
	var peak float32

	for _, v := range buf {
		if v < 0 {
			v = -v
		}

		if v > peak {
			peak = v
		}
	}

	return peak
}

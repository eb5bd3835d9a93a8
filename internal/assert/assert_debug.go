//go:build debug

package assert

import (
	"fmt"
	"log/slog"
	"math"
)

// Enabled reports whether precondition checks are compiled in.
const Enabled = true

// guardLimit is the largest absolute sample the output guard lets through.
const guardLimit = 2.0

// That panics with a formatted message when cond is false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}

// DelayInRange panics when delay is outside [lo, hi].
func DelayInRange(delay, lo, hi float64) {
	if math.IsNaN(delay) || delay < lo || delay > hi {
		panic(fmt.Sprintf("assert: delay %g samples outside [%g, %g]", delay, lo, hi))
	}
}

// Channel panics when ch is not a valid index for n channels.
func Channel(ch, n int) {
	if ch < 0 || ch >= n {
		panic(fmt.Sprintf("assert: channel %d out of range [0, %d)", ch, n))
	}
}

// GuardOutput silences buf when it holds a non-finite sample or one whose
// magnitude exceeds guardLimit. It reports whether the block was muted.
func GuardOutput(name string, buf []float32) bool {
	for i, s := range buf {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > guardLimit {
			slog.Warn("output guard muted block",
				"channel", name, "index", i, "sample", v, "frames", len(buf))
			clear(buf)

			return true
		}
	}

	return false
}

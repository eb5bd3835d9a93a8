package thd

import (
	"fmt"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/signal"
	"github.com/cwbudde/algo-clipdelay/dsp/window"
)

// ShaperFunc is a memoryless transfer function.
type ShaperFunc func(x float32) float32

// ProfileConfig describes the test tone used by ProfileShaper.
type ProfileConfig struct {
	SampleRate     float64
	FFTSize        int
	FundamentalBin int // the tone sits exactly on this bin
	Amplitude      float64
}

// DefaultProfileConfig returns a 0 dBFS tone of about 750 Hz at 48 kHz.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		SampleRate:     48000,
		FFTSize:        4096,
		FundamentalBin: 64,
		Amplitude:      1,
	}
}

// Frequency returns the test tone frequency in Hz.
func (p ProfileConfig) Frequency() float64 {
	return float64(p.FundamentalBin) * p.SampleRate / float64(p.FFTSize)
}

// ProfileShaper drives fn with a bin-centred sine and measures the
// harmonics it adds up to Nyquist.
func ProfileShaper(fn ShaperFunc, cfg ProfileConfig) (Result, error) {
	if fn == nil {
		return Result{}, fmt.Errorf("thd: shaper must not be nil")
	}

	if cfg.FFTSize <= 0 || cfg.FundamentalBin <= 0 || 2*cfg.FundamentalBin >= cfg.FFTSize {
		return Result{}, fmt.Errorf("thd: fundamental bin %d invalid for FFT size %d", cfg.FundamentalBin, cfg.FFTSize)
	}

	gen := signal.NewGenerator(core.WithSampleRate(cfg.SampleRate), core.WithBlockSize(cfg.FFTSize))

	tone, err := gen.Sine(cfg.Frequency(), cfg.Amplitude, cfg.FFTSize)
	if err != nil {
		return Result{}, fmt.Errorf("thd: %w", err)
	}

	for i, x := range tone {
		tone[i] = fn(x)
	}

	return AnalyzeSignal(signal.ToFloat64(tone), Config{
		SampleRate:      cfg.SampleRate,
		FFTSize:         cfg.FFTSize,
		FundamentalFreq: cfg.Frequency(),
		RangeUpperFreq:  cfg.SampleRate / 2,
		WindowType:      window.TypeBlackmanHarris4Term,
	})
}

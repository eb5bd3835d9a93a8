package svf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-clipdelay/internal/assert"
)

const (
	defaultSampleRate = 48000.0
	defaultCutoffHz   = 1000.0

	// maxCutoffRatio keeps the cutoff below Nyquist where tan() diverges.
	maxCutoffRatio = 0.49
	minCutoffHz    = 1.0
)

// DefaultResonance is the Butterworth Q.
var DefaultResonance = 1 / math.Sqrt2

// Type selects the filter response.
type Type int

const (
	Lowpass Type = iota
	Highpass
	Bandpass
)

func (t Type) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return "unknown"
	}
}

// Filter is a 2-pole TPT state-variable filter.
type Filter struct {
	typ        Type
	sampleRate float64
	cutoffHz   float64
	resonance  float64

	g, k       float64
	a1, a2, a3 float64

	ic1eq []float64
	ic2eq []float64
}

// New returns a filter of the given type for channels channels at 48 kHz.
func New(typ Type, channels int) (*Filter, error) {
	if typ < Lowpass || typ > Bandpass {
		return nil, fmt.Errorf("svf: invalid type: %d", typ)
	}

	f := &Filter{
		typ:        typ,
		sampleRate: defaultSampleRate,
		cutoffHz:   defaultCutoffHz,
		resonance:  DefaultResonance,
	}

	if err := f.Prepare(defaultSampleRate, channels); err != nil {
		return nil, err
	}

	return f, nil
}

// Prepare sets the sample rate and channel count, then clears the state.
// It allocates and must not run on the audio thread.
func (f *Filter) Prepare(sampleRate float64, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("svf: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if channels <= 0 {
		return fmt.Errorf("svf: channels must be > 0: %d", channels)
	}

	f.sampleRate = sampleRate
	if len(f.ic1eq) != channels {
		f.ic1eq = make([]float64, channels)
		f.ic2eq = make([]float64, channels)
	}

	f.Reset()
	f.update()

	return nil
}

// Reset clears the integrator state of every channel.
func (f *Filter) Reset() {
	clear(f.ic1eq)
	clear(f.ic2eq)
}

// SetCutoffFrequency sets the cutoff in Hz, clamped below Nyquist.
func (f *Filter) SetCutoffFrequency(hz float64) {
	if math.IsNaN(hz) {
		return
	}

	f.cutoffHz = hz
	f.update()
}

// SetResonance sets the filter Q.
func (f *Filter) SetResonance(q float64) error {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return fmt.Errorf("svf: resonance must be > 0 and finite: %f", q)
	}

	f.resonance = q
	f.update()

	return nil
}

// ProcessSample filters x with the state of channel ch.
func (f *Filter) ProcessSample(ch int, x float32) float32 {
	assert.Channel(ch, len(f.ic1eq))

	in := float64(x)
	ic1 := f.ic1eq[ch]
	ic2 := f.ic2eq[ch]

	v3 := in - ic2
	v1 := f.a1*ic1 + f.a2*v3
	v2 := ic2 + f.a2*ic1 + f.a3*v3

	f.ic1eq[ch] = 2*v1 - ic1
	f.ic2eq[ch] = 2*v2 - ic2

	switch f.typ {
	case Highpass:
		return float32(in - f.k*v1 - v2)
	case Bandpass:
		return float32(v1)
	default:
		return float32(v2)
	}
}

// ProcessInPlace filters buf with the state of channel ch.
func (f *Filter) ProcessInPlace(ch int, buf []float32) {
	for i := range buf {
		buf[i] = f.ProcessSample(ch, buf[i])
	}
}

// Type returns the filter response.
func (f *Filter) Type() Type { return f.typ }

// CutoffFrequency returns the cutoff in Hz as last requested.
func (f *Filter) CutoffFrequency() float64 { return f.cutoffHz }

// Resonance returns the filter Q.
func (f *Filter) Resonance() float64 { return f.resonance }

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// Channels returns the number of state channels.
func (f *Filter) Channels() int { return len(f.ic1eq) }

func (f *Filter) update() {
	hz := f.cutoffHz
	if hz < minCutoffHz {
		hz = minCutoffHz
	}

	if limit := maxCutoffRatio * f.sampleRate; hz > limit {
		hz = limit
	}

	f.g = math.Tan(math.Pi * hz / f.sampleRate)
	f.k = 1 / f.resonance
	f.a1 = 1 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
}

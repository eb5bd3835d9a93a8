package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/delay"
	"github.com/cwbudde/algo-clipdelay/dsp/filter/svf"
	"github.com/cwbudde/algo-clipdelay/dsp/meter"
	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/cwbudde/algo-clipdelay/dsp/smooth"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
	"github.com/cwbudde/algo-clipdelay/dsp/transition"
	"github.com/cwbudde/algo-clipdelay/internal/assert"
)

const (
	defaultDelayMaxMs = params.MaxDelayTimeMs

	// Delay times after spread are clamped to this range in ms.
	minReadDelayMs = 1.0

	maxDelayMaxMs     = 60000.0
	maxRampSeconds    = 1.0
	maxTimeConstant   = 5.0
	maxCrossfadeSecs  = 1.0
	tailDecayDB       = -60.0
	numDelayChannels  = 2
	outputClipperGain = 1.0
)

// DelayOption mutates construction-time parameters.
type DelayOption func(*delayConfig) error

type delayConfig struct {
	maxDelayMs       float64
	rampSeconds      float64
	timeConstant     float64
	crossfadeSeconds float64
}

func defaultDelayConfig() delayConfig {
	return delayConfig{
		maxDelayMs:       defaultDelayMaxMs,
		rampSeconds:      smooth.DefaultRampSeconds,
		timeConstant:     smooth.DefaultDelayTimeConstant,
		crossfadeSeconds: transition.DefaultSeconds,
	}
}

// WithMaxDelayMs sets the longest delay the lines can hold, in ms.
func WithMaxDelayMs(ms float64) DelayOption {
	return func(cfg *delayConfig) error {
		if ms < params.MinDelayTimeMs || ms > maxDelayMaxMs || math.IsNaN(ms) {
			return fmt.Errorf("delay max time must be in [%g, %g] ms: %f",
				params.MinDelayTimeMs, maxDelayMaxMs, ms)
		}

		cfg.maxDelayMs = ms

		return nil
	}
}

// WithRampSeconds sets the smoothing time of gain-like controls.
// Zero applies changes at block boundaries without a ramp.
func WithRampSeconds(seconds float64) DelayOption {
	return func(cfg *delayConfig) error {
		if seconds < 0 || seconds > maxRampSeconds || math.IsNaN(seconds) {
			return fmt.Errorf("delay ramp time must be in [0, %g] s: %f", maxRampSeconds, seconds)
		}

		cfg.rampSeconds = seconds

		return nil
	}
}

// WithDelayTimeConstant sets the one-pole time constant of the varispeed
// glide in seconds. Zero makes the read tap jump.
func WithDelayTimeConstant(seconds float64) DelayOption {
	return func(cfg *delayConfig) error {
		if seconds < 0 || seconds > maxTimeConstant || math.IsNaN(seconds) {
			return fmt.Errorf("delay time constant must be in [0, %g] s: %f", maxTimeConstant, seconds)
		}

		cfg.timeConstant = seconds

		return nil
	}
}

// WithCrossfadeSeconds sets the crossfade length used in crossfade mode.
func WithCrossfadeSeconds(seconds float64) DelayOption {
	return func(cfg *delayConfig) error {
		if !(seconds > 0) || seconds > maxCrossfadeSecs {
			return fmt.Errorf("delay crossfade time must be in (0, %g] s: %f", maxCrossfadeSecs, seconds)
		}

		cfg.crossfadeSeconds = seconds

		return nil
	}
}

// slotRamps smooths the controls of the active effect slot.
type slotRamps struct {
	drive, curve, bias, mix *smooth.Ramp
}

// Delay is the stereo clip delay: two fractional delay lines with feedback,
// an effect slot and tone filters in the feedback path, dry/wet mix, an
// output clipper and output gain.
//
// Prepare must be called before ProcessBlock. ProcessBlock does not allocate
// and must only be called from one goroutine. Levels may be read from any
// goroutine.
type Delay struct {
	cfg delayConfig

	sampleRate float64
	blockSize  int
	prepared   bool
	primed     bool

	lines [numDelayChannels]*delay.Line
	xfade [numDelayChannels]transition.Crossfade

	// Base delay time in ms, before spread.
	timeMs smooth.OnePole

	gain     *smooth.Ramp
	mix      *smooth.Ramp
	feedback *smooth.Ramp
	spread   *smooth.Ramp
	stereo   *smooth.Ramp
	lowCut   *smooth.Ramp
	highCut  *smooth.Ramp
	slot     slotRamps

	lowCutHz  float64
	highCutHz float64
	lowCutF   *svf.Filter
	highCutF  *svf.Filter

	fb       [numDelayChannels]float32
	tap      [numDelayChannels]float64 // last varispeed read delay in samples
	mode     params.DelayMode
	tempo    *tempo.Tempo
	levels   [numDelayChannels]meter.Peak
	lastSnap params.Snapshot
}

// NewDelay creates an unprepared delay processor.
func NewDelay(opts ...DelayOption) (*Delay, error) {
	cfg := defaultDelayConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	lowCut, err := svf.New(svf.Highpass, numDelayChannels)
	if err != nil {
		return nil, err
	}

	highCut, err := svf.New(svf.Lowpass, numDelayChannels)
	if err != nil {
		return nil, err
	}

	return &Delay{
		cfg:      cfg,
		gain:     smooth.NewRamp(smooth.Linear),
		mix:      smooth.NewRamp(smooth.Linear),
		feedback: smooth.NewRamp(smooth.Linear),
		spread:   smooth.NewRamp(smooth.Linear),
		stereo:   smooth.NewRamp(smooth.Linear),
		lowCut:   smooth.NewRamp(smooth.Multiplicative),
		highCut:  smooth.NewRamp(smooth.Multiplicative),
		slot: slotRamps{
			drive: smooth.NewRamp(smooth.Linear),
			curve: smooth.NewRamp(smooth.Linear),
			bias:  smooth.NewRamp(smooth.Linear),
			mix:   smooth.NewRamp(smooth.Linear),
		},
		lowCutF:  lowCut,
		highCutF: highCut,
		tempo:    tempo.New(),
		lastSnap: params.Defaults(),
	}, nil
}

// Prepare sizes the delay lines for cfg.SampleRate and resets all state.
// It allocates and must not run on the audio thread.
func (d *Delay) Prepare(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("delay: %w", err)
	}

	maxSamples := int(math.Ceil(core.MillisecondsToSamples(d.cfg.maxDelayMs, cfg.SampleRate))) + 1

	for ch := range d.lines {
		if d.lines[ch] == nil {
			line, err := delay.New(maxSamples)
			if err != nil {
				return fmt.Errorf("delay: %w", err)
			}

			d.lines[ch] = line

			continue
		}

		if err := d.lines[ch].SetMaximumDelay(maxSamples); err != nil {
			return fmt.Errorf("delay: %w", err)
		}
	}

	for ch := range d.xfade {
		if err := d.xfade[ch].Prepare(cfg.SampleRate, d.cfg.crossfadeSeconds); err != nil {
			return fmt.Errorf("delay: %w", err)
		}
	}

	if err := d.lowCutF.Prepare(cfg.SampleRate, numDelayChannels); err != nil {
		return fmt.Errorf("delay: %w", err)
	}

	if err := d.highCutF.Prepare(cfg.SampleRate, numDelayChannels); err != nil {
		return fmt.Errorf("delay: %w", err)
	}

	d.sampleRate = cfg.SampleRate
	d.blockSize = cfg.BlockSize
	d.prepared = true

	for _, r := range d.ramps() {
		r.Reset(cfg.SampleRate, d.cfg.rampSeconds)
	}

	d.Reset()

	return nil
}

// Reset clears the delay history, the feedback and filter state, running
// crossfades, the tempo and the meters. The next block adopts its snapshot
// without smoothing.
func (d *Delay) Reset() {
	for ch := range d.lines {
		if d.lines[ch] != nil {
			d.lines[ch].Reset()
		}

		d.xfade[ch].Reset()
		d.fb[ch] = 0
		d.tap[ch] = 0
		d.levels[ch].Reset()
	}

	d.timeMs.Reset(d.sampleRate, d.cfg.timeConstant)
	d.lowCutF.Reset()
	d.highCutF.Reset()
	d.tempo.Reset()

	d.lowCutHz = 0
	d.highCutHz = 0
	d.primed = false
}

// ProcessBlock processes one block. in and out hold one (mono) or two
// (left, right) channels; the frame count is the shortest channel. Mono
// input feeds both delay lines and mono output takes the left channel.
// A nil snap uses the defaults; a nil transport falls back to 120 BPM.
func (d *Delay) ProcessBlock(in, out [][]float32, snap *params.Snapshot, transport tempo.Transport) {
	if !d.prepared || len(in) == 0 || len(out) == 0 {
		return
	}

	n := len(in[0])
	for _, ch := range in {
		n = min(n, len(ch))
	}

	for _, ch := range out {
		n = min(n, len(ch))
	}

	s := params.Defaults()
	if snap != nil {
		s = *snap
		s.Sanitize()
	}

	d.beginBlock(&s, transport)

	inL, inR := in[0], in[0]
	if len(in) > 1 {
		inR = in[1]
	}

	outL := out[0]

	var outR []float32
	if len(out) > 1 {
		outR = out[1]
	}

	var peakL, peakR float32

	for i := range n {
		l, r := d.processFrame(inL[i], inR[i], &s)

		if s.Bypass {
			l, r = inL[i], inR[i]
		}

		outL[i] = l
		if outR != nil {
			outR[i] = r
		}

		peakL = max(peakL, float32(math.Abs(float64(l))))
		peakR = max(peakR, float32(math.Abs(float64(r))))
	}

	for ch := range out {
		assert.GuardOutput("clipdelay", out[ch][:n])
	}

	d.levels[0].UpdateIfGreater(peakL)
	d.levels[1].UpdateIfGreater(peakR)

	d.lastSnap = s
}

// beginBlock moves the block-rate state to the targets of s.
func (d *Delay) beginBlock(s *params.Snapshot, transport tempo.Transport) {
	d.tempo.Update(transport)

	timeMs := s.EffectiveDelayMs(d.tempo)
	slot := s.Slots[s.FX]

	targets := [...]struct {
		r *smooth.Ramp
		v float64
	}{
		{d.gain, core.DBToLinear(s.GainDB)},
		{d.mix, core.PercentToUnit(s.Mix)},
		{d.feedback, core.PercentToUnit(s.Feedback)},
		{d.spread, s.SpreadMs},
		{d.stereo, core.PercentToUnit(s.Stereo)},
		{d.lowCut, s.LowCutHz},
		{d.highCut, s.HighCutHz},
		{d.slot.drive, slot.Drive},
		{d.slot.curve, slot.Curve},
		{d.slot.bias, slot.Bias},
		{d.slot.mix, core.PercentToUnit(slot.Mix)},
	}

	if !d.primed {
		for _, t := range targets {
			t.r.SetCurrentAndTarget(t.v)
		}

		d.timeMs.SetCurrentAndTarget(timeMs)
		d.mode = s.DelayMode
		d.primed = true

		return
	}

	for _, t := range targets {
		t.r.SetTarget(t.v)
	}

	d.timeMs.SetTarget(timeMs)
}

// switchMode hands the read taps between the glide and the crossfades
// without moving them. A switch to varispeed waits for running crossfades
// to finish.
func (d *Delay) switchMode(mode params.DelayMode) {
	if mode == d.mode {
		return
	}

	if mode == params.Crossfade {
		for ch := range d.xfade {
			if d.tap[ch] > 0 {
				d.xfade[ch].SetCurrent(d.tap[ch])
			} else {
				d.xfade[ch].Reset()
			}
		}

		d.mode = mode

		return
	}

	for ch := range d.xfade {
		if d.xfade[ch].Active() {
			return
		}
	}

	// Spread is symmetric, so the mean of the taps is the base delay.
	samples := (d.xfade[0].Current() + d.xfade[1].Current()) / 2
	target := d.timeMs.Target()

	d.timeMs.SetCurrentAndTarget(samples * 1000 / d.sampleRate)
	d.timeMs.SetTarget(target)
	d.mode = mode
}

// processFrame runs one stereo frame through the delay path and returns the
// output before bypass.
func (d *Delay) processFrame(dryL, dryR float32, s *params.Snapshot) (float32, float32) {
	gain := d.gain.Next()
	mix := float32(d.mix.Next())
	fbAmount := float32(d.feedback.Next())
	spread := d.spread.Next()
	stereo := d.stereo.Next()

	d.switchMode(s.DelayMode)

	ms := d.timeMs.Next()
	msL := core.Clamp(ms+spread, minReadDelayMs, d.cfg.maxDelayMs)
	msR := core.Clamp(ms-spread, minReadDelayMs, d.cfg.maxDelayMs)

	if hz := d.lowCut.Next(); hz != d.lowCutHz {
		d.lowCutF.SetCutoffFrequency(hz)
		d.lowCutHz = hz
	}

	if hz := d.highCut.Next(); hz != d.highCutHz {
		d.highCutF.SetCutoffFrequency(hz)
		d.highCutHz = hz
	}

	controls := ShaperControls{
		Mode:  fxShaper(s.FX),
		Drive: float32(d.slot.drive.Next()),
		Curve: float32(d.slot.curve.Next()),
		Bias:  float32(d.slot.bias.Next()),
	}
	fxMix := float32(d.slot.mix.Next())

	// Write
	if s.PingPong {
		panL, panR := core.PanEqualPower(stereo)
		d.lines[0].Write(dryL*float32(panL) + d.fb[1])
		d.lines[1].Write(dryR*float32(panR) + d.fb[0])
	} else {
		d.lines[0].Write(dryL + d.fb[0])
		d.lines[1].Write(dryR + d.fb[1])
	}

	// Read, shape and feed back
	wetL := d.readChannel(0, msL, s)
	wetR := d.readChannel(1, msR, s)

	wetL = ShapeMix(wetL, controls, fxMix)
	wetR = ShapeMix(wetR, controls, fxMix)

	d.fb[0] = d.filterFeedback(0, wetL*fbAmount)
	d.fb[1] = d.filterFeedback(1, wetR*fbAmount)

	// Mix, clip and gain
	l := dryL*(1-mix) + wetL*mix
	r := dryR*(1-mix) + wetR*mix

	l = clipOutput(l, s.Clipper)
	r = clipOutput(r, s.Clipper)

	return l * float32(gain), r * float32(gain)
}

func (d *Delay) readChannel(ch int, ms float64, s *params.Snapshot) float32 {
	line := d.lines[ch]
	samples := core.Clamp(core.MillisecondsToSamples(ms, d.sampleRate),
		s.Quality.MinDelay(), float64(line.MaxDelay()))

	if d.mode == params.Crossfade {
		d.xfade[ch].Retarget(samples)
		return d.xfade[ch].Process(line, s.Quality)
	}

	d.tap[ch] = samples

	return line.Read(samples, s.Quality)
}

func (d *Delay) filterFeedback(ch int, x float32) float32 {
	x = d.lowCutF.ProcessSample(ch, x)
	x = d.highCutF.ProcessSample(ch, x)

	return core.FlushDenormals(x)
}

func (d *Delay) ramps() []*smooth.Ramp {
	return []*smooth.Ramp{
		d.gain, d.mix, d.feedback, d.spread, d.stereo, d.lowCut, d.highCut,
		d.slot.drive, d.slot.curve, d.slot.bias, d.slot.mix,
	}
}

func fxShaper(fx params.FX) ShaperMode {
	switch fx {
	case params.FXSoftClip:
		return ShaperSoftClip
	case params.FXHardClip:
		return ShaperHardClip
	case params.FXInflator:
		return ShaperInflator
	case params.FXTapeTube:
		return ShaperTapeTube
	case params.FXSwell:
		return ShaperSwell
	case params.FXOddEven:
		return ShaperOddEven
	default:
		return ShaperOff
	}
}

func clipOutput(x float32, c params.Clipper) float32 {
	switch c {
	case params.ClipperSoft:
		return SoftClip(x, outputClipperGain)
	case params.ClipperHard:
		return HardClip(x)
	default:
		return x
	}
}

// Levels returns the left and right output peak meters.
func (d *Delay) Levels() (left, right *meter.Peak) {
	return &d.levels[0], &d.levels[1]
}

// TailSeconds estimates how long the output rings after the input stops,
// from the controls of the last block: the repeats needed for the feedback
// to decay by 60 dB. It is +Inf at full feedback.
func (d *Delay) TailSeconds() float64 {
	s := d.lastSnap
	longest := (s.EffectiveDelayMs(d.tempo) + math.Abs(s.SpreadMs)) * 0.001

	fb := math.Abs(core.PercentToUnit(s.Feedback))
	if fb >= 1 {
		return math.Inf(1)
	}

	if fb == 0 {
		return longest
	}

	repeats := math.Ceil(tailDecayDB / core.LinearToDB(fb))

	return longest * (1 + repeats)
}

// SampleRate returns the rate of the last Prepare, 0 before.
func (d *Delay) SampleRate() float64 { return d.sampleRate }

// BlockSize returns the block size of the last Prepare.
func (d *Delay) BlockSize() int { return d.blockSize }

// MaxDelaySamples returns the longest delay the lines can read, 0 before
// Prepare.
func (d *Delay) MaxDelaySamples() int {
	if d.lines[0] == nil {
		return 0
	}

	return d.lines[0].MaxDelay()
}

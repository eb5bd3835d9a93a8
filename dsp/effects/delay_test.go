package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/cwbudde/algo-clipdelay/dsp/signal"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
	"github.com/cwbudde/algo-clipdelay/internal/testutil"
)

const (
	testSampleRate = 48000.0
	testBlockSize  = 256
)

func newPreparedDelay(tb testing.TB, opts ...DelayOption) *Delay {
	tb.Helper()

	d, err := NewDelay(opts...)
	if err != nil {
		tb.Fatalf("NewDelay: %v", err)
	}

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(testSampleRate), core.WithBlockSize(testBlockSize))
	if err := d.Prepare(cfg); err != nil {
		tb.Fatalf("Prepare: %v", err)
	}

	return d
}

// runBlocks processes in block-wise, asking snapAt for the snapshot of each
// block by its first frame.
func runBlocks(d *Delay, in [][]float32, snapAt func(frame int) *params.Snapshot, tr tempo.Transport) [][]float32 {
	frames := len(in[0])
	out := make([][]float32, len(in))

	for c := range out {
		out[c] = make([]float32, frames)
	}

	inB := make([][]float32, len(in))
	outB := make([][]float32, len(out))

	for start := 0; start < frames; start += testBlockSize {
		end := min(start+testBlockSize, frames)

		for c := range in {
			inB[c] = in[c][start:end]
			outB[c] = out[c][start:end]
		}

		d.ProcessBlock(inB, outB, snapAt(start), tr)
	}

	return out
}

func constant(s params.Snapshot) func(int) *params.Snapshot {
	return func(int) *params.Snapshot { return &s }
}

func wetOnly() params.Snapshot {
	s := params.Defaults()
	s.Mix = 100
	s.Feedback = 0

	return s
}

func leftImpulse(frames int) [][]float32 {
	in := testutil.Stereo(frames)
	in[0][0] = 1

	return in
}

func TestNewDelayOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     DelayOption
		wantErr bool
	}{
		{name: "max delay", opt: WithMaxDelayMs(2000)},
		{name: "max delay too small", opt: WithMaxDelayMs(1), wantErr: true},
		{name: "max delay too large", opt: WithMaxDelayMs(120000), wantErr: true},
		{name: "ramp zero", opt: WithRampSeconds(0)},
		{name: "ramp negative", opt: WithRampSeconds(-0.1), wantErr: true},
		{name: "time constant", opt: WithDelayTimeConstant(0.05)},
		{name: "time constant nan", opt: WithDelayTimeConstant(math.NaN()), wantErr: true},
		{name: "crossfade", opt: WithCrossfadeSeconds(0.02)},
		{name: "crossfade zero", opt: WithCrossfadeSeconds(0), wantErr: true},
		{name: "nil option", opt: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDelay(tt.opt)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDelay() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDelayPrepare(t *testing.T) {
	d, err := NewDelay()
	if err != nil {
		t.Fatalf("NewDelay: %v", err)
	}

	if d.MaxDelaySamples() != 0 {
		t.Fatalf("MaxDelaySamples before Prepare = %d", d.MaxDelaySamples())
	}

	if err := d.Prepare(core.ProcessorConfig{}); err == nil {
		t.Fatal("expected error for zero config")
	}

	// Unprepared processors leave the output untouched.
	out := [][]float32{{7, 7}}
	d.ProcessBlock([][]float32{{1, 1}}, out, nil, nil)

	if out[0][0] != 7 {
		t.Fatalf("unprepared ProcessBlock wrote %v", out[0][0])
	}

	if err := d.Prepare(core.DefaultProcessorConfig()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if got := d.MaxDelaySamples(); got != 240001 {
		t.Fatalf("MaxDelaySamples = %d, want 240001", got)
	}

	if d.SampleRate() != 48000 || d.BlockSize() != 1024 {
		t.Fatalf("config not stored: %v %v", d.SampleRate(), d.BlockSize())
	}
}

func TestDelayEchoesBurst(t *testing.T) {
	const frames = 9600

	g := signal.NewGenerator(core.WithSampleRate(testSampleRate))

	burst, err := g.SineBurst(1000, core.DBToLinear(-6), 0, 480, frames)
	if err != nil {
		t.Fatalf("SineBurst: %v", err)
	}

	right := make([]float32, frames)
	copy(right, burst)

	d := newPreparedDelay(t)
	out := runBlocks(d, [][]float32{burst, right}, constant(wetOnly()), nil)

	want := testutil.Delayed(burst, 4800)
	testutil.RequireSliceNearlyEqual(t, out[0], want, 1e-6)
	testutil.RequireSliceNearlyEqual(t, out[1], want, 1e-6)
}

func TestDelayBypassIsIdentity(t *testing.T) {
	const frames = 4096

	g := signal.NewGeneratorWithOptions(nil, signal.WithSeed(7))

	noise, err := g.WhiteNoise(0.8, frames)
	if err != nil {
		t.Fatalf("WhiteNoise: %v", err)
	}

	s := params.Defaults()
	s.Bypass = true
	s.Feedback = 70
	s.Clipper = params.ClipperHard
	s.GainDB = 9

	t.Run("stereo", func(t *testing.T) {
		left := noise
		right := make([]float32, frames)

		for i, v := range noise {
			right[i] = -v
		}

		d := newPreparedDelay(t)
		out := runBlocks(d, [][]float32{left, right}, constant(s), nil)

		for i := range frames {
			if out[0][i] != left[i] || out[1][i] != right[i] {
				t.Fatalf("frame %d: got %v/%v want %v/%v", i, out[0][i], out[1][i], left[i], right[i])
			}
		}
	})

	t.Run("mono", func(t *testing.T) {
		d := newPreparedDelay(t)
		out := runBlocks(d, [][]float32{noise}, constant(s), nil)

		for i := range frames {
			if out[0][i] != noise[i] {
				t.Fatalf("frame %d: got %v want %v", i, out[0][i], noise[i])
			}
		}
	})
}

func TestDelayMonoTakesLeftChannel(t *testing.T) {
	const frames = 8192

	g := signal.NewGeneratorWithOptions(nil, signal.WithSeed(3))

	noise, err := g.WhiteNoise(0.5, frames)
	if err != nil {
		t.Fatalf("WhiteNoise: %v", err)
	}

	s := params.Defaults()
	s.SpreadMs = 12
	s.Feedback = 40

	mono := runBlocks(newPreparedDelay(t), [][]float32{noise}, constant(s), nil)
	stereo := runBlocks(newPreparedDelay(t), [][]float32{noise, noise}, constant(s), nil)

	testutil.RequireSliceNearlyEqual(t, mono[0], stereo[0], 0)

	diff, err := testutil.MaxAbsDiff(stereo[0], stereo[1])
	if err != nil || diff == 0 {
		t.Fatalf("spread should make the channels differ: %v, %v", diff, err)
	}
}

func TestDelaySpread(t *testing.T) {
	const frames = 6000

	in := testutil.Stereo(frames)
	in[0][0], in[1][0] = 1, 1

	s := wetOnly()
	s.SpreadMs = 10

	out := runBlocks(newPreparedDelay(t), in, constant(s), nil)

	if out[0][5280] != 1 || testutil.PeakIn(out[0], 0, 5280) != 0 {
		t.Fatalf("left echo not at 110 ms")
	}

	if out[1][4320] != 1 || testutil.PeakIn(out[1], 0, 4320) != 0 {
		t.Fatalf("right echo not at 90 ms")
	}
}

func TestDelayFeedbackDecays(t *testing.T) {
	const frames = 15000

	s := wetOnly()
	s.Feedback = 50

	out := runBlocks(newPreparedDelay(t), leftImpulse(frames), constant(s), nil)

	first := testutil.PeakIn(out[0], 4790, 4900)
	second := testutil.PeakIn(out[0], 9590, 9800)
	third := testutil.PeakIn(out[0], 14390, 14600)

	if first != 1 {
		t.Fatalf("first echo = %v, want 1", first)
	}

	if !(second > 0.1 && second < 0.5) {
		t.Fatalf("second echo = %v, want in (0.1, 0.5)", second)
	}

	if !(third > 0 && third < second) {
		t.Fatalf("third echo = %v, want in (0, %v)", third, second)
	}

	if testutil.PeakIn(out[1], 0, frames) != 0 {
		t.Fatal("feedback leaked into the right channel")
	}
}

func TestDelayPingPongCrossesChannels(t *testing.T) {
	const frames = 16000

	s := wetOnly()
	s.Feedback = 50
	s.PingPong = true
	s.Stereo = -100

	out := runBlocks(newPreparedDelay(t), leftImpulse(frames), constant(s), nil)

	if out[0][4800] != 1 {
		t.Fatalf("left echo = %v, want 1", out[0][4800])
	}

	if peak := testutil.PeakIn(out[1], 0, 9600); peak != 0 {
		t.Fatalf("right channel before the bounce = %v, want 0", peak)
	}

	if peak := testutil.PeakIn(out[1], 9600, 9700); peak < 0.1 {
		t.Fatalf("bounce into right channel = %v, want > 0.1", peak)
	}

	if peak := testutil.PeakIn(out[0], 4801, 14400); peak != 0 {
		t.Fatalf("left channel between bounces = %v, want 0", peak)
	}

	if peak := testutil.PeakIn(out[0], 14400, 14600); peak == 0 {
		t.Fatal("second bounce missing from the left channel")
	}
}

func TestDelayCrossfadeModeIsClickFree(t *testing.T) {
	const (
		frames = 30000
		slope  = 1e-5
	)

	ramp := testutil.LinearRamp(slope, frames)
	in := [][]float32{ramp, ramp}

	before := wetOnly()
	before.DelayMode = params.Crossfade
	after := before
	after.DelayTimeMs = 150

	snapAt := func(frame int) *params.Snapshot {
		if frame < 12000 {
			return &before
		}

		return &after
	}

	// A short time constant lets the chain of crossfades reach the new
	// delay well before the end of the run.
	out := runBlocks(newPreparedDelay(t, WithDelayTimeConstant(0.01)), in, snapAt, nil)

	if step := testutil.MaxStep(out[0]); step > 1e-4 {
		t.Fatalf("max step = %v, want <= 1e-4", step)
	}

	want := testutil.Delayed(ramp, 7200)
	testutil.RequireSliceNearlyEqual(t, out[0][20000:], want[20000:], 1e-5)
}

func TestDelayCrossfadeFollowsSmoothedTime(t *testing.T) {
	before := wetOnly()
	before.DelayMode = params.Crossfade
	after := before
	after.DelayTimeMs = 500

	snapAt := func(frame int) *params.Snapshot {
		if frame < 4800 {
			return &before
		}

		return &after
	}

	d := newPreparedDelay(t)
	runBlocks(d, testutil.Stereo(4800+testBlockSize), snapAt, nil)

	// One block after the change the fade heads for where the glide was,
	// not for the final 500 ms.
	smoothed := core.MillisecondsToSamples(d.timeMs.Current(), testSampleRate)
	if got := d.xfade[0].Target(); got <= 4800 || got > smoothed {
		t.Fatalf("crossfade target = %v, want in (4800, %v]", got, smoothed)
	}

	if !d.xfade[0].Active() {
		t.Fatal("no crossfade running after the change")
	}
}

func TestDelayModeSwitchIsClickFree(t *testing.T) {
	const (
		frames   = 48000
		change   = 12000
		switchAt = 24000
	)

	g := signal.NewGenerator(core.WithSampleRate(testSampleRate))

	sine, err := g.Sine(220, 0.5, frames)
	if err != nil {
		t.Fatal(err)
	}

	// Largest step of the dry sine.
	slope := 2 * math.Pi * 220 / testSampleRate * 0.5

	for _, tt := range []struct {
		name     string
		from, to params.DelayMode
	}{
		{"to crossfade", params.Varispeed, params.Crossfade},
		{"to varispeed", params.Crossfade, params.Varispeed},
	} {
		t.Run(tt.name, func(t *testing.T) {
			start := wetOnly()
			start.DelayMode = tt.from
			gliding := start
			gliding.DelayTimeMs = 500
			switched := gliding
			switched.DelayMode = tt.to

			snapAt := func(frame int) *params.Snapshot {
				switch {
				case frame < change:
					return &start
				case frame < switchAt:
					return &gliding
				default:
					return &switched
				}
			}

			out := runBlocks(newPreparedDelay(t), [][]float32{sine, sine}, snapAt, nil)

			if step := testutil.MaxStep(out[0][switchAt-testBlockSize : switchAt+4800]); step > 1.4*slope {
				t.Fatalf("max step across the switch = %v, want <= %v", step, 1.4*slope)
			}

			if step := testutil.MaxStep(out[0][4800:]); step > 1.4*slope {
				t.Fatalf("max step = %v, want <= %v", step, 1.4*slope)
			}
		})
	}
}

func TestDelayStereoPansPingPongOnly(t *testing.T) {
	const frames = 6000

	for _, tt := range []struct {
		name     string
		pingPong bool
		stereo   float64
		want     float64
	}{
		{"straight center", false, 0, 1},
		{"straight right", false, 100, 1},
		{"ping-pong left", true, -100, 1},
		{"ping-pong center", true, 0, math.Sqrt2 / 2},
		{"ping-pong right", true, 100, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s := wetOnly()
			s.PingPong = tt.pingPong
			s.Stereo = tt.stereo

			out := runBlocks(newPreparedDelay(t), leftImpulse(frames), constant(s), nil)

			if got := float64(out[0][4800]); math.Abs(got-tt.want) > 1e-5 {
				t.Fatalf("left echo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelayVarispeedGlides(t *testing.T) {
	const (
		frames = 24000
		slope  = 1e-5
	)

	ramp := testutil.LinearRamp(slope, frames)

	before := wetOnly()
	after := before
	after.DelayTimeMs = 150

	snapAt := func(frame int) *params.Snapshot {
		if frame < 12000 {
			return &before
		}

		return &after
	}

	out := runBlocks(newPreparedDelay(t), [][]float32{ramp, ramp}, snapAt, nil)

	if step := testutil.MaxStep(out[0]); step > 1e-4 {
		t.Fatalf("max step = %v, want <= 1e-4", step)
	}

	// Halfway through the glide the tap sits between the two delays.
	got := out[0][20000]
	if !(got < ramp[20000-4800]-1e-4 && got > ramp[20000-7200]+1e-4) {
		t.Fatalf("out[20000] = %v, want between %v and %v", got, ramp[20000-7200], ramp[20000-4800])
	}
}

func TestDelayJumpWithoutGlideClicks(t *testing.T) {
	const frames = 16000

	ramp := testutil.LinearRamp(1e-5, frames)

	before := wetOnly()
	after := before
	after.DelayTimeMs = 150

	snapAt := func(frame int) *params.Snapshot {
		if frame < 12000 {
			return &before
		}

		return &after
	}

	d := newPreparedDelay(t, WithDelayTimeConstant(0))
	out := runBlocks(d, [][]float32{ramp, ramp}, snapAt, nil)

	if step := testutil.MaxStep(out[0]); step < 0.02 {
		t.Fatalf("max step = %v, expected a jump of about 0.024", step)
	}
}

func TestDelayTempoSync(t *testing.T) {
	const frames = 16000

	s := wetOnly()
	s.TempoSync = true
	s.DelayNote = 6 // 1/8

	tests := []struct {
		name  string
		tr    tempo.Transport
		frame int
	}{
		{name: "host tempo", tr: tempo.FixedTransport(100), frame: 14400},
		{name: "no tempo", tr: tempo.FixedTransport(0), frame: 12000},
		{name: "nil transport", tr: nil, frame: 12000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runBlocks(newPreparedDelay(t), leftImpulse(frames), constant(s), tt.tr)

			if out[0][tt.frame] != 1 {
				t.Fatalf("out[%d] = %v, want 1", tt.frame, out[0][tt.frame])
			}

			if peak := testutil.PeakIn(out[0], 0, tt.frame); peak != 0 {
				t.Fatalf("early output %v", peak)
			}
		})
	}
}

func TestDelayOutputClipperAndGain(t *testing.T) {
	tests := []struct {
		name    string
		clipper params.Clipper
		gainDB  float64
		want    float64
	}{
		{name: "off", clipper: params.ClipperOff, want: 2},
		{name: "hard", clipper: params.ClipperHard, want: 1},
		{name: "soft", clipper: params.ClipperSoft, want: math.Tanh(2)},
		{name: "hard plus gain", clipper: params.ClipperHard, gainDB: 6, want: core.DBToLinear(6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := params.Defaults()
			s.Mix = 0
			s.Clipper = tt.clipper
			s.GainDB = tt.gainDB

			in := testutil.DC(2, 512)
			out := runBlocks(newPreparedDelay(t), [][]float32{in}, constant(s), nil)

			if got := float64(out[0][511]); math.Abs(got-tt.want) > 1e-5 {
				t.Fatalf("out = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelayEffectSlotShapesRepeats(t *testing.T) {
	const frames = 6000

	tests := []struct {
		fx   params.FX
		slot params.FXSlot
		x    float32
		want ShaperControls
	}{
		{params.FXOff, params.FXSlot{Drive: 3, Mix: 100}, 1.5, ShaperControls{Mode: ShaperOff}},
		{params.FXSoftClip, params.FXSlot{Drive: 2, Mix: 100}, 1.5, ShaperControls{Mode: ShaperSoftClip, Drive: 2}},
		{params.FXHardClip, params.FXSlot{Drive: 1, Mix: 100}, 1.5, ShaperControls{Mode: ShaperHardClip, Drive: 1}},
		{params.FXInflator, params.FXSlot{Drive: 1, Curve: -20, Mix: 100}, 0.6, ShaperControls{Mode: ShaperInflator, Drive: 1, Curve: -20}},
		{params.FXTapeTube, params.FXSlot{Drive: 2, Curve: 0.5, Bias: 0.1, Mix: 100}, 0.5, ShaperControls{Mode: ShaperTapeTube, Drive: 2, Curve: 0.5, Bias: 0.1}},
		{params.FXSwell, params.FXSlot{Drive: 1, Curve: 2, Mix: 100}, 0.5, ShaperControls{Mode: ShaperSwell, Drive: 1, Curve: 2}},
		{params.FXOddEven, params.FXSlot{Drive: 1, Curve: 0.3, Mix: 100}, 0.5, ShaperControls{Mode: ShaperOddEven, Drive: 1, Curve: 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.fx.String(), func(t *testing.T) {
			in := testutil.Stereo(frames)
			in[0][0] = tt.x

			s := wetOnly()
			s.FX = tt.fx
			s.Slots[tt.fx] = tt.slot

			out := runBlocks(newPreparedDelay(t), in, constant(s), nil)

			want := Shape(tt.x, tt.want)
			if got := out[0][4800]; math.Abs(float64(got-want)) > 1e-6 {
				t.Fatalf("shaped echo = %v, want %v", got, want)
			}

			if tt.fx != params.FXOff && want == tt.x {
				t.Fatalf("%v leaves %v unchanged", tt.fx, tt.x)
			}
		})
	}
}

func TestDelayLevels(t *testing.T) {
	d := newPreparedDelay(t)

	s := params.Defaults()
	s.Mix = 0

	in := [][]float32{testutil.DC(0.5, 128), testutil.DC(-0.25, 128)}
	runBlocks(d, in, constant(s), nil)

	left, right := d.Levels()
	if left.Load() != 0.5 || right.Load() != 0.25 {
		t.Fatalf("levels = %v/%v, want 0.5/0.25", left.Load(), right.Load())
	}

	if left.ReadAndReset() != 0.5 || left.Load() != 0 {
		t.Fatal("ReadAndReset did not clear the left meter")
	}

	d.Reset()

	if right.Load() != 0 {
		t.Fatal("Reset did not clear the right meter")
	}
}

func TestDelayResetClearsHistory(t *testing.T) {
	const frames = 6000

	d := newPreparedDelay(t)
	s := wetOnly()
	s.Feedback = 80

	runBlocks(d, leftImpulse(frames), constant(s), nil)
	d.Reset()

	out := runBlocks(d, testutil.Stereo(frames), constant(s), nil)
	if peak := testutil.PeakIn(out[0], 0, frames); peak != 0 {
		t.Fatalf("output after Reset = %v, want silence", peak)
	}
}

func TestDelayTailSeconds(t *testing.T) {
	d := newPreparedDelay(t)

	tests := []struct {
		name     string
		feedback float64
		want     float64
	}{
		{name: "no feedback", feedback: 0, want: 0.1},
		{name: "half feedback", feedback: -50, want: 1.1},
		{name: "full feedback", feedback: 100, want: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := params.Defaults()
			s.Feedback = tt.feedback
			runBlocks(d, testutil.Stereo(64), constant(s), nil)

			if got := d.TailSeconds(); math.Abs(got-tt.want) > 1e-9 && got != tt.want {
				t.Fatalf("TailSeconds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelayProcessBlockDoesNotAllocate(t *testing.T) {
	d := newPreparedDelay(t)
	s := params.Defaults()
	s.Feedback = 60
	s.PingPong = true
	s.DelayMode = params.Crossfade

	in := testutil.Stereo(testBlockSize)
	out := testutil.Stereo(testBlockSize)
	var tr tempo.Transport = tempo.FixedTransport(128)

	allocs := testing.AllocsPerRun(20, func() {
		s.DelayTimeMs += 7
		d.ProcessBlock(in, out, &s, tr)
	})

	if allocs != 0 {
		t.Fatalf("ProcessBlock allocated %v times per run", allocs)
	}
}

func BenchmarkDelayProcessBlock(b *testing.B) {
	d := newPreparedDelay(b)
	s := params.Defaults()
	s.Feedback = 50
	s.Slots[s.FX].Mix = 50

	in := testutil.Stereo(testBlockSize)
	out := testutil.Stereo(testBlockSize)

	for i := range in[0] {
		in[0][i] = float32(i%64) / 64
		in[1][i] = -in[0][i]
	}

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		d.ProcessBlock(in, out, &s, nil)
	}
}

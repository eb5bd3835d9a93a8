package main

import (
	"errors"
	"flag"
	"math"
	"strconv"

	"github.com/cwbudde/algo-clipdelay/dsp/interp"
	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
)

var errBitDepth = errors.New("bit depth must be 16 or 24")

// paramFlags binds the delay controls to a flag set. The slot flags apply
// to whichever slot -fx selects, so they are resolved after parsing.
type paramFlags struct {
	snap params.Snapshot
	bpm  float64

	drive, curve, bias, fxMix float64
}

func registerParamFlags(fs *flag.FlagSet) *paramFlags {
	p := &paramFlags{
		snap:  params.Defaults(),
		drive: math.NaN(),
		curve: math.NaN(),
		bias:  math.NaN(),
		fxMix: math.NaN(),
	}
	s := &p.snap

	fs.Func("time", `delay time, e.g. "250ms" or "1.5s" (default "100ms")`, setter(&s.DelayTimeMs, params.ParseMilliseconds))
	fs.Func("mix", "wet mix in percent (default 40)", setter(&s.Mix, params.ParsePercent))
	fs.Func("feedback", "feedback in percent, negative inverts (default 0)", setter(&s.Feedback, params.ParsePercent))
	fs.Float64Var(&s.SpreadMs, "spread", s.SpreadMs, "stereo spread in ms, added left and subtracted right")
	fs.Func("stereo", "input panning in ping-pong mode, percent (default 0)", setter(&s.Stereo, params.ParsePercent))
	fs.Func("lowcut", `feedback high-pass cutoff, e.g. "120" or "0.2k" (default 20)`, setter(&s.LowCutHz, params.ParseHz))
	fs.Func("highcut", `feedback low-pass cutoff, e.g. "6.5k" (default 20k)`, setter(&s.HighCutHz, params.ParseHz))
	fs.BoolVar(&s.TempoSync, "sync", s.TempoSync, "derive the delay time from -note and the tempo")
	fs.Func("note", `tempo-sync note length, e.g. "1/8 dot" (default "1/4")`, setter(&s.DelayNote, tempo.ParseNote))
	fs.Func("mode", "delay time change mode: varispeed|crossfade (default varispeed)", setter(&s.DelayMode, params.ParseDelayMode))
	fs.Func("quality", "interpolation: linear|lagrange|cubic|hermite (default lagrange)", setter(&s.Quality, interp.ParseMode))
	fs.Func("fx", "effect slot: off|soft|hard|inflator|tapetube|swell|oddeven (default tapetube)", setter(&s.FX, params.ParseFX))
	fs.Float64Var(&p.drive, "drive", p.drive, "drive of the selected effect slot [0, 20]")
	fs.Float64Var(&p.curve, "curve", p.curve, "curve of the selected effect slot")
	fs.Float64Var(&p.bias, "bias", p.bias, "bias of the selected effect slot [-1, 1]")
	fs.Func("fxmix", "mix of the selected effect slot in percent (default 0)", setter(&p.fxMix, params.ParsePercent))
	fs.Func("clipper", "output clipper: off|soft|hard (default off)", setter(&s.Clipper, params.ParseClipper))
	fs.Func("gain", `output gain, e.g. "-3dB" (default 0)`, setter(&s.GainDB, params.ParseDecibels))
	fs.BoolVar(&s.PingPong, "pingpong", s.PingPong, "cross the feedback between channels")
	fs.BoolVar(&s.Bypass, "bypass", s.Bypass, "pass the input through")
	fs.Float64Var(&p.bpm, "bpm", 0, "host tempo for -sync; 0 falls back to 120")

	return p
}

// Snapshot returns the parsed controls, sanitised.
func (p *paramFlags) Snapshot() params.Snapshot {
	s := p.snap
	slot := &s.Slots[s.FX]

	for _, f := range []struct {
		v   float64
		dst *float64
	}{
		{p.drive, &slot.Drive},
		{p.curve, &slot.Curve},
		{p.bias, &slot.Bias},
		{p.fxMix, &slot.Mix},
	} {
		if !math.IsNaN(f.v) {
			*f.dst = f.v
		}
	}

	s.Sanitize()

	return s
}

// Transport returns the tempo source for the processor.
func (p *paramFlags) Transport() tempo.Transport {
	return tempo.FixedTransport(p.bpm)
}

// setter adapts a parse function to flag.FlagSet.Func. dst is left alone
// when parsing fails.
func setter[T any](dst *T, parse func(string) (T, error)) func(string) error {
	return func(v string) error {
		x, err := parse(v)
		if err != nil {
			return err
		}

		*dst = x

		return nil
	}
}

func parseBitDepth(v string) (int, error) {
	bits, err := strconv.Atoi(v)
	if err != nil || (bits != 16 && bits != 24) {
		return 0, errBitDepth
	}

	return bits, nil
}

package params

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-clipdelay/dsp/interp"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
)

// Control ranges.
const (
	MinDelayTimeMs = 5.0
	MaxDelayTimeMs = 5000.0
	MinCutoffHz    = 20.0
	MaxCutoffHz    = 20000.0
	MaxSpreadMs    = 100.0
	MaxGainDB      = 12.0
	MaxFXDrive     = 20.0
	MinSwellCurve  = 0.1
	MaxSwellCurve  = 10.0
	MaxInflator    = 50.0
)

// DelayMode selects how the read tap follows a delay-time change.
type DelayMode int

const (
	// Varispeed glides the read tap, bending pitch while it moves.
	Varispeed DelayMode = iota
	// Crossfade blends from the old tap to the new one.
	Crossfade
)

func (m DelayMode) String() string {
	switch m {
	case Varispeed:
		return "varispeed"
	case Crossfade:
		return "crossfade"
	default:
		return fmt.Sprintf("DelayMode(%d)", int(m))
	}
}

// ParseDelayMode parses "varispeed" or "crossfade".
func ParseDelayMode(s string) (DelayMode, error) {
	switch s {
	case "varispeed", "0":
		return Varispeed, nil
	case "crossfade", "xfade", "1":
		return Crossfade, nil
	default:
		return 0, fmt.Errorf("params: unknown delay mode: %q", s)
	}
}

// FX selects the shaper in the effect slot of the delay path. The order
// follows the host's distortion selector.
type FX int

const (
	FXOff FX = iota
	FXSoftClip
	FXHardClip
	FXInflator
	FXTapeTube
	FXSwell
	FXOddEven
	NumFX
)

var fxNames = [NumFX]string{"off", "soft", "hard", "inflator", "tapetube", "swell", "oddeven"}

func (f FX) String() string {
	if f < 0 || f >= NumFX {
		return fmt.Sprintf("FX(%d)", int(f))
	}

	return fxNames[f]
}

// ParseFX parses an effect slot name.
func ParseFX(s string) (FX, error) {
	for i, name := range fxNames {
		if s == name || s == fmt.Sprint(i) {
			return FX(i), nil
		}
	}

	return 0, fmt.Errorf("params: unknown fx: %q", s)
}

// CurveRange returns the bounds of the slot's Curve control.
func (f FX) CurveRange() (lo, hi float64) {
	switch f {
	case FXInflator:
		return -MaxInflator, MaxInflator
	case FXSwell:
		return MinSwellCurve, MaxSwellCurve
	default:
		return 0, 1
	}
}

// Clipper selects the output clipper.
type Clipper int

const (
	ClipperOff Clipper = iota
	ClipperSoft
	ClipperHard
)

func (c Clipper) String() string {
	switch c {
	case ClipperOff:
		return "off"
	case ClipperSoft:
		return "soft"
	case ClipperHard:
		return "hard"
	default:
		return fmt.Sprintf("Clipper(%d)", int(c))
	}
}

// ParseClipper parses "off", "soft" or "hard".
func ParseClipper(s string) (Clipper, error) {
	switch s {
	case "off", "0":
		return ClipperOff, nil
	case "soft", "1":
		return ClipperSoft, nil
	case "hard", "2":
		return ClipperHard, nil
	default:
		return 0, fmt.Errorf("params: unknown clipper: %q", s)
	}
}

// FXSlot holds the controls of one effect slot. Curve is the exponent of
// the swell slot, the polynomial control of the inflator slot in [-50, 50],
// and 0..1 everywhere else.
type FXSlot struct {
	Drive float64 // [0, 20]
	Curve float64
	Bias  float64 // [-1, 1]
	Mix   float64 // percent, [0, 100]
}

// Snapshot is the complete set of controls for one block.
type Snapshot struct {
	DelayTimeMs float64 // [5, 5000]
	Mix         float64 // percent, [0, 100]
	Feedback    float64 // percent, [-100, 100]; negative inverts polarity
	SpreadMs    float64 // [-100, 100]; added to the left, subtracted from the right
	Stereo      float64 // percent, [-100, 100]; input panning, ping-pong mode only
	LowCutHz    float64 // [20, 20000]
	HighCutHz   float64 // [20, 20000]
	TempoSync   bool
	DelayNote   int // [0, 15]
	Bypass      bool
	DelayMode   DelayMode
	Quality     interp.Mode
	FX          FX
	Slots       [NumFX]FXSlot
	Clipper     Clipper
	GainDB      float64 // [-12, 12]
	PingPong    bool
}

// Defaults returns the initial control values.
func Defaults() Snapshot {
	return Snapshot{
		DelayTimeMs: 100,
		Mix:         40,
		LowCutHz:    MinCutoffHz,
		HighCutHz:   MaxCutoffHz,
		DelayNote:   tempo.DefaultNote,
		DelayMode:   Varispeed,
		Quality:     interp.DefaultMode,
		FX:          FXTapeTube,
		Slots: [NumFX]FXSlot{
			FXSoftClip: {Drive: 1},
			FXHardClip: {Drive: 1},
			FXInflator: {Drive: 1},
			FXTapeTube: {Drive: 1, Curve: 0.5},
			FXSwell:    {Drive: 1, Curve: 2},
			FXOddEven:  {Drive: 1, Curve: 0.5},
		},
		Clipper: ClipperOff,
	}
}

// Sanitize clamps every control into its range. NaN values fall back to
// the default.
func (s *Snapshot) Sanitize() {
	def := Defaults()

	s.DelayTimeMs = clamp(s.DelayTimeMs, MinDelayTimeMs, MaxDelayTimeMs, def.DelayTimeMs)
	s.Mix = clamp(s.Mix, 0, 100, def.Mix)
	s.Feedback = clamp(s.Feedback, -100, 100, def.Feedback)
	s.SpreadMs = clamp(s.SpreadMs, -MaxSpreadMs, MaxSpreadMs, def.SpreadMs)
	s.Stereo = clamp(s.Stereo, -100, 100, def.Stereo)
	s.LowCutHz = clamp(s.LowCutHz, MinCutoffHz, MaxCutoffHz, def.LowCutHz)
	s.HighCutHz = clamp(s.HighCutHz, MinCutoffHz, MaxCutoffHz, def.HighCutHz)
	s.GainDB = clamp(s.GainDB, -MaxGainDB, MaxGainDB, def.GainDB)

	if s.DelayNote < 0 {
		s.DelayNote = 0
	} else if s.DelayNote >= tempo.NumNotes {
		s.DelayNote = tempo.NumNotes - 1
	}

	if s.DelayMode != Varispeed && s.DelayMode != Crossfade {
		s.DelayMode = def.DelayMode
	}

	if !s.Quality.Valid() {
		s.Quality = def.Quality
	}

	if s.FX < 0 || s.FX >= NumFX {
		s.FX = def.FX
	}

	if s.Clipper < ClipperOff || s.Clipper > ClipperHard {
		s.Clipper = def.Clipper
	}

	for i := range s.Slots {
		slot := &s.Slots[i]
		d := def.Slots[i]

		slot.Drive = clamp(slot.Drive, 0, MaxFXDrive, d.Drive)
		slot.Bias = clamp(slot.Bias, -1, 1, d.Bias)
		slot.Mix = clamp(slot.Mix, 0, 100, d.Mix)

		lo, hi := FX(i).CurveRange()
		slot.Curve = clamp(slot.Curve, lo, hi, d.Curve)
	}
}

// EffectiveDelayMs returns the delay time before spread. With tempo sync on
// it is the note length at the tempo of t, capped at MaxDelayTimeMs.
func (s *Snapshot) EffectiveDelayMs(t *tempo.Tempo) float64 {
	if !s.TempoSync || t == nil {
		return s.DelayTimeMs
	}

	return math.Min(t.MillisecondsForNoteLength(s.DelayNote), MaxDelayTimeMs)
}

func clamp(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}

	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

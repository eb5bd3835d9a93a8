package effects

import (
	"fmt"
	"math"
)

const (
	defaultDistortionDrive = 1.0
	defaultDistortionMix   = 1.0
	defaultDistortionCurve = 0.0
	defaultDistortionBias  = 0.0

	minDistortionDrive = 0.0
	maxDistortionDrive = 20.0
	minDistortionCurve = -50.0
	maxDistortionCurve = 50.0
)

// DistortionOption mutates construction-time parameters.
type DistortionOption func(*distortionConfig) error

type distortionConfig struct {
	mode  ShaperMode
	drive float64
	curve float64
	bias  float64
	mix   float64
	gated bool
}

func defaultDistortionConfig() distortionConfig {
	return distortionConfig{
		mode:  ShaperSoftClip,
		drive: defaultDistortionDrive,
		curve: defaultDistortionCurve,
		bias:  defaultDistortionBias,
		mix:   defaultDistortionMix,
	}
}

// WithDistortionMode selects the shaper.
func WithDistortionMode(mode ShaperMode) DistortionOption {
	return func(cfg *distortionConfig) error {
		if !mode.Valid() {
			return fmt.Errorf("distortion mode is invalid: %d", mode)
		}

		cfg.mode = mode

		return nil
	}
}

// WithDistortionDrive sets input drive in [0, 20].
func WithDistortionDrive(drive float64) DistortionOption {
	return func(cfg *distortionConfig) error {
		if err := validateDrive(drive); err != nil {
			return err
		}

		cfg.drive = drive

		return nil
	}
}

// WithDistortionCurve sets the shape control in [-50, 50].
func WithDistortionCurve(curve float64) DistortionOption {
	return func(cfg *distortionConfig) error {
		if err := validateCurve(curve); err != nil {
			return err
		}

		cfg.curve = curve

		return nil
	}
}

// WithDistortionBias sets the bias in [-1, 1].
func WithDistortionBias(bias float64) DistortionOption {
	return func(cfg *distortionConfig) error {
		if err := validateBias(bias); err != nil {
			return err
		}

		cfg.bias = bias

		return nil
	}
}

// WithDistortionMix sets dry/wet mix in [0, 1].
func WithDistortionMix(mix float64) DistortionOption {
	return func(cfg *distortionConfig) error {
		if err := validateMix(mix); err != nil {
			return err
		}

		cfg.mix = mix

		return nil
	}
}

// WithGatedSoftClip limits the soft clipper to samples above full scale.
func WithGatedSoftClip(enabled bool) DistortionOption {
	return func(cfg *distortionConfig) error {
		cfg.gated = enabled
		return nil
	}
}

// Distortion is a stateless waveshaping stage with a dry/wet blend.
type Distortion struct {
	controls ShaperControls
	mix      float32
}

// NewDistortion creates a distortion stage with validated options.
func NewDistortion(opts ...DistortionOption) (*Distortion, error) {
	cfg := defaultDistortionConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	return &Distortion{
		controls: ShaperControls{
			Mode:          cfg.mode,
			Drive:         float32(cfg.drive),
			Curve:         float32(cfg.curve),
			Bias:          float32(cfg.bias),
			GatedSoftClip: cfg.gated,
		},
		mix: float32(cfg.mix),
	}, nil
}

// SetMode sets the shaper.
func (d *Distortion) SetMode(mode ShaperMode) error {
	if !mode.Valid() {
		return fmt.Errorf("distortion mode is invalid: %d", mode)
	}

	d.controls.Mode = mode

	return nil
}

// SetDrive sets input drive in [0, 20].
func (d *Distortion) SetDrive(drive float64) error {
	if err := validateDrive(drive); err != nil {
		return err
	}

	d.controls.Drive = float32(drive)

	return nil
}

// SetCurve sets the shape control in [-50, 50].
func (d *Distortion) SetCurve(curve float64) error {
	if err := validateCurve(curve); err != nil {
		return err
	}

	d.controls.Curve = float32(curve)

	return nil
}

// SetBias sets the bias in [-1, 1].
func (d *Distortion) SetBias(bias float64) error {
	if err := validateBias(bias); err != nil {
		return err
	}

	d.controls.Bias = float32(bias)

	return nil
}

// SetMix sets dry/wet mix in [0, 1].
func (d *Distortion) SetMix(mix float64) error {
	if err := validateMix(mix); err != nil {
		return err
	}

	d.mix = float32(mix)

	return nil
}

// SetGatedSoftClip toggles the gated soft clipper.
func (d *Distortion) SetGatedSoftClip(enabled bool) {
	d.controls.GatedSoftClip = enabled
}

// ProcessSample shapes one sample and blends it with the input.
func (d *Distortion) ProcessSample(x float32) float32 {
	return ShapeMix(x, d.controls, d.mix)
}

// ProcessInPlace applies the stage to buf in place.
func (d *Distortion) ProcessInPlace(buf []float32) {
	for i := range buf {
		buf[i] = ShapeMix(buf[i], d.controls, d.mix)
	}
}

// Controls returns the current shaper controls.
func (d *Distortion) Controls() ShaperControls { return d.controls }

// Mode returns the active shaper.
func (d *Distortion) Mode() ShaperMode { return d.controls.Mode }

// Drive returns the input drive.
func (d *Distortion) Drive() float64 { return float64(d.controls.Drive) }

// Curve returns the shape control.
func (d *Distortion) Curve() float64 { return float64(d.controls.Curve) }

// Bias returns the bias.
func (d *Distortion) Bias() float64 { return float64(d.controls.Bias) }

// Mix returns dry/wet mix in [0, 1].
func (d *Distortion) Mix() float64 { return float64(d.mix) }

func validateDrive(drive float64) error {
	if drive < minDistortionDrive || drive > maxDistortionDrive || math.IsNaN(drive) || math.IsInf(drive, 0) {
		return fmt.Errorf("distortion drive must be in [%g, %g]: %f", minDistortionDrive, maxDistortionDrive, drive)
	}

	return nil
}

func validateCurve(curve float64) error {
	if curve < minDistortionCurve || curve > maxDistortionCurve || math.IsNaN(curve) || math.IsInf(curve, 0) {
		return fmt.Errorf("distortion curve must be in [%g, %g]: %f", minDistortionCurve, maxDistortionCurve, curve)
	}

	return nil
}

func validateBias(bias float64) error {
	if bias < -1 || bias > 1 || math.IsNaN(bias) || math.IsInf(bias, 0) {
		return fmt.Errorf("distortion bias must be in [-1, 1]: %f", bias)
	}

	return nil
}

func validateMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) || math.IsInf(mix, 0) {
		return fmt.Errorf("distortion mix must be in [0, 1]: %f", mix)
	}

	return nil
}

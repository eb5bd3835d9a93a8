// Package thd measures harmonic distortion of a tone, split into odd and
// even harmonic content so the character of a waveshaper can be checked.
package thd

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-clipdelay/dsp/window"
	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
	defaultRubNBuzz     = 10
)

// ErrEmptySignal is returned for an empty input.
var ErrEmptySignal = errors.New("thd: signal must not be empty")

// Config holds THD calculation parameters. Zero values select defaults:
// 20 Hz to 20 kHz, a Hann window and auto capture width.
type Config struct {
	SampleRate      float64
	FFTSize         int
	FundamentalFreq float64 // 0 searches the strongest bin in range
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	CaptureBins     int // bins summed on each side of a peak
	MaxHarmonics    int
	RubNBuzzStart   int
	WindowType      window.Type
}

// Result holds THD measurement results. Levels are amplitudes; ratios are
// relative to the fundamental.
//
//nolint:revive
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	THD              float64
	THDN             float64
	THD_dB           float64
	THDN_dB          float64
	OddHD            float64
	EvenHD           float64
	Noise            float64
	RubNBuzz         float64
	Harmonics        []float64 // H2, H3, ... relative to the fundamental
	SINAD            float64
}

// Calculator performs THD analysis on frequency-domain data.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a new THD calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: normalizeConfig(cfg)}
}

// AnalyzeSignal performs one-shot THD analysis from a time-domain signal.
func AnalyzeSignal(signal []float64, cfg Config) (Result, error) {
	return NewCalculator(cfg).AnalyzeSignal(signal)
}

// AnalyzeSignal applies the periodic form of the window, zero-pads the
// result to the FFT size (the next power of two when unset) and evaluates
// the spectrum.
func (c *Calculator) AnalyzeSignal(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, ErrEmptySignal
	}

	cfg := c.cfg

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = nextPowerOf2(len(signal))
	}

	if fftSize < len(signal) {
		return Result{}, fmt.Errorf("thd: FFT size %d shorter than signal %d", fftSize, len(signal))
	}

	windowed, err := window.ApplyCoefficients(signal, window.Generate(cfg.WindowType, len(signal), window.WithPeriodic()))
	if err != nil {
		return Result{}, fmt.Errorf("thd: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("thd: %w", err)
	}

	spectrum := make([]complex128, fftSize)
	if err := plan.Forward(spectrum, in); err != nil {
		return Result{}, fmt.Errorf("thd: %w", err)
	}

	cfg.FFTSize = fftSize
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(fftSize)
	}

	return (&Calculator{cfg: cfg}).Calculate(spectrum), nil
}

// Calculate computes THD metrics from a complex spectrum.
func (c *Calculator) Calculate(spectrum []complex128) Result {
	bins := len(spectrum)/2 + 1
	if bins <= 1 {
		return Result{}
	}

	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := range bins {
		re[i] = real(spectrum[i])
		im[i] = imag(spectrum[i])
	}

	magSquared := make([]float64, bins)
	vecmath.Power(magSquared, re, im)

	cfg := c.cfg
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = len(spectrum)
	}

	return (&Calculator{cfg: cfg}).CalculateFromMagnitude(magSquared)
}

// CalculateFromMagnitude computes THD metrics from a squared-magnitude
// spectrum holding the bins [0..Nyquist].
func (c *Calculator) CalculateFromMagnitude(magSquared []float64) Result {
	if len(magSquared) <= 1 {
		return Result{}
	}

	cfg := c.cfg
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 2 * (len(magSquared) - 1)
	}

	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(cfg.FFTSize)
	}

	maxBin := len(magSquared) - 1
	binHz := cfg.SampleRate / float64(cfg.FFTSize)

	lowerBin := clampInt(int(math.Round(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Round(cfg.RangeUpperFreq/binHz)), lowerBin, maxBin)

	fundamentalBin := findFundamentalBin(magSquared, cfg.FundamentalFreq/binHz, lowerBin, upperBin)

	capture := cfg.CaptureBins
	if capture <= 0 {
		capture = captureBinsFor(cfg.WindowType)
	}

	capture = min(capture, fundamentalBin/2)

	res := Result{FundamentalFreq: float64(fundamentalBin) * binHz}

	fundamental := binLevel(magSquared, fundamentalBin, capture)
	if fundamental <= 0 {
		return res
	}

	var sums harmonicSums

	for k := 2; cfg.MaxHarmonics <= 0 || k-1 <= cfg.MaxHarmonics; k++ {
		bin := k * fundamentalBin
		if bin > upperBin {
			break
		}

		level := binLevel(magSquared, bin, capture)
		sums.add(k, level, cfg.RubNBuzzStart)
		res.Harmonics = append(res.Harmonics, level/fundamental)
	}

	total := 0.0
	for i := lowerBin; i <= upperBin; i++ {
		total += sqrtPositive(magSquared[i])
	}

	thdn := math.Max(total-fundamental, 0)
	noise := math.Max(thdn-sums.all, 0)

	res.FundamentalLevel = fundamental
	res.THD = sums.all / fundamental
	res.THDN = thdn / fundamental
	res.THD_dB = ratioToDB(res.THD)
	res.THDN_dB = ratioToDB(res.THDN)
	res.OddHD = sums.odd / fundamental
	res.EvenHD = sums.even / fundamental
	res.Noise = noise / fundamental
	res.RubNBuzz = sums.rub / fundamental

	res.SINAD = math.Inf(1)
	if res.THDN > 0 {
		res.SINAD = -ratioToDB(res.THDN)
	}

	return res
}

type harmonicSums struct {
	all, odd, even, rub float64
}

func (s *harmonicSums) add(k int, level float64, rubStart int) {
	s.all += level
	if k%2 == 0 {
		s.even += level
	} else {
		s.odd += level
	}

	if k >= rubStart {
		s.rub += level
	}
}

func findFundamentalBin(magSquared []float64, expectedBin float64, lowerBin, upperBin int) int {
	if expectedBin > 0 {
		return clampInt(int(math.Round(expectedBin)), lowerBin, upperBin)
	}

	best := lowerBin
	for i := lowerBin + 1; i <= upperBin; i++ {
		if magSquared[i] > magSquared[best] {
			best = i
		}
	}

	return best
}

// captureBinsFor returns the main lobe half width of a window in bins.
func captureBinsFor(t window.Type) int {
	switch t {
	case window.TypeRectangular:
		return 1
	case window.TypeHann, window.TypeHamming:
		return 2
	case window.TypeBlackman:
		return 3
	case window.TypeBlackmanHarris4Term:
		return 4
	case window.TypeFlatTop:
		return 5
	default:
		return 0
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}

	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}

	cfg.RangeUpperFreq = math.Max(cfg.RangeUpperFreq, cfg.RangeLowerFreq)

	if cfg.RubNBuzzStart < 1 {
		cfg.RubNBuzzStart = defaultRubNBuzz
	}

	if cfg.WindowType == window.TypeRectangular {
		cfg.WindowType = window.TypeHann
	}

	cfg.CaptureBins = max(cfg.CaptureBins, 0)
	cfg.MaxHarmonics = max(cfg.MaxHarmonics, 0)

	return cfg
}

// binLevel sums the amplitudes of bin and capture bins on either side.
func binLevel(magSquared []float64, bin, capture int) float64 {
	if bin < 0 || bin >= len(magSquared) {
		return 0
	}

	lo := max(bin-capture, 0)
	hi := min(bin+capture, len(magSquared)-1)

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += sqrtPositive(magSquared[i])
	}

	return sum
}

func sqrtPositive(v float64) float64 {
	if v <= 0 {
		return 0
	}

	return math.Sqrt(v)
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	return min(max(val, lo), hi)
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

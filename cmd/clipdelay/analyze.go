package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-clipdelay/dsp/effects"
	"github.com/cwbudde/algo-clipdelay/measure/thd"
)

type analyzeConfig struct {
	amplitude  float64
	drive      float64
	curve      float64
	swellCurve float64
	bias       float64
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := analyzeConfig{amplitude: 1, drive: 1, curve: 0.5, swellCurve: 2}
	fs.Float64Var(&cfg.amplitude, "amp", cfg.amplitude, "test tone amplitude")
	fs.Float64Var(&cfg.drive, "drive", cfg.drive, "shaper drive [0, 20]")
	fs.Float64Var(&cfg.curve, "curve", cfg.curve, "shaper curve for tapetube, oddeven and inflator")
	fs.Float64Var(&cfg.swellCurve, "swell-curve", cfg.swellCurve, "exponent of the swell shaper")
	fs.Float64Var(&cfg.bias, "bias", cfg.bias, "tape/tube bias [-1, 1]")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := analyzeShapers(cfg)
	if err != nil {
		return err
	}

	return printProfiles(stdout, thd.DefaultProfileConfig().Frequency(), rows)
}

type shaperProfile struct {
	mode effects.ShaperMode
	res  thd.Result
}

// analyzeShapers profiles every shaper except ShaperOff.
func analyzeShapers(cfg analyzeConfig) ([]shaperProfile, error) {
	profile := thd.DefaultProfileConfig()
	profile.Amplitude = cfg.amplitude

	var rows []shaperProfile

	for _, mode := range effects.ShaperModes() {
		if mode == effects.ShaperOff {
			continue
		}

		curve := cfg.curve
		if mode == effects.ShaperSwell {
			curve = cfg.swellCurve
		}

		dist, err := effects.NewDistortion(
			effects.WithDistortionMode(mode),
			effects.WithDistortionDrive(cfg.drive),
			effects.WithDistortionCurve(curve),
			effects.WithDistortionBias(cfg.bias),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mode, err)
		}

		res, err := thd.ProfileShaper(dist.ProcessSample, profile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mode, err)
		}

		rows = append(rows, shaperProfile{mode: mode, res: res})
	}

	return rows, nil
}

func printProfiles(w io.Writer, freq float64, rows []shaperProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Shaper @ %.1f Hz\tTHD [%%]\tTHD [dB]\tOdd [%%]\tEven [%%]\tH2 [%%]\tH3 [%%]\n", freq)
	fmt.Fprintf(tw, "-----------------\t-------\t--------\t-------\t--------\t------\t------\n")

	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.3f\t%.1f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			r.mode,
			100*r.res.THD,
			r.res.THD_dB,
			100*r.res.OddHD,
			100*r.res.EvenHD,
			100*harmonic(r.res, 2),
			100*harmonic(r.res, 3),
		)
	}

	return tw.Flush()
}

// harmonic returns the level of harmonic k relative to the fundamental.
func harmonic(res thd.Result, k int) float64 {
	if k-2 < len(res.Harmonics) {
		return res.Harmonics[k-2]
	}

	return 0
}

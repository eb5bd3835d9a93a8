package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
	"golang.org/x/sync/errgroup"
)

// maxAutoTailSeconds bounds the tail estimated from the feedback.
const maxAutoTailSeconds = 30.0

type renderConfig struct {
	outDir    string
	bits      int
	blockSize int
	tail      float64 // seconds; negative estimates it from the feedback
	seed      int64
	snap      params.Snapshot
	transport tempo.Transport
}

func runRender(ctx context.Context, args []string, logger *slog.Logger, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := renderConfig{bits: 16, blockSize: core.DefaultProcessorConfig().BlockSize, tail: -1, seed: 1}
	fs.StringVar(&cfg.outDir, "out", "", "output directory (required)")
	fs.Func("bits", "output bit depth: 16|24 (default 16)", setter(&cfg.bits, parseBitDepth))
	fs.IntVar(&cfg.blockSize, "block", cfg.blockSize, "processing block size in frames")
	fs.Float64Var(&cfg.tail, "tail", cfg.tail, "seconds rendered after the input; negative estimates the feedback decay")
	fs.Int64Var(&cfg.seed, "seed", cfg.seed, "dither seed")
	jobs := fs.Int("jobs", runtime.NumCPU(), "files rendered concurrently")
	pf := registerParamFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: clipdelay render -out DIR [flags] in.wav...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.outDir == "" || fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg.snap = pf.Snapshot()
	cfg.transport = pf.Transport()

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))

	for _, path := range fs.Args() {
		g.Go(func() error {
			start := time.Now()

			outPath, err := renderFile(gctx, path, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			logger.Info("rendered", "in", path, "out", outPath, "elapsed", time.Since(start).Round(time.Millisecond))

			return nil
		})
	}

	return g.Wait()
}

func renderFile(ctx context.Context, path string, cfg renderConfig) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	in, err := decodeWAV(f)
	if err != nil {
		return "", err
	}

	out, err := renderPCM(ctx, in, cfg)
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(cfg.outDir, filepath.Base(path))

	w, err := os.Create(outPath)
	if err != nil {
		return "", err
	}

	if err := encodeWAV(w, out, cfg.bits, cfg.seed); err != nil {
		_ = w.Close()
		return "", err
	}

	return outPath, w.Close()
}

// renderPCM runs in through a fresh processor and appends the tail.
func renderPCM(ctx context.Context, in pcmAudio, cfg renderConfig) (pcmAudio, error) {
	runner, err := newBlockRunner(in.Channels, core.ProcessorConfig{
		SampleRate: float64(in.SampleRate),
		BlockSize:  cfg.blockSize,
	})
	if err != nil {
		return pcmAudio{}, err
	}

	step := cfg.blockSize * in.Channels
	samples := in.Samples[:in.Frames()*in.Channels]
	out := make([]float32, 0, len(samples))

	for off := 0; off < len(samples); off += step {
		if err := ctx.Err(); err != nil {
			return pcmAudio{}, err
		}

		out = runner.process(out, samples[off:min(off+step, len(samples))], &cfg.snap, cfg.transport)
	}

	tail := cfg.tail
	if tail < 0 {
		tail = math.Min(runner.delay.TailSeconds(), maxAutoTailSeconds)
	}

	silence := make([]float32, step)

	for remaining := int(math.Round(tail*float64(in.SampleRate))) * in.Channels; remaining > 0; remaining -= step {
		if err := ctx.Err(); err != nil {
			return pcmAudio{}, err
		}

		out = runner.process(out, silence[:min(step, remaining)], &cfg.snap, cfg.transport)
	}

	return pcmAudio{Samples: out, Channels: in.Channels, SampleRate: in.SampleRate}, nil
}

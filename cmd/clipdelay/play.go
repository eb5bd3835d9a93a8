package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/ebitengine/oto/v3"
	"golang.org/x/sync/errgroup"
)

const (
	pollInterval  = 50 * time.Millisecond
	meterInterval = time.Second
)

type sweepConfig struct {
	toMs   float64
	period time.Duration
}

func runPlay(ctx context.Context, args []string, logger *slog.Logger, stderr io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(stderr)

	blockSize := fs.Int("block", 256, "processing block size in frames")
	loop := fs.Bool("loop", false, "loop the input until interrupted")
	sweep := sweepConfig{period: 4 * time.Second}
	fs.Func("sweep", `sweep the delay time towards this value and back, e.g. "40ms"`, setter(&sweep.toMs, params.ParseMilliseconds))
	fs.DurationVar(&sweep.period, "sweep-period", sweep.period, "duration of one sweep cycle")
	pf := registerParamFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: clipdelay play [flags] in.wav\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	in, err := decodeWAV(f)
	_ = f.Close()

	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}

	in = toStereo(in)

	runner, err := newBlockRunner(2, core.ProcessorConfig{SampleRate: float64(in.SampleRate), BlockSize: *blockSize})
	if err != nil {
		return err
	}

	base := pf.Snapshot()
	store := params.NewStore(base)
	stream := newDelayStream(runner, store, pf.Transport(), in.Samples, *loop)

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   in.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(stream)
	defer func() { _ = player.Close() }()

	logger.Info("playing", "file", fs.Arg(0), "rate", in.SampleRate, "delay", params.FormatMilliseconds(base.DelayTimeMs), "mode", base.DelayMode)

	playCtx, stopPlay := context.WithCancel(ctx)
	defer stopPlay()

	g, gctx := errgroup.WithContext(playCtx)

	if sweep.toMs > 0 {
		g.Go(func() error {
			runSweep(gctx, store, base.DelayTimeMs, sweep)
			return nil
		})
	}

	g.Go(func() error {
		defer stopPlay()

		return watchPlayer(gctx, player, stream, runner, logger)
	})

	return g.Wait()
}

// watchPlayer plays until the stream is done or ctx ends, logging the
// output peaks once per second.
func watchPlayer(ctx context.Context, player *oto.Player, stream *delayStream, runner *blockRunner, logger *slog.Logger) error {
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastMeter := time.Now()

	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return nil
		case <-ticker.C:
		}

		if err := player.Err(); err != nil {
			return fmt.Errorf("audio: %w", err)
		}

		if time.Since(lastMeter) >= meterInterval {
			left, right := runner.delay.Levels()
			logger.Debug("output peak",
				"left", params.FormatDecibels(core.LinearToDB(float64(left.ReadAndReset()))),
				"right", params.FormatDecibels(core.LinearToDB(float64(right.ReadAndReset()))))

			lastMeter = time.Now()
		}

		if stream.Done() && !player.IsPlaying() {
			return nil
		}
	}
}

// runSweep moves the delay time back and forth between fromMs and cfg.toMs
// along a triangle until ctx ends.
func runSweep(ctx context.Context, store *params.Store, fromMs float64, cfg sweepConfig) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ms := sweepPosition(time.Since(start), cfg.period, fromMs, cfg.toMs)
		store.Update(func(s *params.Snapshot) { s.DelayTimeMs = ms })
	}
}

// sweepPosition returns the triangle position at elapsed: fromMs at the
// start of each period and toMs halfway through.
func sweepPosition(elapsed, period time.Duration, fromMs, toMs float64) float64 {
	if period <= 0 {
		return toMs
	}

	phase := math.Mod(elapsed.Seconds()/period.Seconds(), 1)
	tri := 1 - math.Abs(2*phase-1)

	return fromMs + (toMs-fromMs)*tri
}

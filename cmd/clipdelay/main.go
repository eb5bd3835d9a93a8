// Command clipdelay renders, plays and analyses the clip delay.
//
// Usage:
//
//	clipdelay [-log-level level] <command> [flags] [args]
//
// Commands:
//
//	render   process WAV files offline
//	play     play a WAV file through the delay in real time
//	analyze  print the harmonic profile of each shaper
//	notes    print the tempo-sync note table
//
// Examples:
//
//	clipdelay render -out wet -time 375ms -feedback 45 dry/*.wav
//	clipdelay play -sync -note "1/8 dot" -bpm 96 -pingpong loop.wav
//	clipdelay analyze -drive 4 -curve 0.75
//	clipdelay notes -bpm 140
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("clipdelay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	level := fs.String("log-level", "info", "log level: debug|info|warn|error")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: clipdelay [-log-level level] <command> [flags] [args]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  render   process WAV files offline\n")
		fmt.Fprintf(stderr, "  play     play a WAV file through the delay in real time\n")
		fmt.Fprintf(stderr, "  analyze  print the harmonic profile of each shaper\n")
		fmt.Fprintf(stderr, "  notes    print the tempo-sync note table\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(stderr, *level)
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}

	cmd, cmdArgs := rest[0], rest[1:]
	logger.Debug("running command", "command", cmd, "args", cmdArgs)

	switch cmd {
	case "render":
		return runRender(ctx, cmdArgs, logger, stderr)
	case "play":
		return runPlay(ctx, cmdArgs, logger, stderr)
	case "analyze":
		return runAnalyze(cmdArgs, stdout, stderr)
	case "notes":
		return runNotes(cmdArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()

		return errUsage
	}
}

// ResolveLogLevel maps a level name to its slog level.
func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ResolveLogLevel(level)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
)

func runNotes(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("notes", flag.ContinueOnError)
	fs.SetOutput(stderr)

	bpm := fs.Float64("bpm", tempo.DefaultBPM, "tempo in beats per minute")

	if err := fs.Parse(args); err != nil {
		return err
	}

	return printNotes(stdout, *bpm)
}

// printNotes writes the delay time of every note length at bpm. Times
// beyond the longest delay are marked as capped.
func printNotes(w io.Writer, bpm float64) error {
	t := tempo.New()
	t.Update(tempo.FixedTransport(bpm))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tNote\tTime @ %g BPM\n", t.BPM())

	for i := range tempo.NumNotes {
		ms := t.MillisecondsForNoteLength(i)

		label := params.FormatMilliseconds(ms)
		if ms > params.MaxDelayTimeMs {
			label += " (capped)"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, tempo.NoteName(i), label)
	}

	return tw.Flush()
}

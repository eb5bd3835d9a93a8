// Package tempo converts musical note lengths to delay times.
package tempo

import (
	"fmt"
	"math"
	"strings"
)

// DefaultBPM is used whenever the host reports no tempo.
const DefaultBPM = 120.0

// DefaultNote is the quarter note.
const DefaultNote = 9

// NumNotes is the number of selectable note lengths.
const NumNotes = 16

// Multipliers in quarter notes, indexed by note selector.
var noteMultipliers = [NumNotes]float64{
	0.125,
	0.5 / 3,
	0.1875,
	0.25,
	1.0 / 3,
	0.375,
	0.5,
	2.0 / 3,
	0.75,
	1,
	4.0 / 3,
	1.5,
	2,
	8.0 / 3,
	3,
	4,
}

var noteNames = [NumNotes]string{
	"1/32", "1/16 trip", "1/32 dot", "1/16",
	"1/8 trip", "1/16 dot", "1/8", "1/4 trip",
	"1/8 dot", "1/4", "1/2 trip", "1/4 dot",
	"1/2", "1/1 trip", "1/2 dot", "1/1",
}

// Multiplier returns the length of note index in quarter notes.
// Out-of-range indices are clamped.
func Multiplier(index int) float64 {
	return noteMultipliers[clampIndex(index)]
}

// NoteName returns the display name of note index.
func NoteName(index int) string {
	if index < 0 || index >= NumNotes {
		return fmt.Sprintf("note(%d)", index)
	}

	return noteNames[index]
}

// ParseNote accepts a note name such as "1/8 dot" or its index.
func ParseNote(s string) (int, error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	for i, name := range noteNames {
		if s == name || s == fmt.Sprint(i) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("tempo: unknown note length: %q", s)
}

// Transport reports the host tempo. ok is false when none is available.
type Transport interface {
	BPM() (bpm float64, ok bool)
}

// FixedTransport is a Transport with a constant tempo. Zero means none.
type FixedTransport float64

// BPM implements Transport.
func (f FixedTransport) BPM() (float64, bool) {
	bpm := float64(f)
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 0, false
	}

	return bpm, true
}

// Tempo tracks the host BPM once per block.
type Tempo struct {
	bpm float64
}

// New returns a tempo at DefaultBPM.
func New() *Tempo {
	return &Tempo{bpm: DefaultBPM}
}

// Reset returns to DefaultBPM.
func (t *Tempo) Reset() {
	t.bpm = DefaultBPM
}

// Update reads the host tempo. A nil transport or a missing tempo falls
// back to DefaultBPM.
func (t *Tempo) Update(tr Transport) {
	t.Reset()

	if tr == nil {
		return
	}

	if bpm, ok := tr.BPM(); ok && bpm > 0 {
		t.bpm = bpm
	}
}

// BPM returns the tempo of the last Update.
func (t *Tempo) BPM() float64 {
	return t.bpm
}

// MillisecondsForNoteLength returns 60000 * multiplier / bpm.
func (t *Tempo) MillisecondsForNoteLength(index int) float64 {
	return 60000 * Multiplier(index) / t.bpm
}

func clampIndex(index int) int {
	if index < 0 {
		return 0
	}

	if index >= NumNotes {
		return NumNotes - 1
	}

	return index
}

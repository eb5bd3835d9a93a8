package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/signal"
	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

var errNotWAV = errors.New("not a valid WAV file")

// pcmAudio is interleaved audio at full scale 1.0.
type pcmAudio struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of whole frames.
func (p pcmAudio) Frames() int {
	if p.Channels <= 0 {
		return 0
	}

	return len(p.Samples) / p.Channels
}

// decodeWAV reads a mono or stereo integer PCM WAV file.
func decodeWAV(r io.ReadSeeker) (pcmAudio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return pcmAudio{}, errNotWAV
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return pcmAudio{}, fmt.Errorf("unsupported WAV format %d, want integer PCM", dec.WavAudioFormat)
	}

	bits := int(dec.BitDepth)
	if bits != 16 && bits != 24 && bits != 32 {
		return pcmAudio{}, fmt.Errorf("unsupported bit depth %d", bits)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcmAudio{}, fmt.Errorf("decode: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels != 1 && channels != 2 {
		return pcmAudio{}, fmt.Errorf("unsupported channel count %d", channels)
	}

	scale := 1 / math.Ldexp(1, bits-1)
	samples := make([]float32, len(buf.Data))

	for i, v := range buf.Data {
		samples[i] = float32(float64(v) * scale)
	}

	return pcmAudio{Samples: samples, Channels: channels, SampleRate: buf.Format.SampleRate}, nil
}

// encodeWAV writes p as integer PCM. 16-bit output gets TPDF dither of one
// LSB seeded by seed.
func encodeWAV(w io.WriteSeeker, p pcmAudio, bits int, seed int64) error {
	if bits != 16 && bits != 24 {
		return errBitDepth
	}

	full := math.Ldexp(1, bits-1)

	data := signal.ToFloat64(p.Samples)
	vecmath.ScaleBlockInPlace(data, full)

	if bits == 16 {
		vecmath.AddDitherTPDF(data, 1, vecmath.NewDitherState(seed))
	}

	ints := make([]int, len(data))
	for i, v := range data {
		ints[i] = int(math.Round(core.Clamp(v, -full, full-1)))
	}

	enc := wav.NewEncoder(w, p.SampleRate, bits, p.Channels, wavFormatPCM)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: p.Channels, SampleRate: p.SampleRate},
		Data:           ints,
		SourceBitDepth: bits,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	return enc.Close()
}

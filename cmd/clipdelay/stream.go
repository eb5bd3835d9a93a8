package main

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
)

// delayStream is an io.Reader of float32 little-endian stereo frames. Each
// Read pulls the next frames of src through the processor, reading the
// controls from store once per call.
type delayStream struct {
	mu sync.Mutex

	runner    *blockRunner
	store     *params.Store
	transport tempo.Transport
	src       []float32 // interleaved stereo
	loop      bool

	pos      int
	tailLeft int // samples still to render after src ends; -1 until known
	dry, wet []float32
}

func newDelayStream(runner *blockRunner, store *params.Store, transport tempo.Transport, src []float32, loop bool) *delayStream {
	return &delayStream{
		runner:    runner,
		store:     store,
		transport: transport,
		src:       src,
		loop:      loop,
		tailLeft:  -1,
	}
}

func (s *delayStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const bytesPerFrame = 8

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	if s.finished() {
		return 0, io.EOF
	}

	need := frames * 2
	s.dry = core.EnsureLen(s.dry, need)
	s.wet = core.EnsureLen(s.wet, need)

	pad := s.fill(s.dry)
	s.runner.processInto(s.wet, s.dry, s.store.Load(), s.transport)

	if pad > 0 {
		if s.tailLeft < 0 {
			tail := math.Min(s.runner.delay.TailSeconds(), maxAutoTailSeconds)
			s.tailLeft = int(math.Round(tail*s.runner.delay.SampleRate())) * 2
		}

		s.tailLeft = max(s.tailLeft-pad, 0)
	}

	for i, v := range s.wet {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}

	return frames * bytesPerFrame, nil
}

// fill copies the next input samples into dst and pads with silence once
// src is exhausted. It returns the number of padded samples.
func (s *delayStream) fill(dst []float32) int {
	n := 0
	for n < len(dst) && s.pos < len(s.src) {
		c := copy(dst[n:], s.src[s.pos:])
		n += c
		s.pos += c

		if s.loop && s.pos == len(s.src) {
			s.pos = 0
		}
	}

	clear(dst[n:])

	return len(dst) - n
}

func (s *delayStream) finished() bool {
	return s.pos >= len(s.src) && s.tailLeft == 0
}

// Done reports whether the input and its tail have been rendered.
func (s *delayStream) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.finished()
}

// toStereo duplicates a mono signal into both channels.
func toStereo(p pcmAudio) pcmAudio {
	if p.Channels == 2 {
		return p
	}

	out := make([]float32, 2*len(p.Samples))
	for i, v := range p.Samples {
		out[2*i] = v
		out[2*i+1] = v
	}

	return pcmAudio{Samples: out, Channels: 2, SampleRate: p.SampleRate}
}

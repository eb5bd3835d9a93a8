package main

import (
	"slices"

	"github.com/cwbudde/algo-clipdelay/dsp/core"
	"github.com/cwbudde/algo-clipdelay/dsp/effects"
	"github.com/cwbudde/algo-clipdelay/dsp/params"
	"github.com/cwbudde/algo-clipdelay/dsp/tempo"
)

// blockRunner feeds interleaved audio through a Delay in blocks of at most
// blockSize frames.
type blockRunner struct {
	delay     *effects.Delay
	blockSize int

	in, out         [][]float32
	inView, outView [][]float32
}

func newBlockRunner(channels int, cfg core.ProcessorConfig) (*blockRunner, error) {
	d, err := effects.NewDelay()
	if err != nil {
		return nil, err
	}

	if err := d.Prepare(cfg); err != nil {
		return nil, err
	}

	r := &blockRunner{
		delay:     d,
		blockSize: cfg.BlockSize,
		in:        make([][]float32, channels),
		out:       make([][]float32, channels),
		inView:    make([][]float32, channels),
		outView:   make([][]float32, channels),
	}

	for c := range channels {
		r.in[c] = make([]float32, cfg.BlockSize)
		r.out[c] = make([]float32, cfg.BlockSize)
	}

	return r, nil
}

func (r *blockRunner) channels() int { return len(r.in) }

// processInto processes interleaved src into dst, which must be at least as
// long. src may hold any number of whole frames.
func (r *blockRunner) processInto(dst, src []float32, snap *params.Snapshot, transport tempo.Transport) {
	channels := r.channels()
	step := r.blockSize * channels

	for off := 0; off+channels <= len(src); off += step {
		end := min(off+step, len(src))
		frames := (end - off) / channels

		for c := range channels {
			r.inView[c] = r.in[c][:frames]
			r.outView[c] = r.out[c][:frames]
		}

		core.Deinterleave(r.inView, src[off:end])
		r.delay.ProcessBlock(r.inView, r.outView, snap, transport)
		core.Interleave(dst[off:end], r.outView)
	}
}

// process appends the processed form of src to dst.
func (r *blockRunner) process(dst, src []float32, snap *params.Snapshot, transport tempo.Transport) []float32 {
	n := len(dst)
	dst = slices.Grow(dst, len(src))[:n+len(src)]
	r.processInto(dst[n:], src, snap, transport)

	return dst
}

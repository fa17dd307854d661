package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/deathdisco/softclip/pkg/framework/debug"
)

// processor is the part of the plugin the audio source drives.
type processor interface {
	Process(inputs, outputs [][]float32)
}

// toneSource feeds a sine through the plugin and serves the result to oto
// as interleaved little-endian float32 stereo.
type toneSource struct {
	proc     processor
	analyzer atomic.Pointer[debug.AudioAnalyzer]
	meter    *debug.Meter

	phase     float64
	increment float64
	amplitude float32

	in      [][]float32
	out     [][]float32
	inView  [][]float32
	outView [][]float32
	scratch []float32
}

func newToneSource(proc processor, sampleRate, freq float64, amplitude float32, block int, meter *debug.Meter) *toneSource {
	s := &toneSource{
		proc:      proc,
		meter:     meter,
		increment: 2 * math.Pi * freq / sampleRate,
		amplitude: amplitude,
		in:        [][]float32{make([]float32, block), make([]float32, block)},
		out:       [][]float32{make([]float32, block), make([]float32, block)},
		scratch:   make([]float32, 2*block),
		inView:    make([][]float32, 2),
		outView:   make([][]float32, 2),
	}
	s.analyzer.Store(debug.NewAudioAnalyzer(1))
	return s
}

// setCeiling updates the level the meter treats as saturated.
func (s *toneSource) setCeiling(ceiling float32) {
	s.analyzer.Store(debug.NewAudioAnalyzer(ceiling))
}

// Read implements io.Reader for oto. It always fills whole frames.
func (s *toneSource) Read(p []byte) (int, error) {
	const frameBytes = 8
	frames := len(p) / frameBytes
	written := 0

	for frames > 0 {
		n := min(frames, len(s.in[0]))
		in, out := s.inView, s.outView
		for ch := range in {
			in[ch] = s.in[ch][:n]
			out[ch] = s.out[ch][:n]
		}

		for i := 0; i < n; i++ {
			v := s.amplitude * float32(math.Sin(s.phase))
			in[0][i] = v
			in[1][i] = v
			s.phase += s.increment
			if s.phase >= 2*math.Pi {
				s.phase -= 2 * math.Pi
			}
		}

		s.proc.Process(in, out)

		inter := s.scratch[:2*n]
		for i := 0; i < n; i++ {
			inter[2*i] = out[0][i]
			inter[2*i+1] = out[1][i]
		}
		if s.meter != nil {
			s.meter.Add(s.analyzer.Load().Analyze(inter))
		}
		for _, v := range inter {
			binary.LittleEndian.PutUint32(p[written:], math.Float32bits(v))
			written += 4
		}
		frames -= n
	}
	return written, nil
}

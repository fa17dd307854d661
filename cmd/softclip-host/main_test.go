package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deathdisco/softclip/pkg/framework/debug"
	"github.com/deathdisco/softclip/pkg/plugin"
)

type passThrough struct{ calls int }

func (p *passThrough) Process(inputs, outputs [][]float32) {
	p.calls++
	for ch := range outputs {
		copy(outputs[ch], inputs[ch])
	}
}

func decode(t *testing.T, b []byte) []float32 {
	t.Helper()
	require.Zero(t, len(b)%4)
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

func TestToneSourceFillsWholeFrames(t *testing.T) {
	proc := &passThrough{}
	src := newToneSource(proc, 48000, 1000, 0.5, 64, nil)

	buf := make([]byte, 8*200+5)
	n, err := src.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 8*200, n)
	// 200 frames in blocks of 64.
	assert.Equal(t, 4, proc.calls)

	samples := decode(t, buf[:n])
	for i := 0; i < len(samples); i += 2 {
		assert.Equal(t, samples[i], samples[i+1], "channels differ at frame %d", i/2)
	}
	assert.InDelta(t, 0, samples[0], 1e-6)
	assert.InDelta(t, 0.5*math.Sin(2*math.Pi*1000/48000), samples[2], 1e-6)
}

func TestToneSourceThroughPlugin(t *testing.T) {
	p := plugin.New(plugin.Config{Logger: debug.New(io.Discard, "", 0)})
	defer p.Close()
	require.NoError(t, p.Initialize(48000, 256))
	p.SetActive(true)
	p.SetParameter(plugin.ParamThreshold, 0.5)
	p.SetParameter(plugin.ParamGain, 0.8)

	meter := &debug.Meter{}
	src := newToneSource(p, 48000, 220, 1.5, 256, meter)
	src.setCeiling(0.8)

	buf := make([]byte, 8*4800)
	_, err := src.Read(buf)
	require.NoError(t, err)

	for i, v := range decode(t, buf) {
		require.LessOrEqual(t, math.Abs(float64(v)), 0.8+1e-6, "sample %d", i)
	}

	r := meter.Read()
	assert.InDelta(t, 0.8, r.Peak, 1e-6)
	assert.Zero(t, r.NonFinite)
	// A 1.5 peak sine is above 0.5 for roughly three quarters of each cycle.
	assert.Greater(t, r.SaturationRatio(), 0.6)
	assert.Less(t, r.SaturationRatio(), 0.9)
}

func TestReportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_events_total", Help: "x"})
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_seconds", Help: "x"})
	reg.MustRegister(c, h)
	c.Add(3)
	h.Observe(0.002)
	h.Observe(0.004)

	var out bytes.Buffer
	reportMetrics(debug.New(&out, "", debug.FlagLevel), reg)

	assert.Contains(t, out.String(), "test_events_total 3")
	assert.Contains(t, out.String(), "test_seconds count=2 mean=3.00ms")
}

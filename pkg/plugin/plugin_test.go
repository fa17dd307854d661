package plugin

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deathdisco/softclip/pkg/framework/debug"
	framework "github.com/deathdisco/softclip/pkg/framework/plugin"
	"github.com/deathdisco/softclip/pkg/gui/loop"
	"github.com/deathdisco/softclip/pkg/gui/window"
	"github.com/deathdisco/softclip/pkg/gui/window/windowtest"
)

func newTestPlugin(t *testing.T) (*Plugin, *windowtest.Backend, *bytes.Buffer) {
	t.Helper()
	backend := &windowtest.Backend{}
	var logBuf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Backend = backend
	cfg.Logger = debug.New(&logBuf, "test", debug.FlagLevel)
	p := New(cfg)
	t.Cleanup(func() { _ = p.Close() })
	return p, backend, &logBuf
}

func TestGetInfo(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	info := p.GetInfo()

	assert.Equal(t, "DDSoftClip", info.Name)
	assert.Equal(t, "DeathDisco", info.Vendor)
	assert.Equal(t, int32(7790), info.UniqueID)
	assert.Equal(t, framework.CategoryEffect, info.Category)
	assert.Equal(t, int32(2), info.Inputs)
	assert.Equal(t, int32(2), info.Outputs)
	assert.Equal(t, int32(2), info.Parameters)
	assert.NoError(t, info.ValidateUID())
}

func TestSetParameterClamps(t *testing.T) {
	p, _, _ := newTestPlugin(t)

	tests := []struct {
		in   float32
		want float32
	}{
		{-1, 0.01},
		{0, 0.01},
		{0.005, 0.01},
		{0.01, 0.01},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
		{float32(math.NaN()), 0.01},
		{float32(math.Inf(1)), 1},
	}
	for _, index := range []int32{ParamThreshold, ParamGain} {
		for _, tt := range tests {
			p.SetParameter(index, tt.in)
			assert.Equal(t, tt.want, p.GetParameter(index), "index %d, set %v", index, tt.in)
		}
	}
}

func TestParameterAccessorsOutOfRange(t *testing.T) {
	p, _, _ := newTestPlugin(t)

	for _, index := range []int32{-1, 2, 100} {
		assert.Zero(t, p.GetParameter(index))
		assert.Empty(t, p.GetParameterName(index))
		assert.Empty(t, p.GetParameterText(index))
		assert.Empty(t, p.GetParameterLabel(index))
		assert.False(t, p.CanBeAutomated(index))
		assert.NotPanics(t, func() { p.SetParameter(index, 0.5) })
	}
}

func TestParameterProjections(t *testing.T) {
	p, _, _ := newTestPlugin(t)

	p.SetParameter(ParamThreshold, 0.5)
	assert.Equal(t, "50", p.GetParameterText(ParamThreshold))
	assert.Equal(t, "100", p.GetParameterText(ParamGain))
	assert.Equal(t, "Threshold", p.GetParameterName(ParamThreshold))
	assert.Equal(t, "Gain", p.GetParameterName(ParamGain))
	assert.Equal(t, "%", p.GetParameterLabel(ParamThreshold))
	assert.Equal(t, "%", p.GetParameterLabel(ParamGain))
	assert.True(t, p.CanBeAutomated(ParamThreshold))
	assert.True(t, p.CanBeAutomated(ParamGain))
}

func TestProcessScenario(t *testing.T) {
	p, _, _ := newTestPlugin(t)

	in := [][]float32{{-2, 0.5, 2, -0.5}, {-2, 0.5, 2, -0.5}}
	out := [][]float32{make([]float32, 4), make([]float32, 4)}
	p.Process(in, out)

	for ch := range out {
		assert.Equal(t, []float32{-1, 0.5, 1, -0.5}, out[ch], "channel %d", ch)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(p.processed))
}

func TestProcessUsesCurrentParameters(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	p.SetParameter(ParamThreshold, 0.5)
	p.SetParameter(ParamGain, 0.5)

	in := [][]float32{{1, -1, 0.25}}
	out := [][]float32{make([]float32, 3)}
	p.Process(in, out)

	assert.InDeltaSlice(t, []float32{0.5, -0.5, 0.25}, out[0], 1e-6)
}

func TestReactivationKeepsParameters(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	require.NoError(t, p.Initialize(48000, 64))
	p.SetActive(true)
	p.SetParameter(ParamThreshold, 0.5)
	p.SetParameter(ParamGain, 0.25)

	p.SetActive(false)
	assert.False(t, p.Processor().Active())
	p.SetActive(true)

	in := [][]float32{{1, -1}}
	out := [][]float32{make([]float32, 2)}
	p.Process(in, out)

	assert.InDeltaSlice(t, []float32{0.25, -0.25}, out[0], 1e-6)
	assert.Equal(t, float32(0.5), p.GetParameter(ParamThreshold))
	assert.Equal(t, float32(0.25), p.GetParameter(ParamGain))
}

func TestParameterDomain(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	for _, id := range []int32{ParamThreshold, ParamGain} {
		info, err := p.Parameters().At(id)
		require.NoError(t, err)
		assert.Equal(t, 0.01, info.Min, "param %d", id)
		assert.Equal(t, 1.0, info.Max, "param %d", id)
		assert.Equal(t, 1.0, info.DefaultValue, "param %d", id)
		assert.Equal(t, "%", info.Unit, "param %d", id)
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	in := [][]float32{make([]float32, 512), make([]float32, 512)}
	out := [][]float32{make([]float32, 512), make([]float32, 512)}

	allocs := testing.AllocsPerRun(100, func() { p.Process(in, out) })
	assert.Zero(t, allocs)
}

func TestStateRoundTrip(t *testing.T) {
	src, _, _ := newTestPlugin(t)
	src.SetParameter(ParamThreshold, 0.3)
	src.SetParameter(ParamGain, 0.7)

	chunk, err := src.GetState()
	require.NoError(t, err)

	dst, _, _ := newTestPlugin(t)
	require.NoError(t, dst.SetState(chunk))
	assert.Equal(t, src.GetParameter(ParamThreshold), dst.GetParameter(ParamThreshold))
	assert.Equal(t, src.GetParameter(ParamGain), dst.GetParameter(ParamGain))

	assert.Error(t, dst.SetState([]byte("garbage")))
	assert.Equal(t, float32(0.7), dst.GetParameter(ParamGain))
}

func TestOpenCloseOpenEditor(t *testing.T) {
	p, backend, _ := newTestPlugin(t)

	require.NoError(t, p.OpenEditor(0x400001))
	assert.True(t, p.EditorOpen())
	assert.ErrorIs(t, p.OpenEditor(0x400001), ErrEditorOpen)
	first := p.session

	p.CloseEditor()
	assert.False(t, p.EditorOpen())
	require.True(t, backend.Surfaces()[0].Destroyed())

	require.NoError(t, p.OpenEditor(0x400002))
	assert.True(t, p.EditorOpen())
	second := p.session

	require.Len(t, backend.Surfaces(), 2, "each session gets its own surface")
	assert.NotSame(t, first, second)
	assert.Equal(t, window.Handle(0x400002), backend.Surfaces()[1].Parent)
	assert.False(t, backend.Surfaces()[1].Destroyed())
	assert.NotZero(t, second.Ids().Threshold)
	assert.Equal(t, loop.Running, second.State())
}

func TestCloseEditorJoinsWithinFrame(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	require.NoError(t, p.OpenEditor(1))

	// Let the loop settle into its pacing sleep.
	time.Sleep(2 * loop.FrameInterval)

	done := make(chan struct{})
	go func() {
		p.CloseEditor()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Fatal("editor thread was not joined within 50ms")
	}
	assert.False(t, p.EditorOpen())
}

func TestOpenEditorInvalidHandle(t *testing.T) {
	p, backend, logBuf := newTestPlugin(t)

	err := p.OpenEditor(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, window.ErrSurfaceCreationFailed)
	assert.False(t, p.EditorOpen())
	assert.Nil(t, p.session)
	assert.Empty(t, backend.Surfaces())
	assert.Equal(t, 1, bytes.Count(logBuf.Bytes(), []byte("[ERROR]")))

	assert.NotPanics(t, p.CloseEditor)

	// Audio keeps working.
	out := [][]float32{make([]float32, 1)}
	p.Process([][]float32{{2}}, out)
	assert.Equal(t, float32(1), out[0][0])
}

func TestEditorClosedByUserCanReopen(t *testing.T) {
	p, backend, _ := newTestPlugin(t)
	require.NoError(t, p.OpenEditor(1))

	backend.Last().Push(window.Event{Kind: window.EventClosed})
	require.Eventually(t, func() bool { return !p.EditorOpen() }, time.Second, time.Millisecond)

	require.NoError(t, p.OpenEditor(2))
	assert.True(t, p.EditorOpen())
}

func TestEditorEditsReachHost(t *testing.T) {
	backend := &windowtest.Backend{}
	edits := make(chan int32, 8)
	cfg := DefaultConfig()
	cfg.Backend = backend
	cfg.Logger = debug.New(&bytes.Buffer{}, "", 0)
	cfg.OnEdit = func(index int32, _ float64) { edits <- index }
	p := New(cfg)
	defer p.Close()

	require.NoError(t, p.OpenEditor(1))
	// Press at the left end of the gain slider.
	backend.Last().Push(window.Event{Kind: window.EventMouseButtonPressed, Button: window.ButtonLeft, X: 20, Y: 230})

	select {
	case index := <-edits:
		assert.Equal(t, ParamGain, index)
	case <-time.After(time.Second):
		t.Fatal("no edit notification")
	}
	assert.Equal(t, float32(0.01), p.GetParameter(ParamGain))
}

func TestCloseJoinsEditor(t *testing.T) {
	p, backend, _ := newTestPlugin(t)
	require.NoError(t, p.OpenEditor(1))

	require.NoError(t, p.Close())
	assert.True(t, backend.Last().Destroyed())
	assert.False(t, p.EditorOpen())
	assert.ErrorIs(t, p.OpenEditor(1), ErrClosed)
	require.NoError(t, p.Close())

	out := [][]float32{{9}}
	p.Process([][]float32{{0.5}}, out)
	assert.Zero(t, out[0][0], "a closed instance outputs silence")
}

func TestMetricsGatherer(t *testing.T) {
	p, _, _ := newTestPlugin(t)
	p.Process([][]float32{{0}}, [][]float32{{0}})

	families, err := p.Metrics().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["softclip_process_calls_total"])
	assert.True(t, names["softclip_editor_frames_built_total"])
}

func TestInstanceRegistry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = &windowtest.Backend{}
	cfg.Logger = debug.New(&bytes.Buffer{}, "", 0)

	before := InstanceCount()
	h := Instantiate(cfg)
	require.NotZero(t, h)
	assert.Equal(t, before+1, InstanceCount())

	p := Lookup(h)
	require.NotNil(t, p)
	assert.Same(t, p, Lookup(h))
	assert.Nil(t, Lookup(0))

	h2 := Instantiate(cfg)
	assert.NotEqual(t, h, h2)

	require.NoError(t, Release(h))
	assert.Nil(t, Lookup(h))
	assert.NoError(t, Release(h), "releasing twice is harmless")
	require.NoError(t, Release(h2))
	assert.Equal(t, before, InstanceCount())
}

func TestLogFileConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = &windowtest.Backend{}
	cfg.LogFile = t.TempDir() + "/softclip.log"

	p := New(cfg)
	require.True(t, p.ownsLog)
	require.NoError(t, p.Close())
}

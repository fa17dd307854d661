package bridge

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deathdisco/softclip/pkg/framework/param"
	"github.com/deathdisco/softclip/pkg/gui/ui"
	"github.com/deathdisco/softclip/pkg/gui/window"
)

func newParams(t *testing.T) *param.Registry {
	t.Helper()
	r := param.NewRegistry()
	require.NoError(t, r.Add(
		param.New(0, "Threshold").Percent().Build(),
		param.New(1, "Gain").Percent().Build(),
	))
	r.Freeze()
	return r
}

func TestIsCloseSignal(t *testing.T) {
	tests := []struct {
		name string
		ev   window.Event
		want bool
	}{
		{"Closed", window.Event{Kind: window.EventClosed}, true},
		{"Escape", window.Event{Kind: window.EventKeyPressed, Key: window.KeyEscape}, true},
		{"EscapeRelease", window.Event{Kind: window.EventKeyReleased, Key: window.KeyEscape}, false},
		{"OtherKey", window.Event{Kind: window.EventKeyPressed, Key: window.KeyOther}, false},
		{"Motion", window.Event{Kind: window.EventMouseMoved}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCloseSignal(tt.ev))
		})
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		ev   window.Event
		want ui.Event
		ok   bool
	}{
		{"Motion", window.Event{Kind: window.EventMouseMoved, X: 3, Y: 4},
			ui.Event{Kind: ui.EventMouseMove, X: 3, Y: 4}, true},
		{"LeftPress", window.Event{Kind: window.EventMouseButtonPressed, Button: window.ButtonLeft, X: 1, Y: 2},
			ui.Event{Kind: ui.EventPress, Button: ui.ButtonLeft, X: 1, Y: 2}, true},
		{"RightRelease", window.Event{Kind: window.EventMouseButtonReleased, Button: window.ButtonRight},
			ui.Event{Kind: ui.EventRelease, Button: ui.ButtonRight}, true},
		{"WheelDropped", window.Event{Kind: window.EventMouseButtonPressed, Button: 4}, ui.Event{}, false},
		{"ArrowKey", window.Event{Kind: window.EventKeyPressed, Key: window.KeyLeft},
			ui.Event{Kind: ui.EventKeyPress, Key: ui.KeyLeft}, true},
		{"OtherKeyDropped", window.Event{Kind: window.EventKeyReleased, Key: window.KeyOther}, ui.Event{}, false},
		{"Resize", window.Event{Kind: window.EventResized, Width: 640, Height: 480},
			ui.Event{Kind: ui.EventResize, Width: 640, Height: 480}, true},
		{"Focus", window.Event{Kind: window.EventFocus, Focused: true},
			ui.Event{Kind: ui.EventFocus, Focused: true}, true},
		{"Expose", window.Event{Kind: window.EventExposed}, ui.Event{Kind: ui.EventRedraw}, true},
		{"ClosedNotTranslated", window.Event{Kind: window.EventClosed}, ui.Event{}, false},
		{"Unknown", window.Event{Kind: window.EventUnknown}, ui.Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.ev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleEventCountsDrops(t *testing.T) {
	u := ui.New(500, 300)
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "dropped"})
	b := New(u, newParams(t), NewIds(u.WidgetIDGenerator()), WithDroppedCounter(dropped))

	assert.False(t, b.HandleEvent(window.Event{Kind: window.EventUnknown}))
	assert.False(t, b.HandleEvent(window.Event{Kind: window.EventMouseMoved}))
	assert.True(t, b.HandleEvent(window.Event{Kind: window.EventClosed}))

	assert.Equal(t, 1.0, testutil.ToFloat64(dropped))
}

func TestNewIdsAreDistinct(t *testing.T) {
	ids := NewIds(ui.New(1, 1).WidgetIDGenerator())
	seen := map[ui.WidgetID]bool{}
	for _, id := range []ui.WidgetID{ids.Title, ids.Curve, ids.Threshold, ids.ThresholdLabel, ids.Gain, ids.GainLabel} {
		assert.NotZero(t, id)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestSetWidgetsRendersCurrentValues(t *testing.T) {
	params := newParams(t)
	require.NoError(t, params.Set(ParamThreshold, 0.5))

	u := ui.New(500, 300)
	b := New(u, params, NewIds(u.WidgetIDGenerator()))

	b.SetWidgets(u.SetWidgets())
	prims, changed := u.DrawIfChanged()
	require.True(t, changed)

	var texts []string
	for _, p := range prims {
		if p.Kind == ui.PrimText {
			texts = append(texts, p.Text)
		}
	}
	assert.Contains(t, texts, "DDSoftClip")
	assert.Contains(t, texts, "Threshold: 50%")
	assert.Contains(t, texts, "Gain: 100% (0.0 dB)")

	// A later write from the host shows up in the next frame.
	require.NoError(t, params.Set(ParamGain, 0.25))
	b.SetWidgets(u.SetWidgets())
	_, changed = u.DrawIfChanged()
	assert.True(t, changed)
}

func TestSliderDragWritesRegistryInSameFrame(t *testing.T) {
	params := newParams(t)
	u := ui.New(500, 300)

	var edits []int32
	b := New(u, params, NewIds(u.WidgetIDGenerator()), WithEditHook(func(index int32, value float64) {
		edits = append(edits, index)
	}))

	// Gain slider spans x 20..340 at y 220..244; press at the far left.
	b.HandleEvent(window.Event{Kind: window.EventMouseButtonPressed, Button: window.ButtonLeft, X: 20, Y: 230})
	b.SetWidgets(u.SetWidgets())

	v, err := params.Get(ParamGain)
	require.NoError(t, err)
	assert.Equal(t, param.DefaultFloor, v, "drag to the left edge clamps to the floor")
	assert.Equal(t, []int32{ParamGain}, edits)

	th, _ := params.Get(ParamThreshold)
	assert.Equal(t, 1.0, th, "other slider untouched")
}

func TestArrowKeysEditThreshold(t *testing.T) {
	params := newParams(t)
	require.NoError(t, params.Set(ParamThreshold, 0.5))
	u := ui.New(500, 300)

	var edits []int32
	b := New(u, params, NewIds(u.WidgetIDGenerator()), WithEditHook(func(index int32, value float64) {
		edits = append(edits, index)
	}))

	b.HandleEvent(window.Event{Kind: window.EventKeyPressed, Key: window.KeyLeft})
	b.SetWidgets(u.SetWidgets())

	th, err := params.Get(ParamThreshold)
	require.NoError(t, err)
	// (1 - 0.01) / 100 per press.
	assert.InDelta(t, 0.5-0.0099, th, 1e-9)
	assert.Equal(t, []int32{ParamThreshold}, edits)

	g, _ := params.Get(ParamGain)
	assert.Equal(t, 1.0, g, "gain untouched")
}

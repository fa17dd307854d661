// Package bridge connects raw window events and the parameter registry to
// the immediate-mode UI.
package bridge

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/deathdisco/softclip/pkg/framework/param"
	"github.com/deathdisco/softclip/pkg/gui/ui"
	"github.com/deathdisco/softclip/pkg/gui/window"
)

// Parameter indices the editor controls.
const (
	ParamThreshold int32 = 0
	ParamGain      int32 = 1
)

// Ids are the editor's widget ids, generated once per session.
type Ids struct {
	Title          ui.WidgetID
	Curve          ui.WidgetID
	Threshold      ui.WidgetID
	ThresholdLabel ui.WidgetID
	Gain           ui.WidgetID
	GainLabel      ui.WidgetID
}

// NewIds draws a fresh id set from gen.
func NewIds(gen *ui.IDGenerator) Ids {
	return Ids{
		Title:          gen.Next(),
		Curve:          gen.Next(),
		Threshold:      gen.Next(),
		ThresholdLabel: gen.Next(),
		Gain:           gen.Next(),
		GainLabel:      gen.Next(),
	}
}

// IsCloseSignal reports whether ev ends the editor session: the window
// was closed or Escape was pressed.
func IsCloseSignal(ev window.Event) bool {
	switch ev.Kind {
	case window.EventClosed:
		return true
	case window.EventKeyPressed:
		return ev.Key == window.KeyEscape
	default:
		return false
	}
}

// Translate converts a raw event into a UI event. Events with no UI
// meaning return false.
func Translate(ev window.Event) (ui.Event, bool) {
	switch ev.Kind {
	case window.EventMouseMoved:
		return ui.Event{Kind: ui.EventMouseMove, X: float64(ev.X), Y: float64(ev.Y)}, true
	case window.EventMouseButtonPressed, window.EventMouseButtonReleased:
		b, ok := translateButton(ev.Button)
		if !ok {
			return ui.Event{}, false
		}
		kind := ui.EventPress
		if ev.Kind == window.EventMouseButtonReleased {
			kind = ui.EventRelease
		}
		return ui.Event{Kind: kind, Button: b, X: float64(ev.X), Y: float64(ev.Y)}, true
	case window.EventKeyPressed, window.EventKeyReleased:
		k, ok := translateKey(ev.Key)
		if !ok {
			return ui.Event{}, false
		}
		kind := ui.EventKeyPress
		if ev.Kind == window.EventKeyReleased {
			kind = ui.EventKeyRelease
		}
		return ui.Event{Kind: kind, Key: k}, true
	case window.EventResized:
		return ui.Event{Kind: ui.EventResize, Width: float64(ev.Width), Height: float64(ev.Height)}, true
	case window.EventFocus:
		return ui.Event{Kind: ui.EventFocus, Focused: ev.Focused}, true
	case window.EventExposed:
		return ui.Event{Kind: ui.EventRedraw}, true
	default:
		return ui.Event{}, false
	}
}

func translateButton(b window.Button) (ui.MouseButton, bool) {
	switch b {
	case window.ButtonLeft:
		return ui.ButtonLeft, true
	case window.ButtonMiddle:
		return ui.ButtonMiddle, true
	case window.ButtonRight:
		return ui.ButtonRight, true
	default:
		// Wheel buttons and extras.
		return ui.ButtonNone, false
	}
}

func translateKey(k window.Key) (ui.Key, bool) {
	switch k {
	case window.KeyEscape:
		return ui.KeyEscape, true
	case window.KeyLeft:
		return ui.KeyLeft, true
	case window.KeyRight:
		return ui.KeyRight, true
	case window.KeyUp:
		return ui.KeyUp, true
	case window.KeyDown:
		return ui.KeyDown, true
	default:
		return ui.KeyUnknown, false
	}
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithEditHook is called after every UI-driven parameter write.
func WithEditHook(fn func(index int32, value float64)) Option {
	return func(b *Bridge) { b.onEdit = fn }
}

// WithDroppedCounter counts events Translate rejected.
func WithDroppedCounter(c prometheus.Counter) Option {
	return func(b *Bridge) { b.dropped = c }
}

// WithCurve shows the transfer curve image next to the title.
func WithCurve(img ui.ImageID) Option {
	return func(b *Bridge) { b.curve = img }
}

// Bridge drives one editor session's Ui.
type Bridge struct {
	ui      *ui.Ui
	params  *param.Registry
	ids     Ids
	curve   ui.ImageID
	onEdit  func(int32, float64)
	dropped prometheus.Counter
}

// New creates a Bridge. ids must come from u's generator.
func New(u *ui.Ui, params *param.Registry, ids Ids, opts ...Option) *Bridge {
	b := &Bridge{ui: u, params: params, ids: ids}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ids returns the session's widget ids.
func (b *Bridge) Ids() Ids {
	return b.ids
}

// HandleEvent checks ev for a close signal before translating it, so a
// close-class event ends the session even when it has no UI meaning.
func (b *Bridge) HandleEvent(ev window.Event) (closed bool) {
	if IsCloseSignal(ev) {
		return true
	}
	uev, ok := Translate(ev)
	if !ok {
		if b.dropped != nil {
			b.dropped.Inc()
		}
		return false
	}
	b.ui.HandleEvent(uev)
	return false
}

// SetWidgets declares this frame's widgets from the current parameter
// values and writes slider drags straight back to the registry.
func (b *Bridge) SetWidgets(f *ui.Frame) {
	width, _ := b.ui.Size()
	sliderW := max(width-180, 40)

	f.Label(b.ids.Title, 20, 20, "DDSoftClip")
	if b.curve != 0 {
		f.Image(b.ids.Curve, ui.Rect{X: width - 100, Y: 16, W: 80, H: 80}, b.curve)
	}

	b.slider(f, ParamThreshold, b.ids.Threshold, b.ids.ThresholdLabel,
		ui.Rect{X: 20, Y: 140, W: sliderW, H: 24}, nil)
	b.slider(f, ParamGain, b.ids.Gain, b.ids.GainLabel,
		ui.Rect{X: 20, Y: 220, W: sliderW, H: 24}, param.DecibelFormatter)
}

func (b *Bridge) slider(f *ui.Frame, index int32, id, labelID ui.WidgetID, r ui.Rect, extra func(float64) string) {
	p, err := b.params.At(index)
	if err != nil {
		return
	}

	value := p.GetValue()
	if next, changed := f.Slider(id, r, value, p.Min, p.Max); changed {
		_ = b.params.Set(index, next)
		value = p.GetValue()
		if b.onEdit != nil {
			b.onEdit(index, value)
		}
	}

	text := p.Name + ": " + p.FormatValue(value) + p.Unit
	if extra != nil {
		text += " (" + extra(value) + ")"
	}
	f.Label(labelID, r.X, r.Y-20, text)
}

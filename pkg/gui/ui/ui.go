// Package ui is a small immediate-mode widget library. Widgets are declared
// every frame against a Frame; the Ui keeps only per-widget interaction
// state keyed by WidgetID and reports whether the resulting primitive list
// differs from the last one drawn.
package ui

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/cespare/xxhash/v2"
)

// WidgetID identifies a widget across frames. Zero is never issued.
type WidgetID uint32

// IDGenerator issues widget ids for one Ui.
type IDGenerator struct {
	next WidgetID
}

// Next returns a fresh id.
func (g *IDGenerator) Next() WidgetID {
	g.next++
	return g.next
}

// Rect is an axis-aligned rectangle in pixels, origin top-left.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// PrimitiveKind selects how a Primitive is painted.
type PrimitiveKind uint8

// Primitive kinds.
const (
	PrimRect PrimitiveKind = iota
	PrimText
	PrimImage
)

// ImageID references an image held by the renderer's image map.
type ImageID uint32

// Primitive is one paint operation produced by a widget.
type Primitive struct {
	Widget WidgetID
	Kind   PrimitiveKind
	Rect   Rect
	Color  color.RGBA
	Text   string
	Image  ImageID
}

// Theme holds widget colors.
type Theme struct {
	Background color.RGBA
	Track      color.RGBA
	Fill       color.RGBA
	FillActive color.RGBA
	Text       color.RGBA
}

// DefaultTheme is a dark theme.
var DefaultTheme = Theme{
	Background: color.RGBA{0x1e, 0x1f, 0x24, 0xff},
	Track:      color.RGBA{0x3a, 0x3c, 0x44, 0xff},
	Fill:       color.RGBA{0xd9, 0x5b, 0x43, 0xff},
	FillActive: color.RGBA{0xf0, 0x7a, 0x5f, 0xff},
	Text:       color.RGBA{0xe8, 0xe8, 0xe8, 0xff},
}

type pointer struct {
	x, y    float64
	pressed bool
	px, py  float64 // position of the pending press
}

// Ui owns interaction state and the last drawn primitive list.
type Ui struct {
	width, height float64
	theme         Theme
	gen           IDGenerator

	mouse    pointer
	release  bool
	captured WidgetID
	focused  bool

	// active is the slider arrow keys move: the last one grabbed, or the
	// first one declared.
	active WidgetID
	nudge  int

	frame     Frame
	prims     []Primitive
	scratch   []byte
	lastHash  uint64
	drawn     bool
	needsDraw bool
}

// New creates a Ui for a surface of the given size.
func New(width, height float64) *Ui {
	return &Ui{
		width:     width,
		height:    height,
		theme:     DefaultTheme,
		focused:   true,
		needsDraw: true,
	}
}

// WidgetIDGenerator returns the generator for this Ui's widget ids.
func (u *Ui) WidgetIDGenerator() *IDGenerator {
	return &u.gen
}

// SetTheme replaces the widget colors.
func (u *Ui) SetTheme(t Theme) {
	u.theme = t
	u.needsDraw = true
}

// Size returns the surface size.
func (u *Ui) Size() (width, height float64) {
	return u.width, u.height
}

// Resize updates the surface size and forces the next frame to be drawn.
func (u *Ui) Resize(width, height float64) {
	if width == u.width && height == u.height {
		return
	}
	u.width, u.height = width, height
	u.needsDraw = true
}

// Active returns the slider that arrow keys move, or zero before any
// slider was declared.
func (u *Ui) Active() WidgetID {
	return u.active
}

// Captured returns the widget holding the pointer, or zero.
func (u *Ui) Captured() WidgetID {
	return u.captured
}

// HandleEvent feeds one input event into the Ui.
func (u *Ui) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventMouseMove:
		u.mouse.x, u.mouse.y = ev.X, ev.Y
	case EventPress:
		if ev.Button != ButtonLeft {
			return
		}
		u.mouse.x, u.mouse.y = ev.X, ev.Y
		u.mouse.pressed = true
		u.mouse.px, u.mouse.py = ev.X, ev.Y
	case EventRelease:
		if ev.Button != ButtonLeft {
			return
		}
		u.mouse.x, u.mouse.y = ev.X, ev.Y
		u.release = true
	case EventKeyPress:
		switch ev.Key {
		case KeyRight, KeyUp:
			u.nudge++
		case KeyLeft, KeyDown:
			u.nudge--
		}
	case EventResize:
		u.Resize(ev.Width, ev.Height)
	case EventFocus:
		u.focused = ev.Focused
		if !ev.Focused {
			u.captured = 0
		}
	case EventRedraw:
		u.needsDraw = true
	}
}

// SetWidgets starts a new frame. Input received since the previous frame
// is handed to the widgets declared on the returned Frame.
func (u *Ui) SetWidgets() *Frame {
	u.frame = Frame{
		ui:      u,
		press:   u.mouse.pressed,
		pressX:  u.mouse.px,
		pressY:  u.mouse.py,
		release: u.release,
		nudge:   u.nudge,
	}
	u.mouse.pressed = false
	u.release = false
	u.nudge = 0
	u.prims = u.prims[:0]
	u.prims = append(u.prims, Primitive{
		Kind:  PrimRect,
		Rect:  Rect{W: u.width, H: u.height},
		Color: u.theme.Background,
	})
	return &u.frame
}

// DrawIfChanged returns the frame's primitives when they differ from the
// last returned list, or when a redraw was requested. The returned slice
// is only valid until the next SetWidgets.
func (u *Ui) DrawIfChanged() ([]Primitive, bool) {
	if u.frame.release {
		u.captured = 0
	}
	h := u.hashPrimitives()
	if u.drawn && !u.needsDraw && h == u.lastHash {
		return nil, false
	}
	u.lastHash = h
	u.drawn = true
	u.needsDraw = false
	return u.prims, true
}

func (u *Ui) hashPrimitives() uint64 {
	b := u.scratch[:0]
	for i := range u.prims {
		p := &u.prims[i]
		b = binary.LittleEndian.AppendUint32(b, uint32(p.Widget))
		b = append(b, byte(p.Kind), p.Color.R, p.Color.G, p.Color.B, p.Color.A)
		for _, f := range [...]float64{p.Rect.X, p.Rect.Y, p.Rect.W, p.Rect.H} {
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
		}
		b = binary.LittleEndian.AppendUint32(b, uint32(p.Image))
		b = append(b, p.Text...)
		b = append(b, 0)
	}
	u.scratch = b
	return xxhash.Sum64(b)
}

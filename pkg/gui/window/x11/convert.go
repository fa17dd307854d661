package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/deathdisco/softclip/pkg/gui/window"
)

// Keysyms from X11/keysymdef.h.
const (
	keysymEscape xproto.Keysym = 0xff1b
	keysymLeft   xproto.Keysym = 0xff51
	keysymUp     xproto.Keysym = 0xff52
	keysymRight  xproto.Keysym = 0xff53
	keysymDown   xproto.Keysym = 0xff54
)

// putImageHeader is the fixed size of a PutImage request in bytes.
const putImageHeader = 24

func keysymToKey(sym xproto.Keysym) window.Key {
	switch sym {
	case keysymEscape:
		return window.KeyEscape
	case keysymLeft:
		return window.KeyLeft
	case keysymRight:
		return window.KeyRight
	case keysymUp:
		return window.KeyUp
	case keysymDown:
		return window.KeyDown
	default:
		return window.KeyOther
	}
}

// keymap is the first keysym column of the server's keyboard mapping.
type keymap struct {
	min     xproto.Keycode
	perCode int
	syms    []xproto.Keysym
}

func (m keymap) lookup(code xproto.Keycode) xproto.Keysym {
	if m.perCode <= 0 || code < m.min {
		return 0
	}
	i := int(code-m.min) * m.perCode
	if i >= len(m.syms) {
		return 0
	}
	return m.syms[i]
}

// translator maps xproto events for one window into window.Events.
type translator struct {
	self         xproto.Window
	keys         keymap
	wmProtocols  xproto.Atom
	wmDeleteWin  xproto.Atom
	lastW, lastH uint16
}

func (t *translator) translate(ev xgb.Event) (window.Event, bool) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		return window.Event{
			Kind: window.EventKeyPressed,
			Key:  keysymToKey(t.keys.lookup(e.Detail)),
			X:    int(e.EventX),
			Y:    int(e.EventY),
		}, true
	case xproto.KeyReleaseEvent:
		return window.Event{
			Kind: window.EventKeyReleased,
			Key:  keysymToKey(t.keys.lookup(e.Detail)),
			X:    int(e.EventX),
			Y:    int(e.EventY),
		}, true
	case xproto.ButtonPressEvent:
		return window.Event{
			Kind:   window.EventMouseButtonPressed,
			Button: window.Button(e.Detail),
			X:      int(e.EventX),
			Y:      int(e.EventY),
		}, true
	case xproto.ButtonReleaseEvent:
		return window.Event{
			Kind:   window.EventMouseButtonReleased,
			Button: window.Button(e.Detail),
			X:      int(e.EventX),
			Y:      int(e.EventY),
		}, true
	case xproto.MotionNotifyEvent:
		return window.Event{
			Kind: window.EventMouseMoved,
			X:    int(e.EventX),
			Y:    int(e.EventY),
		}, true
	case xproto.ConfigureNotifyEvent:
		if e.Window != t.self || (e.Width == t.lastW && e.Height == t.lastH) {
			return window.Event{}, false
		}
		t.lastW, t.lastH = e.Width, e.Height
		return window.Event{
			Kind:   window.EventResized,
			Width:  int(e.Width),
			Height: int(e.Height),
		}, true
	case xproto.ExposeEvent:
		if e.Count != 0 {
			return window.Event{}, false
		}
		return window.Event{Kind: window.EventExposed}, true
	case xproto.FocusInEvent:
		return window.Event{Kind: window.EventFocus, Focused: true}, true
	case xproto.FocusOutEvent:
		return window.Event{Kind: window.EventFocus, Focused: false}, true
	case xproto.DestroyNotifyEvent:
		if e.Window != t.self {
			return window.Event{}, false
		}
		return window.Event{Kind: window.EventClosed}, true
	case xproto.ClientMessageEvent:
		if t.wmDeleteWin != 0 && e.Type == t.wmProtocols && e.Format == 32 &&
			len(e.Data.Data32) > 0 && xproto.Atom(e.Data.Data32[0]) == t.wmDeleteWin {
			return window.Event{Kind: window.EventClosed}, true
		}
		return window.Event{Kind: window.EventUnknown}, true
	default:
		return window.Event{Kind: window.EventUnknown}, true
	}
}

// bandRows returns how many rows of a width-pixel 32bpp image fit in one
// core PutImage request. maxRequest is in 4-byte units as reported by the
// server setup.
func bandRows(maxRequest uint16, width int) int {
	if width <= 0 {
		return 0
	}
	rows := (int(maxRequest)*4 - putImageHeader) / (width * 4)
	return max(rows, 1)
}

// rgbaToBGRX converts src (RGBA, premultiplied, opaque in practice) into
// the little-endian 32bpp TrueColor layout X servers expect.
func rgbaToBGRX(dst, src []byte) []byte {
	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]
	for i := 0; i+3 < len(src); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = 0
	}
	return dst
}

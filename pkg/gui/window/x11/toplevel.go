package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/deathdisco/softclip/pkg/gui/window"
)

// TopLevel is a decorated application window that can lend its XID to an
// editor, the way a plugin host does.
type TopLevel struct {
	conn *xgb.Conn
	win  xproto.Window
	tr   translator
}

// OpenTopLevel creates and maps a top-level window of the given size.
func OpenTopLevel(display, title string, width, height int) (*TopLevel, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display: %w", err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("allocate window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, wid, screen.Root,
		0, 0, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{screen.BlackPixel, xproto.EventMaskStructureNotify},
	).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create window: %w", err)
	}

	t := &TopLevel{conn: conn, win: wid, tr: translator{self: wid}}
	t.tr.wmProtocols, t.tr.wmDeleteWin = internDeleteAtoms(conn)

	xproto.ChangeProperty(conn, xproto.PropModeReplace, wid, xproto.AtomWmName,
		xproto.AtomString, 8, uint32(len(title)), []byte(title))
	if t.tr.wmProtocols != 0 && t.tr.wmDeleteWin != 0 {
		data := make([]byte, 4)
		xgb.Put32(data, uint32(t.tr.wmDeleteWin))
		xproto.ChangeProperty(conn, xproto.PropModeReplace, wid, t.tr.wmProtocols,
			xproto.AtomAtom, 32, 1, data)
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		t.Close()
		return nil, fmt.Errorf("map window: %w", err)
	}
	return t, nil
}

// Handle returns the window's XID as a borrowed handle.
func (t *TopLevel) Handle() window.Handle {
	return window.Handle(t.win)
}

// CloseRequested drains pending events and reports whether the user asked
// the window manager to close the window.
func (t *TopLevel) CloseRequested() bool {
	closed := false
	for {
		ev, xerr := t.conn.PollForEvent()
		if ev == nil && xerr == nil {
			return closed
		}
		if ev == nil {
			continue
		}
		if out, ok := t.tr.translate(ev); ok && out.Kind == window.EventClosed {
			closed = true
		}
	}
}

// Close destroys the window and closes the connection.
func (t *TopLevel) Close() {
	xproto.DestroyWindow(t.conn, t.win)
	_, _ = xproto.GetInputFocus(t.conn).Reply()
	t.conn.Close()
}

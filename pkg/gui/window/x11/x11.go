// Package x11 implements window.Backend on the X11 core protocol. The
// editor surface is a child window of the host's XID; the parent is never
// modified or destroyed.
package x11

import (
	"fmt"
	"image"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/deathdisco/softclip/pkg/framework/debug"
	"github.com/deathdisco/softclip/pkg/gui/window"
)

const eventMask = xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskFocusChange

// Backend opens one X connection per surface.
type Backend struct {
	// Display is the X display name; empty uses $DISPLAY.
	Display string
	Logger  *debug.Logger
}

// CreateSurface implements window.Backend.
func (b *Backend) CreateSurface(h window.Handle, opts window.SurfaceOptions) (window.Surface, error) {
	conn, err := xgb.NewConnDisplay(b.Display)
	if err != nil {
		return nil, &window.SurfaceCreationError{Reason: "connect to X display", Err: err}
	}

	s, err := newSurface(conn, xproto.Window(h), opts)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.logger = b.Logger
	if s.logger == nil {
		s.logger = debug.Default()
	}
	return s, nil
}

type surface struct {
	conn   *xgb.Conn
	win    xproto.Window
	gc     xproto.Gcontext
	depth  byte
	maxReq uint16
	tr     translator
	logger *debug.Logger

	pixels []byte
	closed bool
}

func newSurface(conn *xgb.Conn, parent xproto.Window, opts window.SurfaceOptions) (*surface, error) {
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	// The parent must exist on this display.
	if _, err := xproto.GetGeometry(conn, xproto.Drawable(parent)).Reply(); err != nil {
		return nil, &window.SurfaceCreationError{Reason: fmt.Sprintf("parent window 0x%x", uint32(parent)), Err: err}
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, &window.SurfaceCreationError{Reason: "allocate window id", Err: err}
	}

	err = xproto.CreateWindowChecked(conn, screen.RootDepth, wid, parent,
		0, 0, uint16(opts.Width), uint16(opts.Height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{screen.BlackPixel, uint32(eventMask)},
	).Check()
	if err != nil {
		return nil, &window.SurfaceCreationError{Reason: "create child window", Err: err}
	}

	s := &surface{
		conn:   conn,
		win:    wid,
		depth:  screen.RootDepth,
		maxReq: setup.MaximumRequestLength,
		tr:     translator{self: wid},
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, &window.SurfaceCreationError{Reason: "allocate graphics context", Err: err}
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, &window.SurfaceCreationError{Reason: "create graphics context", Err: err}
	}
	s.gc = gc

	s.tr.keys = loadKeymap(conn, setup)
	s.tr.wmProtocols, s.tr.wmDeleteWin = internDeleteAtoms(conn)

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		s.release()
		return nil, &window.SurfaceCreationError{Reason: "map child window", Err: err}
	}
	return s, nil
}

func loadKeymap(conn *xgb.Conn, setup *xproto.SetupInfo) keymap {
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return keymap{}
	}
	return keymap{
		min:     setup.MinKeycode,
		perCode: int(reply.KeysymsPerKeycode),
		syms:    reply.Keysyms,
	}
}

func internDeleteAtoms(conn *xgb.Conn) (protocols, deleteWindow xproto.Atom) {
	intern := func(name string) xproto.Atom {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return 0
		}
		return reply.Atom
	}
	return intern("WM_PROTOCOLS"), intern("WM_DELETE_WINDOW")
}

// InnerSize implements window.Surface.
func (s *surface) InnerSize() (int, int, bool) {
	reply, err := xproto.GetGeometry(s.conn, xproto.Drawable(s.win)).Reply()
	if err != nil || reply == nil {
		return 0, 0, false
	}
	return int(reply.Width), int(reply.Height), true
}

// PollEvents implements window.Surface.
func (s *surface) PollEvents(dst []window.Event) []window.Event {
	for {
		ev, xerr := s.conn.PollForEvent()
		if ev == nil && xerr == nil {
			return dst
		}
		if xerr != nil {
			s.logger.Warn("x11: %v", xerr)
			continue
		}
		if out, ok := s.tr.translate(ev); ok {
			dst = append(dst, out)
		}
	}
}

// Present implements window.Surface.
func (s *surface) Present(frame *image.RGBA) error {
	if s.closed {
		return fmt.Errorf("x11: present on destroyed surface")
	}
	b := frame.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	s.pixels = rgbaToBGRX(s.pixels, frame.Pix[:height*frame.Stride])
	stride := frame.Stride
	rows := bandRows(s.maxReq, width)

	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		band := s.pixels[y*stride : (y+n)*stride]
		err := xproto.PutImageChecked(s.conn, xproto.ImageFormatZPixmap,
			xproto.Drawable(s.win), s.gc,
			uint16(width), uint16(n), 0, int16(y), 0, s.depth, band,
		).Check()
		if err != nil {
			return fmt.Errorf("x11: put image: %w", err)
		}
	}
	return nil
}

// Destroy implements window.Surface.
func (s *surface) Destroy() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.release()
	// Round trip so the requests are flushed before the connection goes.
	_, _ = xproto.GetInputFocus(s.conn).Reply()
	s.conn.Close()
	return nil
}

// release frees server-side resources; the connection stays open.
func (s *surface) release() {
	if s.gc != 0 {
		xproto.FreeGC(s.conn, s.gc)
	}
	xproto.DestroyWindow(s.conn, s.win)
}

// Package windowtest provides an in-memory window backend for tests.
package windowtest

import (
	"errors"
	"image"
	"sync"

	"github.com/deathdisco/softclip/pkg/gui/window"
)

// ErrSurfaceLost is what a Surface returns from Present after Lose.
var ErrSurfaceLost = errors.New("windowtest: surface lost")

// Backend records every surface it creates.
type Backend struct {
	mu sync.Mutex

	// Err, when set, is returned by CreateSurface.
	Err error
	// Setup, when set, configures each new surface before it is returned.
	Setup func(*Surface)

	surfaces []*Surface
}

// CreateSurface implements window.Backend.
func (b *Backend) CreateSurface(h window.Handle, opts window.SurfaceOptions) (window.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Err != nil {
		return nil, b.Err
	}
	s := &Surface{
		Parent: h,
		width:  opts.Width,
		height: opts.Height,
	}
	if b.Setup != nil {
		b.Setup(s)
	}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

// Surfaces returns the surfaces created so far.
func (b *Backend) Surfaces() []*Surface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Surface(nil), b.surfaces...)
}

// Last returns the most recently created surface, or nil.
func (b *Backend) Last() *Surface {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.surfaces) == 0 {
		return nil
	}
	return b.surfaces[len(b.surfaces)-1]
}

// Surface is a scripted window.Surface.
type Surface struct {
	Parent window.Handle

	mu            sync.Mutex
	width, height int
	sizeFailures  int
	sizeCalls     int
	events        []window.Event
	presented     int
	lastFrame     *image.RGBA
	presentErr    error
	destroyed     bool
	onDestroy     func()
}

// FailSizeQueries makes the next n InnerSize calls report no size.
func (s *Surface) FailSizeQueries(n int) {
	s.mu.Lock()
	s.sizeFailures = n
	s.mu.Unlock()
}

// OnDestroy registers a hook run by Destroy.
func (s *Surface) OnDestroy(fn func()) {
	s.mu.Lock()
	s.onDestroy = fn
	s.mu.Unlock()
}

// Push queues events for the next PollEvents.
func (s *Surface) Push(events ...window.Event) {
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
}

// Lose makes every later Present fail.
func (s *Surface) Lose() {
	s.mu.Lock()
	s.presentErr = ErrSurfaceLost
	s.mu.Unlock()
}

// Presented returns the number of successful presents.
func (s *Surface) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// LastFrame returns a copy of the last presented frame, or nil.
func (s *Surface) LastFrame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFrame == nil {
		return nil
	}
	cp := *s.lastFrame
	cp.Pix = append([]uint8(nil), s.lastFrame.Pix...)
	return &cp
}

// SizeCalls returns how often InnerSize was called.
func (s *Surface) SizeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeCalls
}

// Destroyed reports whether Destroy ran.
func (s *Surface) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// InnerSize implements window.Surface.
func (s *Surface) InnerSize() (int, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizeCalls++
	if s.sizeFailures != 0 {
		if s.sizeFailures > 0 {
			s.sizeFailures--
		}
		return 0, 0, false
	}
	return s.width, s.height, true
}

// PollEvents implements window.Surface.
func (s *Surface) PollEvents(dst []window.Event) []window.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	dst = append(dst, s.events...)
	s.events = s.events[:0]
	return dst
}

// Present implements window.Surface.
func (s *Surface) Present(frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSurfaceLost
	}
	if s.presentErr != nil {
		return s.presentErr
	}
	s.presented++
	s.lastFrame = frame
	return nil
}

// Destroy implements window.Surface.
func (s *Surface) Destroy() error {
	s.mu.Lock()
	s.destroyed = true
	hook := s.onDestroy
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

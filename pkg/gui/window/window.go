// Package window builds a drawable surface inside a native window owned by
// the host application and tears it down in a fixed order.
package window

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/deathdisco/softclip/pkg/gui/raster"
)

// Handle is a native window handle lent to the editor by the host (an XID
// on X11). The host owns the window; Handle deliberately has no Close.
type Handle uintptr

// IsValid reports whether the handle is non-null.
func (h Handle) IsValid() bool {
	return h != 0
}

// SurfaceOptions describe the surface requested inside the handle.
type SurfaceOptions struct {
	Width  int
	Height int
	Title  string

	// Dimension query retry bounds.
	SizeRetries int
	SizeTimeout time.Duration
}

// DefaultSurfaceOptions matches the editor's fixed layout.
func DefaultSurfaceOptions() SurfaceOptions {
	return SurfaceOptions{
		Width:       500,
		Height:      300,
		Title:       "softclip",
		SizeRetries: 5,
		SizeTimeout: 50 * time.Millisecond,
	}
}

// Backend creates surfaces inside foreign windows.
type Backend interface {
	CreateSurface(h Handle, opts SurfaceOptions) (Surface, error)
}

// Surface is a drawable area inside a borrowed handle. Implementations are
// used from a single goroutine.
type Surface interface {
	// InnerSize reports the drawable size; ok is false when the surface
	// cannot report it yet.
	InnerSize() (width, height int, ok bool)
	// PollEvents appends pending events to dst without blocking.
	PollEvents(dst []Event) []Event
	// Present shows frame; an error means the surface is gone.
	Present(frame *image.RGBA) error
	// Destroy releases the surface. The native parent is left alone.
	Destroy() error
}

var (
	// ErrSurfaceCreationFailed matches every *SurfaceCreationError.
	ErrSurfaceCreationFailed = errors.New("window: surface creation failed")
	// ErrDimensionQueryFailed is returned when a new surface never reports its size.
	ErrDimensionQueryFailed = errors.New("window: dimension query failed")
)

// SurfaceCreationError carries the backend's reason for refusing a handle.
type SurfaceCreationError struct {
	Reason string
	Err    error
}

func (e *SurfaceCreationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("surface creation failed: %s: %v", e.Reason, e.Err)
	}
	return "surface creation failed: " + e.Reason
}

// Is makes errors.Is(err, ErrSurfaceCreationFailed) hold.
func (e *SurfaceCreationError) Is(target error) bool {
	return target == ErrSurfaceCreationFailed
}

func (e *SurfaceCreationError) Unwrap() error {
	return e.Err
}

// Host owns a surface built inside a borrowed handle and the raster
// resources scoped to it.
type Host struct {
	handle   Handle
	surface  Surface
	renderer *raster.Renderer
	images   *raster.ImageMap

	width, height int

	closeOnce sync.Once
	closeErr  error
}

// New builds a surface inside handle and queries its size.
func New(backend Backend, handle Handle, opts SurfaceOptions) (*Host, error) {
	if !handle.IsValid() {
		return nil, &SurfaceCreationError{Reason: "null window handle"}
	}
	if backend == nil {
		return nil, &SurfaceCreationError{Reason: "no window backend"}
	}

	surface, err := backend.CreateSurface(handle, opts)
	if err != nil {
		var sce *SurfaceCreationError
		if errors.As(err, &sce) {
			return nil, err
		}
		return nil, &SurfaceCreationError{Reason: "backend refused handle", Err: err}
	}

	width, height, err := querySize(surface, opts)
	if err != nil {
		_ = surface.Destroy()
		return nil, err
	}

	return &Host{
		handle:   handle,
		surface:  surface,
		renderer: raster.NewRenderer(width, height),
		images:   raster.NewImageMap(),
		width:    width,
		height:   height,
	}, nil
}

// querySize retries InnerSize with exponential backoff; a surface that was
// just created may not be mapped yet.
func querySize(s Surface, opts SurfaceOptions) (int, int, error) {
	var width, height int

	timeout := opts.SizeTimeout
	if timeout <= 0 {
		timeout = DefaultSurfaceOptions().SizeTimeout
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxElapsedTime = timeout
	b.Reset()

	var policy backoff.BackOff = b
	if opts.SizeRetries > 0 {
		policy = backoff.WithMaxRetries(b, uint64(opts.SizeRetries-1))
	}

	err := backoff.Retry(func() error {
		w, h, ok := s.InnerSize()
		if !ok || w <= 0 || h <= 0 {
			return ErrDimensionQueryFailed
		}
		width, height = w, h
		return nil
	}, policy)
	if err != nil {
		return 0, 0, ErrDimensionQueryFailed
	}
	return width, height, nil
}

// Handle returns the borrowed native handle.
func (h *Host) Handle() Handle {
	return h.handle
}

// Surface returns the owned surface.
func (h *Host) Surface() Surface {
	return h.surface
}

// Renderer returns the raster target for this surface.
func (h *Host) Renderer() *raster.Renderer {
	return h.renderer
}

// Images returns the image map scoped to this surface.
func (h *Host) Images() *raster.ImageMap {
	return h.images
}

// Size returns the last known drawable size.
func (h *Host) Size() (width, height int) {
	return h.width, h.height
}

// Resize records a new drawable size and resizes the frame buffer.
func (h *Host) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	h.width, h.height = width, height
	h.renderer.Resize(width, height)
}

// Close releases raster resources, then the surface, then drops the
// handle reference. Safe to call more than once.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		h.renderer.Release()
		h.images.Clear()

		h.closeErr = h.surface.Destroy()
		h.surface = nil

		h.handle = 0
	})
	return h.closeErr
}

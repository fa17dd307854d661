// Package editor runs one editor session: a window host and its render
// loop on a dedicated OS thread, with a cancellation token and a join
// handle.
package editor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/deathdisco/softclip/pkg/framework/debug"
	"github.com/deathdisco/softclip/pkg/framework/param"
	"github.com/deathdisco/softclip/pkg/gui/bridge"
	"github.com/deathdisco/softclip/pkg/gui/loop"
	"github.com/deathdisco/softclip/pkg/gui/raster"
	"github.com/deathdisco/softclip/pkg/gui/ui"
	"github.com/deathdisco/softclip/pkg/gui/window"
)

// ErrOpenFailed wraps every construction failure reported by Open.
var ErrOpenFailed = errors.New("editor: failed to open")

// Config describes what a session is built from.
type Config struct {
	Backend  window.Backend
	Surface  window.SurfaceOptions
	Params   *param.Registry
	Logger   *debug.Logger
	Profiler *debug.Profiler
	Metrics  *loop.Metrics
	Interval time.Duration

	// OnEdit is called on the UI thread after a slider writes a parameter.
	OnEdit func(index int32, value float64)
}

// Session is an open editor.
type Session struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	loop *loop.Loop
	ids  bridge.Ids
	err  error

	closeOnce sync.Once
}

// Open builds the window host inside handle on a new OS-locked goroutine
// and starts the render loop there. It returns once construction has
// either succeeded or failed; on failure no session exists.
func Open(ctx context.Context, handle window.Handle, cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = debug.Default()
	}
	cfg.Logger = cfg.Logger.With("editor")
	if cfg.Params == nil {
		return nil, fmt.Errorf("%w: no parameters", ErrOpenFailed)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ready := make(chan error, 1)

	go s.run(ctx, handle, cfg, ready)

	if err := <-ready; err != nil {
		cancel()
		<-s.done
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	return s, nil
}

func (s *Session) run(ctx context.Context, handle window.Handle, cfg Config, ready chan<- error) {
	// Native windows belong to the thread that created them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	var (
		host    *window.Host
		started bool
	)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("editor panic: %v", r)
			cfg.Logger.Error("%v", err)
			s.setErr(err)
			if !started {
				if host != nil {
					_ = host.Close()
				}
				ready <- err
			}
		}
	}()

	host, err := window.New(cfg.Backend, handle, cfg.Surface)
	if err != nil {
		cfg.Logger.Error("editor failed to open: %v", err)
		ready <- err
		return
	}

	w, h := host.Size()
	u := ui.New(float64(w), float64(h))
	ids := bridge.NewIds(u.WidgetIDGenerator())
	curve := host.Images().Insert(raster.TransferCurve(64, ui.DefaultTheme.Fill))

	opts := []bridge.Option{bridge.WithCurve(curve)}
	if cfg.OnEdit != nil {
		opts = append(opts, bridge.WithEditHook(cfg.OnEdit))
	}
	if cfg.Metrics != nil {
		opts = append(opts, bridge.WithDroppedCounter(cfg.Metrics.EventsDropped))
	}
	b := bridge.New(u, cfg.Params, ids, opts...)

	l := loop.New(host, u, b, loop.Config{
		Interval: cfg.Interval,
		Logger:   cfg.Logger,
		Profiler: cfg.Profiler,
		Metrics:  cfg.Metrics,
	})

	s.mu.Lock()
	s.loop = l
	s.ids = ids
	s.mu.Unlock()

	cfg.Logger.Info("editor opened in window 0x%x (%dx%d)", uintptr(handle), w, h)
	started = true
	ready <- nil

	if err := l.Run(ctx); err != nil {
		s.setErr(err)
	}
	cfg.Logger.Info("editor closed")
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// Close cancels the render loop and waits for the UI thread to finish
// releasing the window host. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(s.cancel)
	<-s.done
	return s.Err()
}

// Done is closed once the UI thread has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Alive reports whether the UI thread is still running.
func (s *Session) Alive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Err returns why the session ended on its own, if it did.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Ids returns the session's widget ids.
func (s *Session) Ids() bridge.Ids {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids
}

// State returns the render loop's state.
func (s *Session) State() loop.State {
	s.mu.Lock()
	l := s.loop
	s.mu.Unlock()
	if l == nil {
		return loop.Closed
	}
	return l.State()
}

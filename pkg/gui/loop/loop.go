// Package loop runs the editor's frame scheduler.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deathdisco/softclip/pkg/framework/debug"
	"github.com/deathdisco/softclip/pkg/gui/bridge"
	"github.com/deathdisco/softclip/pkg/gui/ui"
	"github.com/deathdisco/softclip/pkg/gui/window"
)

// FrameInterval is the target frame period (~60 Hz).
const FrameInterval = 16 * time.Millisecond

// ErrSurfaceLost is returned by Run when presenting a frame failed.
var ErrSurfaceLost = errors.New("loop: surface lost")

// State of a Loop.
type State int32

// Loop states. Closed is terminal.
const (
	Running State = iota
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Closing:
		return "Closing"
	case Closed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config tunes a Loop. Zero values get defaults.
type Config struct {
	Interval time.Duration
	Logger   *debug.Logger
	Profiler *debug.Profiler
	Metrics  *Metrics
}

// Loop paces frames for one editor session. It owns host and releases it
// when Run returns.
type Loop struct {
	host   *window.Host
	ui     *ui.Ui
	bridge *bridge.Bridge
	cfg    Config

	state  atomic.Int32
	events []window.Event
	err    error
}

// New creates a Loop in the Running state.
func New(host *window.Host, u *ui.Ui, b *bridge.Bridge, cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = FrameInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = debug.Default()
	}
	if cfg.Profiler == nil {
		cfg.Profiler = debug.NewProfiler(1)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	return &Loop{
		host:   host,
		ui:     u,
		bridge: b,
		cfg:    cfg,
		events: make([]window.Event, 0, 64),
	}
}

// State returns the current state; safe from any goroutine.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}

// Run drives frames until ctx is cancelled, a close signal arrives or the
// surface is lost, then releases the window host. It returns an error
// wrapping ErrSurfaceLost in the last case and nil otherwise.
func (l *Loop) Run(ctx context.Context) error {
	if l.State() != Running {
		return l.err
	}
	defer l.shutdown()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	last := time.Now().Add(-l.cfg.Interval)
	for l.State() == Running {
		select {
		case <-ctx.Done():
			l.setState(Closing)
			continue
		default:
		}

		if wait := l.cfg.Interval - time.Since(last); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				l.setState(Closing)
				continue
			case <-timer.C:
			}
		}
		last = time.Now()

		l.frame()
	}
	return l.err
}

func (l *Loop) shutdown() {
	if err := l.host.Close(); err != nil {
		l.cfg.Logger.Warn("release window host: %v", err)
	}
	l.setState(Closed)
}

// frame runs one iteration: drain events, build widgets, draw if changed.
func (l *Loop) frame() {
	surface := l.host.Surface()

	l.events = surface.PollEvents(l.events[:0])
	for _, ev := range l.events {
		if ev.Kind == window.EventResized {
			l.host.Resize(ev.Width, ev.Height)
		}
		if l.bridge.HandleEvent(ev) {
			l.cfg.Logger.Info("editor close requested (%s)", ev.Kind)
			l.setState(Closing)
			return
		}
	}

	start := time.Now()
	m := l.cfg.Metrics

	l.bridge.SetWidgets(l.ui.SetWidgets())
	m.FramesBuilt.Inc()

	prims, changed := l.ui.DrawIfChanged()
	if !changed {
		m.FramesSkipped.Inc()
		return
	}

	r := l.host.Renderer()
	r.Fill(prims, l.host.Images())
	if err := surface.Present(r.Frame()); err != nil {
		m.PresentFailures.Inc()
		l.cfg.Logger.Error("present failed, closing editor: %v", err)
		l.err = fmt.Errorf("%w: %w", ErrSurfaceLost, err)
		l.setState(Closing)
		return
	}
	m.FramesPresented.Inc()

	elapsed := time.Since(start)
	m.FrameDuration.Observe(elapsed.Seconds())
	l.cfg.Profiler.Record("frame", elapsed)
}

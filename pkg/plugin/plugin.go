// Package plugin is the host-facing soft-clip effect: metadata, parameter
// access, audio processing and the editor lifecycle.
package plugin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/deathdisco/softclip/pkg/dsp/distortion"
	"github.com/deathdisco/softclip/pkg/framework/bus"
	"github.com/deathdisco/softclip/pkg/framework/debug"
	"github.com/deathdisco/softclip/pkg/framework/param"
	framework "github.com/deathdisco/softclip/pkg/framework/plugin"
	"github.com/deathdisco/softclip/pkg/framework/process"
	"github.com/deathdisco/softclip/pkg/gui/editor"
	"github.com/deathdisco/softclip/pkg/gui/loop"
	"github.com/deathdisco/softclip/pkg/gui/window"
)

// Parameter indices.
const (
	ParamThreshold int32 = 0
	ParamGain      int32 = 1
)

var (
	// ErrEditorOpen is returned by OpenEditor while a session is running.
	ErrEditorOpen = errors.New("plugin: editor already open")
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("plugin: closed")
)

// Descriptor is the static plugin description.
var Descriptor = framework.Info{
	ID:       "com.deathdisco.softclip",
	Name:     "DDSoftClip",
	Version:  "0.1.0",
	Vendor:   "DeathDisco",
	UniqueID: 7790,
	Category: framework.CategoryEffect,
}

// Plugin is one instance loaded by a host.
type Plugin struct {
	*framework.Base
	proc *framework.BaseProcessor

	cfg      Config
	logger   *debug.Logger
	ownsLog  bool
	profiler *debug.Profiler

	// Audio thread only.
	ctx       *process.Context
	clipper   *distortion.Clipper
	processFn func(ch int, in, out []float32)

	metrics   *loop.Metrics
	registry  *prometheus.Registry
	processed prometheus.Counter
	edits     prometheus.Counter

	// mu serialises editor open/close. Process never takes it.
	mu      sync.Mutex
	session *editor.Session

	closed atomic.Bool
}

// New creates an instance with threshold and gain at 100%.
func New(cfg Config) *Plugin {
	def := DefaultConfig()
	if cfg.Backend == nil {
		cfg.Backend = def.Backend
	}
	if cfg.Surface.Width <= 0 || cfg.Surface.Height <= 0 {
		cfg.Surface = def.Surface
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}

	p := &Plugin{
		Base:     framework.NewBase(Descriptor),
		proc:     framework.NewBaseProcessor(bus.NewStereoConfiguration()),
		cfg:      cfg,
		profiler: debug.NewProfiler(256),
		clipper:  distortion.NewClipper(),
		registry: prometheus.NewRegistry(),
	}
	p.initLogger()

	params := p.Parameters()
	if err := params.Add(
		param.New(uint32(ParamThreshold), "Threshold").
			ShortName("Thr").
			Range(param.DefaultFloor, param.DefaultCeiling).
			Default(param.DefaultCeiling).
			Percent().
			Build(),
		param.New(uint32(ParamGain), "Gain").
			Range(param.DefaultFloor, param.DefaultCeiling).
			Default(param.DefaultCeiling).
			Percent().
			Build(),
	); err != nil {
		// Static parameter table; only a programming error gets here.
		panic(err)
	}
	params.Freeze()

	p.ctx = process.NewContext(params)
	p.processFn = func(_ int, in, out []float32) {
		p.clipper.Process(in, out)
	}
	p.metrics = loop.NewMetrics(p.registry)
	f := promauto.With(p.registry)
	p.processed = f.NewCounter(prometheus.CounterOpts{
		Namespace: "softclip",
		Name:      "process_calls_total",
		Help:      "Audio buffers processed.",
	})
	p.edits = f.NewCounter(prometheus.CounterOpts{
		Namespace: "softclip",
		Subsystem: "editor",
		Name:      "parameter_edits_total",
		Help:      "Parameter writes made from the editor.",
	})

	p.logger.Info("%s %s created", Descriptor.Name, Descriptor.Version)
	return p
}

func (p *Plugin) initLogger() {
	switch {
	case p.cfg.Logger != nil:
		p.logger = p.cfg.Logger
	case p.cfg.LogFile != "":
		l, err := debug.NewFileLogger(p.cfg.LogFile, Descriptor.Name, debug.DefaultFlags)
		if err != nil {
			debug.Warn("softclip: %v; logging to stderr", err)
			p.logger = debug.Default()
			break
		}
		l.SetLevel(p.cfg.LogLevel)
		p.logger = l
		p.ownsLog = true
	default:
		p.logger = debug.Default()
	}
}

// GetInfo returns the static plugin metadata with the channel and
// parameter counts filled in.
func (p *Plugin) GetInfo() framework.Info {
	info := Descriptor
	info.Inputs = p.proc.InputChannels()
	info.Outputs = p.proc.OutputChannels()
	info.Parameters = p.Parameters().Count()
	return info
}

// Initialize records the host's processing setup.
func (p *Plugin) Initialize(sampleRate float64, maxBlockSize int32) error {
	p.ctx.SampleRate = sampleRate
	return p.proc.Initialize(sampleRate, maxBlockSize)
}

// SetActive records the host's activation state. The clip stage keeps no
// state between calls, so deactivation has nothing to reset.
func (p *Plugin) SetActive(active bool) {
	p.proc.SetActive(active)
}

// Processor exposes the audio setup.
func (p *Plugin) Processor() *framework.BaseProcessor {
	return p.proc
}

// CanBeAutomated reports whether the host may automate parameter index.
func (p *Plugin) CanBeAutomated(index int32) bool {
	prm, err := p.Parameters().At(index)
	if err != nil {
		return false
	}
	return prm.Automatable()
}

// GetParameter returns the value at index, or 0 for an unknown index.
func (p *Plugin) GetParameter(index int32) float32 {
	v, err := p.Parameters().Get(index)
	if err != nil {
		return 0
	}
	return float32(v)
}

// SetParameter stores value, clamped into range. Unknown indices are
// ignored; the host contract has no error channel here.
func (p *Plugin) SetParameter(index int32, value float32) {
	_ = p.Parameters().Set(index, float64(value))
}

// GetParameterName returns the parameter's name, or "".
func (p *Plugin) GetParameterName(index int32) string {
	name, _ := p.Parameters().NameOf(index)
	return name
}

// GetParameterText returns the display value, e.g. "50" for 0.5.
func (p *Plugin) GetParameterText(index int32) string {
	text, _ := p.Parameters().DisplayTextOf(index)
	return text
}

// GetParameterLabel returns the display unit, or "".
func (p *Plugin) GetParameterLabel(index int32) string {
	unit, _ := p.Parameters().UnitOf(index)
	return unit
}

// Process clips every input channel into the matching output channel.
// Threshold and gain are read once per call. It never blocks, allocates
// or fails.
func (p *Plugin) Process(inputs, outputs [][]float32) {
	p.ctx.Reset(inputs, outputs)
	if p.closed.Load() {
		p.ctx.Clear()
		return
	}

	p.clipper.SetThreshold(float32(p.ctx.Param(ParamThreshold)))
	p.clipper.SetGain(float32(p.ctx.Param(ParamGain)))
	p.ctx.ProcessChannels(p.processFn)
	p.processed.Inc()
}

// GetState encodes the parameters for the host's project file.
func (p *Plugin) GetState() ([]byte, error) {
	return p.State().Bytes()
}

// SetState restores parameters from a chunk produced by GetState. A chunk
// that fails to decode leaves the parameters untouched.
func (p *Plugin) SetState(data []byte) error {
	if err := p.State().Restore(data); err != nil {
		p.logger.Warn("restore state: %v", err)
		return err
	}
	return nil
}

// GetEditorRect returns the editor size in pixels.
func (p *Plugin) GetEditorRect() (width, height int) {
	return p.cfg.Surface.Width, p.cfg.Surface.Height
}

// OpenEditor builds an editor inside the host's native window and runs it
// on its own thread. On failure no session is kept and the plugin keeps
// processing audio.
func (p *Plugin) OpenEditor(handle window.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrClosed
	}
	if p.session != nil {
		if p.session.Alive() {
			return ErrEditorOpen
		}
		p.reapLocked()
	}

	s, err := editor.Open(context.Background(), handle, editor.Config{
		Backend:  p.cfg.Backend,
		Surface:  p.cfg.Surface,
		Params:   p.Parameters(),
		Logger:   p.logger,
		Profiler: p.profiler,
		Metrics:  p.metrics,
		Interval: p.cfg.FrameInterval,
		OnEdit:   p.onEdit,
	})
	if err != nil {
		return err
	}
	p.session = s
	return nil
}

func (p *Plugin) onEdit(index int32, value float64) {
	p.edits.Inc()
	if p.cfg.OnEdit != nil {
		p.cfg.OnEdit(index, value)
	}
}

// CloseEditor stops the editor and waits for its thread to exit. Without
// an open editor it does nothing.
func (p *Plugin) CloseEditor() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reapLocked()
}

func (p *Plugin) reapLocked() {
	if p.session == nil {
		return
	}
	if err := p.session.Close(); err != nil {
		p.logger.Debug("editor session ended: %v", err)
	}
	p.session = nil
}

// EditorOpen reports whether an editor session is running. A session that
// closed itself (Escape, surface loss) reports false.
func (p *Plugin) EditorOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil && p.session.Alive()
}

// Metrics returns the instance's metric registry.
func (p *Plugin) Metrics() prometheus.Gatherer {
	return p.registry
}

// Profiler returns the editor frame profiler.
func (p *Plugin) Profiler() *debug.Profiler {
	return p.profiler
}

// Logger returns the instance logger.
func (p *Plugin) Logger() *debug.Logger {
	return p.logger
}

// Close closes the editor, joining its thread, then retires the instance.
// Later calls do nothing.
func (p *Plugin) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.CloseEditor()
	p.logger.Info("%s closed", Descriptor.Name)
	if p.ownsLog {
		return p.logger.Close()
	}
	return nil
}

// Command softclip-host is a minimal standalone host for the soft-clip
// effect. It plays a sine tone through the plugin, embeds the editor in a
// top-level X11 window and logs output levels until the window closes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/deathdisco/softclip/pkg/framework/debug"
	"github.com/deathdisco/softclip/pkg/gui/window/x11"
	"github.com/deathdisco/softclip/pkg/plugin"
)

var (
	display   = flag.String("display", "", "X display (default $DISPLAY)")
	toneHz    = flag.Float64("tone", 220, "test tone frequency in Hz")
	amplitude = flag.Float64("amplitude", 1.5, "test tone peak amplitude before clipping")
	rate      = flag.Int("rate", 48000, "output sample rate")
	block     = flag.Int("block", 512, "processing block size in frames")
	threshold = flag.Float64("threshold", 0.5, "initial threshold (0.01-1)")
	gain      = flag.Float64("gain", 0.8, "initial output gain (0.01-1)")
	logFile   = flag.String("log", "", "write plugin diagnostics to this file")
	level     = flag.String("level", "info", "log level: debug, info, warn, error")
	verbose   = flag.Bool("debug", false, "shorthand for -level debug")
	stats     = flag.Duration("stats", 2*time.Second, "output level report interval")
	mute      = flag.Bool("mute", false, "run without opening the audio device")
)

const pollInterval = 50 * time.Millisecond

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "softclip-host: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	lvl, err := debug.ParseLevel(*level)
	if err != nil {
		return err
	}
	if *verbose {
		lvl = debug.LogLevelDebug
	}
	logger := debug.New(os.Stderr, "host", debug.DefaultFlags)
	logger.SetLevel(lvl)

	var src *toneSource

	cfg := plugin.DefaultConfig()
	cfg.Backend = &x11.Backend{Display: *display, Logger: logger.With("x11")}
	cfg.LogLevel = lvl
	if *logFile != "" {
		cfg.LogFile = *logFile
	} else {
		cfg.Logger = logger
	}
	cfg.OnEdit = func(index int32, value float64) {
		logger.Debug("edit: param %d = %.3f", index, value)
		if index == plugin.ParamGain {
			src.setCeiling(float32(value))
		}
	}

	p := plugin.New(cfg)
	if err := p.Initialize(float64(*rate), int32(*block)); err != nil {
		_ = p.Close()
		return fmt.Errorf("initialize plugin: %w", err)
	}
	p.SetActive(true)
	p.SetParameter(plugin.ParamThreshold, float32(*threshold))
	p.SetParameter(plugin.ParamGain, float32(*gain))

	meter := &debug.Meter{}
	src = newToneSource(p, float64(*rate), *toneHz, float32(*amplitude), *block, meter)
	src.setCeiling(p.GetParameter(plugin.ParamGain))

	var player *oto.Player
	if !*mute {
		player, err = startAudio(src, *rate)
		if err != nil {
			// The editor still works without sound.
			logger.Warn("audio disabled: %v", err)
		}
	}

	w, h := p.GetEditorRect()
	top, err := x11.OpenTopLevel(*display, plugin.Descriptor.Name, w, h)
	if err != nil {
		closeAudio(player)
		_ = p.Close()
		return fmt.Errorf("open host window: %w", err)
	}

	if err := p.OpenEditor(top.Handle()); err != nil {
		logger.Error("open editor: %v", err)
	} else {
		logger.Info("editor open (%dx%d); Escape or closing the window quits", w, h)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wait(ctx, p, top, meter, logger)

	// The editor lives inside top, so it goes first.
	closeAudio(player)
	if err := p.Close(); err != nil {
		logger.Warn("close plugin: %v", err)
	}
	top.Close()

	reportMetrics(logger, p.Metrics())
	logger.Debug("%s", p.Profiler().Report())
	return nil
}

func startAudio(src *toneSource, sampleRate int) (*oto.Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   40 * time.Millisecond,
	}
	octx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	player := octx.NewPlayer(src)
	player.Play()
	return player, nil
}

func closeAudio(player *oto.Player) {
	if player == nil {
		return
	}
	_ = player.Close()
}

// wait returns when the host window is closed, the editor closes itself
// or the process is signalled.
func wait(ctx context.Context, p *plugin.Plugin, top *x11.TopLevel, meter *debug.Meter, logger *debug.Logger) {
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	report := time.NewTicker(*stats)
	defer report.Stop()

	editorSeen := p.EditorOpen()
	for {
		select {
		case <-ctx.Done():
			logger.Info("signal received")
			return
		case <-report.C:
			logReading(logger, p, meter.Read())
		case <-poll.C:
			if top.CloseRequested() {
				logger.Info("host window closed")
				return
			}
			if editorSeen && !p.EditorOpen() {
				logger.Info("editor closed")
				return
			}
		}
	}
}

func logReading(logger *debug.Logger, p *plugin.Plugin, r debug.MeterReading) {
	if r.Buffers == 0 {
		logger.Debug("no audio rendered")
		return
	}
	logger.Info("threshold %s%%  gain %s%%  peak %.3f (%.1f dBFS)  rms %.3f  saturated %.1f%%",
		p.GetParameterText(plugin.ParamThreshold),
		p.GetParameterText(plugin.ParamGain),
		r.Peak, r.PeakDB(), r.RMS, 100*r.SaturationRatio())
	if r.NonFinite > 0 {
		logger.Error("%d non-finite output samples", r.NonFinite)
	}
}

package loop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are shared by every session of one plugin instance.
type Metrics struct {
	FramesBuilt     prometheus.Counter
	FramesPresented prometheus.Counter
	FramesSkipped   prometheus.Counter
	EventsDropped   prometheus.Counter
	PresentFailures prometheus.Counter
	FrameDuration   prometheus.Histogram
}

// NewMetrics registers the editor metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FramesBuilt: f.NewCounter(prometheus.CounterOpts{
			Namespace: "softclip",
			Subsystem: "editor",
			Name:      "frames_built_total",
			Help:      "Frames whose widgets were built.",
		}),
		FramesPresented: f.NewCounter(prometheus.CounterOpts{
			Namespace: "softclip",
			Subsystem: "editor",
			Name:      "frames_presented_total",
			Help:      "Frames rasterized and presented to the surface.",
		}),
		FramesSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "softclip",
			Subsystem: "editor",
			Name:      "frames_skipped_total",
			Help:      "Frames not drawn because the UI reported no change.",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "softclip",
			Subsystem: "editor",
			Name:      "events_dropped_total",
			Help:      "Window events with no UI translation.",
		}),
		PresentFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "softclip",
			Subsystem: "editor",
			Name:      "present_failures_total",
			Help:      "Presents that failed and ended the session.",
		}),
		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "softclip",
			Subsystem: "editor",
			Name:      "frame_duration_seconds",
			Help:      "Time to build, rasterize and present one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
}

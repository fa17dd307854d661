package plugin

import (
	"time"

	"github.com/deathdisco/softclip/pkg/framework/debug"
	"github.com/deathdisco/softclip/pkg/gui/loop"
	"github.com/deathdisco/softclip/pkg/gui/window"
	"github.com/deathdisco/softclip/pkg/gui/window/x11"
)

// Config controls one plugin instance.
type Config struct {
	// Backend builds editor surfaces. Defaults to the X11 backend.
	Backend window.Backend
	// Surface is the requested editor size and retry policy.
	Surface window.SurfaceOptions
	// FrameInterval paces the editor's render loop.
	FrameInterval time.Duration

	// Logger receives diagnostics. When nil, LogFile is opened if set,
	// otherwise the package default logger is used.
	Logger   *debug.Logger
	LogFile  string
	LogLevel debug.LogLevel

	// OnEdit notifies the host of a parameter change made in the editor.
	// It runs on the editor thread.
	OnEdit func(index int32, value float64)
}

// DefaultConfig returns the configuration used when a host loads the
// plugin without customisation.
func DefaultConfig() Config {
	return Config{
		Backend:       &x11.Backend{},
		Surface:       window.DefaultSurfaceOptions(),
		FrameInterval: loop.FrameInterval,
		LogLevel:      debug.LogLevelInfo,
	}
}

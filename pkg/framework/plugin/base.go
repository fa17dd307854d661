package plugin

import (
	"github.com/deathdisco/softclip/pkg/framework/param"
	"github.com/deathdisco/softclip/pkg/framework/state"
)

// Base provides core functionality for all plugins
type Base struct {
	Info   Info
	params *param.Registry
	state  *state.Manager
}

// NewBase creates a new plugin base
func NewBase(info Info) *Base {
	b := &Base{
		Info:   info,
		params: param.NewRegistry(),
	}

	// Initialize state manager with parameter registry
	b.state = state.NewManager(b.params)

	return b
}

// Parameters returns the parameter registry for configuration
func (b *Base) Parameters() *param.Registry {
	return b.params
}

// State returns the state codec bound to the registry
func (b *Base) State() *state.Manager {
	return b.state
}

// Package process provides the audio processing context handed to the DSP
// stage for one host buffer.
package process

import (
	"github.com/deathdisco/softclip/pkg/framework/param"
)

// Context wraps the host-supplied buffer pair for a single process call.
// It is owned by the audio thread and reused across calls; nothing in it
// allocates.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Parameter access
	params *param.Registry
}

// NewContext creates a new process context reading from params
func NewContext(params *param.Registry) *Context {
	return &Context{
		params: params,
	}
}

// Reset points the context at a new buffer pair
func (c *Context) Reset(input, output [][]float32) {
	c.Input = input
	c.Output = output
}

// Param returns the current value of a parameter, or 0 for an unknown index
func (c *Context) Param(index int32) float64 {
	v, err := c.params.Get(index)
	if err != nil {
		return 0
	}
	return v
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	c.ProcessChannels(func(_ int, input, output []float32) {
		copy(output, input)
	})
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch])
	}
}

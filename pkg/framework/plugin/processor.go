package plugin

import (
	"github.com/deathdisco/softclip/pkg/framework/bus"
)

// BaseProcessor tracks the host-negotiated audio setup: bus layout,
// sample rate, block size and activation.
type BaseProcessor struct {
	buses        *bus.Configuration
	sampleRate   float64
	maxBlockSize int32
	active       bool

	// Optional callbacks for customization
	onInitialize func(sampleRate float64, maxBlockSize int32) error
}

// NewBaseProcessor creates a new base processor with the given bus configuration
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration() // Default to stereo
	}

	return &BaseProcessor{
		buses:      buses,
		sampleRate: 44100,
	}
}

// Initialize records the processing setup and runs the OnInitialize callback.
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}

	return nil
}

// GetBuses returns the bus layout
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// SetActive records whether the host is running the processor.
func (b *BaseProcessor) SetActive(active bool) {
	b.active = active
}

// Active reports whether the processor is active
func (b *BaseProcessor) Active() bool {
	return b.active
}

// GetLatencySamples returns the processing latency, always zero
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the largest buffer the host promised to send
func (b *BaseProcessor) MaxBlockSize() int32 {
	return b.maxBlockSize
}

// InputChannels returns the total active input channel count
func (b *BaseProcessor) InputChannels() int32 {
	return b.buses.ChannelCount(bus.DirectionInput)
}

// OutputChannels returns the total active output channel count
func (b *BaseProcessor) OutputChannels() int32 {
	return b.buses.ChannelCount(bus.DirectionOutput)
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

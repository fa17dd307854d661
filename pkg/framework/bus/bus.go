// Package bus describes the audio buses a plugin exposes to its host.
package bus

import "fmt"

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	if d == DirectionInput {
		return "input"
	}
	return "output"
}

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// Info describes one audio bus.
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration is an ordered list of audio buses.
type Configuration struct {
	buses []Info
}

func symmetric(channels int32, in, out string) *Configuration {
	return &Configuration{
		buses: []Info{
			{Direction: DirectionInput, ChannelCount: channels, Name: in, BusType: TypeMain, IsActive: true},
			{Direction: DirectionOutput, ChannelCount: channels, Name: out, BusType: TypeMain, IsActive: true},
		},
	}
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return symmetric(2, "Stereo In", "Stereo Out")
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return symmetric(1, "Mono In", "Mono Out")
}

// Count returns the number of buses in direction.
func (c *Configuration) Count(direction Direction) int32 {
	count := int32(0)
	for _, b := range c.buses {
		if b.Direction == direction {
			count++
		}
	}
	return count
}

// Bus returns the index'th bus in direction, or nil.
func (c *Configuration) Bus(direction Direction, index int32) *Info {
	n := int32(0)
	for i := range c.buses {
		if c.buses[i].Direction != direction {
			continue
		}
		if n == index {
			return &c.buses[i]
		}
		n++
	}
	return nil
}

// SetActive switches a bus on or off. Inactive buses contribute no
// channels.
func (c *Configuration) SetActive(direction Direction, index int32, active bool) error {
	b := c.Bus(direction, index)
	if b == nil {
		return fmt.Errorf("bus: no %s bus at index %d", direction, index)
	}
	b.IsActive = active
	return nil
}

// ChannelCount sums the channels of all active buses in direction.
func (c *Configuration) ChannelCount(direction Direction) int32 {
	total := int32(0)
	for _, b := range c.buses {
		if b.Direction == direction && b.IsActive {
			total += b.ChannelCount
		}
	}
	return total
}

package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Default clamp bounds for host-normalized values. The floor is non-zero so
// that a parameter used as a divisor in the DSP stage can never reach zero.
const (
	DefaultFloor   = 0.01
	DefaultCeiling = 1.0
)

// Parameter represents a plugin parameter
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64
	Flags        uint32

	// Atomic value for lock-free access in audio thread
	value uint64 // Store as uint64 for atomic operations

	// Value formatting
	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
)

// GetValue returns the current value
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&p.value))
}

// SetValue stores value after clamping it to [Min, Max]. Out-of-range input
// is expected (hosts interpolate automation) and is never an error.
func (p *Parameter) SetValue(value float64) {
	atomic.StoreUint64(&p.value, math.Float64bits(p.Clamp(value)))
}

// Clamp limits value to the parameter's domain. NaN maps to Min.
func (p *Parameter) Clamp(value float64) float64 {
	if math.IsNaN(value) || value < p.Min {
		return p.Min
	}
	if value > p.Max {
		return p.Max
	}
	return value
}

// Automatable reports whether the host may automate this parameter.
func (p *Parameter) Automatable() bool {
	return p.Flags&CanAutomate != 0 && p.Flags&IsReadOnly == 0
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns value formatted for display
func (p *Parameter) FormatValue(value float64) string {
	if p.formatFunc != nil {
		return p.formatFunc(value)
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// DisplayText formats the current value.
func (p *Parameter) DisplayText() string {
	return p.FormatValue(p.GetValue())
}

// ParseValue parses a display string back into a clamped value
func (p *Parameter) ParseValue(str string) (float64, error) {
	parse := p.parseFunc
	if parse == nil {
		parse = func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	}
	v, err := parse(str)
	if err != nil {
		return 0, fmt.Errorf("parse %s value %q: %w", p.Name, str, err)
	}
	return p.Clamp(v), nil
}

// Normalize maps a value in [Min, Max] to [0, 1].
func (p *Parameter) Normalize(value float64) float64 {
	if p.Max == p.Min {
		return 0
	}
	return (p.Clamp(value) - p.Min) / (p.Max - p.Min)
}

// Denormalize maps a [0, 1] position back into [Min, Max].
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Clamp(p.Min + normalized*(p.Max-p.Min))
}

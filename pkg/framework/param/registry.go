package param

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrOutOfRange is returned for an index outside the registered count.
	ErrOutOfRange = errors.New("param: index out of range")
	// ErrRegistryFrozen is returned by Add once the registry has been frozen.
	ErrRegistryFrozen = errors.New("param: registry is frozen")
	// ErrIDMismatch is returned when a parameter ID does not equal its index.
	ErrIDMismatch = errors.New("param: id does not match registration index")
)

// Registry is the ordered, fixed-size parameter store shared by the audio
// callback and the editor. Parameters are indexed by their ID, which must
// equal their registration order. After Freeze the slice never changes, so
// lookups take no lock and every value access goes through the
// per-parameter atomic.
type Registry struct {
	params []*Parameter
	frozen atomic.Bool
	mu     sync.Mutex // guards Add only
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make([]*Parameter, 0),
	}
}

// Add registers parameters in order. It must not run concurrently with
// lookups; call it during plugin construction, then Freeze.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return ErrRegistryFrozen
	}

	for _, p := range params {
		if p.ID != uint32(len(r.params)) {
			return fmt.Errorf("%w: %q has id %d, expected %d", ErrIDMismatch, p.Name, p.ID, len(r.params))
		}
		r.params = append(r.params, p)
	}

	return nil
}

// Freeze fixes the parameter count for the lifetime of the registry.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// At retrieves a parameter by index
func (r *Registry) At(index int32) (*Parameter, error) {
	if index < 0 || int(index) >= len(r.params) {
		return nil, fmt.Errorf("%w: %d (count %d)", ErrOutOfRange, index, len(r.params))
	}
	return r.params[index], nil
}

// Get returns the current value of the parameter at index.
func (r *Registry) Get(index int32) (float64, error) {
	p, err := r.At(index)
	if err != nil {
		return 0, err
	}
	return p.GetValue(), nil
}

// Set clamps value into the parameter's domain and stores it. Only a bad
// index is an error.
func (r *Registry) Set(index int32, value float64) error {
	p, err := r.At(index)
	if err != nil {
		return err
	}
	p.SetValue(value)
	return nil
}

// NameOf returns the host-visible name of the parameter at index.
func (r *Registry) NameOf(index int32) (string, error) {
	p, err := r.At(index)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// DisplayTextOf returns the formatted current value of the parameter at index.
func (r *Registry) DisplayTextOf(index int32) (string, error) {
	p, err := r.At(index)
	if err != nil {
		return "", err
	}
	return p.DisplayText(), nil
}

// UnitOf returns the display unit label of the parameter at index.
func (r *Registry) UnitOf(index int32) (string, error) {
	p, err := r.At(index)
	if err != nil {
		return "", err
	}
	return p.Unit, nil
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	return int32(len(r.params))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	result := make([]*Parameter, len(r.params))
	copy(result, r.params)
	return result
}

// Snapshot appends the current value of every parameter to dst. Values are
// read one slot at a time; there is no cross-parameter consistency.
func (r *Registry) Snapshot(dst []float64) []float64 {
	for _, p := range r.params {
		dst = append(dst, p.GetValue())
	}
	return dst
}

// Package plugin holds the static plugin description and the base that
// owns the parameter registry and state codec.
package plugin

import (
	"errors"
	"hash/fnv"
)

// Category is the host-facing plugin category.
type Category int32

// Categories understood by hosts.
const (
	CategoryUnknown Category = iota
	CategoryEffect
	CategorySynth
	CategoryAnalysis
	CategoryMastering
)

// String returns the category name as hosts display it.
func (c Category) String() string {
	switch c {
	case CategoryEffect:
		return "Effect"
	case CategorySynth:
		return "Synth"
	case CategoryAnalysis:
		return "Analysis"
	case CategoryMastering:
		return "Mastering"
	default:
		return "Unknown"
	}
}

// Info contains plugin metadata
type Info struct {
	ID         string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name       string // Display name
	Version    string // Semantic version (e.g., "1.0.0")
	Vendor     string // Company/developer name
	UniqueID   int32  // Legacy numeric id some hosts key presets on
	Category   Category
	Inputs     int32
	Outputs    int32
	Parameters int32
}

// UID derives a stable 16-byte class id from the string ID.
func (i Info) UID() [16]byte {
	h := fnv.New128a()
	h.Write([]byte(i.ID))
	var uid [16]byte
	copy(uid[:], h.Sum(nil))
	return uid
}

// ValidateUID reports whether the info carries an ID a UID can be derived from.
func (i Info) ValidateUID() error {
	if i.ID == "" {
		return errors.New("plugin ID must not be empty")
	}
	return nil
}

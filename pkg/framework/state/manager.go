// Package state encodes parameter values into the opaque chunk the host
// stores with a project and restores on load.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/deathdisco/softclip/pkg/framework/param"
)

// Magic identifies a softclip state chunk.
const Magic = "DDCLIP"

// ErrInvalidFormat is returned when a chunk does not start with Magic.
var ErrInvalidFormat = errors.New("state: invalid format")

// Manager handles plugin state saving and loading
type Manager struct {
	version  uint32
	registry *param.Registry
}

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  1,
		registry: registry,
	}
}

// Save writes the plugin state to a writer
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, m.registry.Count()); err != nil {
		return err
	}

	for _, p := range m.registry.All() {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	return nil
}

// Load reads the plugin state from a reader. Values are clamped on the way
// in and unknown parameter ids are skipped.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if string(header) != Magic {
		return ErrInvalidFormat
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if version > m.version {
		return fmt.Errorf("state version %d is newer than supported version %d", version, m.version)
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("read parameter count: %w", err)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative parameter count %d", ErrInvalidFormat, count)
	}

	// Decode everything before applying so a truncated chunk changes nothing.
	type entry struct {
		id    uint32
		value float64
	}
	entries := make([]entry, 0, min(int(count), 1024))
	for i := int32(0); i < count; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e.id); err != nil {
			return fmt.Errorf("read parameter %d id: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &e.value); err != nil {
			return fmt.Errorf("read parameter %d value: %w", i, err)
		}
		entries = append(entries, e)
	}

	for _, e := range entries {
		// Ignore unknown parameters for forward compatibility
		_ = m.registry.Set(int32(e.id), e.value)
	}

	return nil
}

// Bytes returns the encoded state
func (m *Manager) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore decodes state produced by Bytes
func (m *Manager) Restore(data []byte) error {
	return m.Load(bytes.NewReader(data))
}

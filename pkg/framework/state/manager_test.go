package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/deathdisco/softclip/pkg/framework/param"
)

func newRegistry(t *testing.T) *param.Registry {
	t.Helper()
	r := param.NewRegistry()
	if err := r.Add(param.New(0, "Threshold").Build(), param.New(1, "Gain").Build()); err != nil {
		t.Fatal(err)
	}
	r.Freeze()
	return r
}

func TestRoundTrip(t *testing.T) {
	src := newRegistry(t)
	_ = src.Set(0, 0.3)
	_ = src.Set(1, 0.8)

	data, err := NewManager(src).Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	dst := newRegistry(t)
	if err := NewManager(dst).Restore(data); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	for i := int32(0); i < 2; i++ {
		want, _ := src.Get(i)
		got, _ := dst.Get(i)
		if got != want {
			t.Errorf("param %d = %v, want %v", i, got, want)
		}
	}
}

func TestLoadClampsAndSkipsUnknown(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(1))
	_ = binary.Write(&buf, binary.LittleEndian, int32(3))
	for _, e := range []struct {
		id    uint32
		value float64
	}{
		{0, -5},
		{1, math.NaN()},
		{42, 0.5},
	} {
		_ = binary.Write(&buf, binary.LittleEndian, e.id)
		_ = binary.Write(&buf, binary.LittleEndian, e.value)
	}

	r := newRegistry(t)
	if err := NewManager(r).Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := int32(0); i < 2; i++ {
		if v, _ := r.Get(i); v != param.DefaultFloor {
			t.Errorf("param %d = %v, want floor %v", i, v, param.DefaultFloor)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	valid, err := NewManager(newRegistry(t)).Bytes()
	if err != nil {
		t.Fatal(err)
	}

	newer := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(newer[len(Magic):], 99)

	tests := []struct {
		name string
		data []byte
		is   error
	}{
		{"Empty", nil, nil},
		{"BadMagic", []byte("SOFTCL\x01\x00\x00\x00"), ErrInvalidFormat},
		{"Truncated", valid[:len(valid)-3], nil},
		{"NewerVersion", newer, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t)
			_ = r.Set(0, 0.4)

			err := NewManager(r).Restore(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if v, _ := r.Get(0); v != 0.4 {
				t.Errorf("failed load changed param 0 to %v", v)
			}
		})
	}
}

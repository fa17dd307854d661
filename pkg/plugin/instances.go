package plugin

import (
	"strconv"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Hosts address instances through an opaque handle rather than a Go
// pointer; the table maps those handles back to instances.
var (
	instances  = cmap.New[*Plugin]()
	nextHandle atomic.Uintptr
)

func handleKey(h uintptr) string {
	return strconv.FormatUint(uint64(h), 16)
}

// Instantiate creates a plugin and returns its handle. Handles are never
// zero and never reused.
func Instantiate(cfg Config) uintptr {
	p := New(cfg)
	h := nextHandle.Add(1)
	instances.Set(handleKey(h), p)
	return h
}

// Lookup returns the instance for h, or nil.
func Lookup(h uintptr) *Plugin {
	if h == 0 {
		return nil
	}
	p, ok := instances.Get(handleKey(h))
	if !ok {
		return nil
	}
	return p
}

// Release closes the instance for h and forgets the handle. Unknown
// handles are ignored.
func Release(h uintptr) error {
	p, ok := instances.Pop(handleKey(h))
	if !ok {
		return nil
	}
	return p.Close()
}

// InstanceCount returns the number of live instances.
func InstanceCount() int {
	return instances.Count()
}

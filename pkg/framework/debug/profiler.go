package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler records timing statistics for named sections. It takes a lock per
// measurement, so it belongs on the editor thread, not in the audio callback.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	name        string
	count       uint64
	totalTime   time.Duration
	minTime     time.Duration
	maxTime     time.Duration
	lastTime    time.Duration
	samples     []time.Duration
	sampleIndex int
}

// NewProfiler creates a new profiler keeping the last maxSamples timings
// per section.
func NewProfiler(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = 1
	}
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   maxSamples,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a named section. Call the returned func to stop.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}

	start := time.Now()

	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures the execution time of a function.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores an externally measured duration for name.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	if !p.enabled.Load() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			name:    name,
			minTime: elapsed,
			maxTime: elapsed,
			samples: make([]time.Duration, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed

	if elapsed < m.minTime {
		m.minTime = elapsed
	}
	if elapsed > m.maxTime {
		m.maxTime = elapsed
	}

	m.samples[m.sampleIndex] = elapsed
	m.sampleIndex = (m.sampleIndex + 1) % p.maxSamples
}

// GetMeasurement returns a copy of the measurement for a named section.
func (p *Profiler) GetMeasurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return Measurement{}, false
	}
	return m.clone(), true
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.measurements = make(map[string]*Measurement)
}

// Report generates a performance report, sections sorted by name.
func (p *Profiler) Report() string {
	p.mu.RLock()
	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	p.mu.RUnlock()

	if len(names) == 0 {
		return "No measurements recorded"
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	for _, name := range names {
		m, ok := p.GetMeasurement(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s: count=%d avg=%v min=%v max=%v p95=%v last=%v\n",
			name, m.count, m.Average(), m.minTime, m.maxTime, m.Percentile(95), m.lastTime)
	}
	return sb.String()
}

func (m *Measurement) clone() Measurement {
	c := *m
	c.samples = append([]time.Duration(nil), m.samples...)
	return c
}

// Count returns how many timings were recorded.
func (m Measurement) Count() uint64 { return m.count }

// Last returns the most recent timing.
func (m Measurement) Last() time.Duration { return m.lastTime }

// Max returns the longest timing seen.
func (m Measurement) Max() time.Duration { return m.maxTime }

// Min returns the shortest timing seen.
func (m Measurement) Min() time.Duration { return m.minTime }

// Average returns the average time for this measurement.
func (m Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// Percentile calculates the given percentile (0-100) over the retained samples.
func (m Measurement) Percentile(p float64) time.Duration {
	n := len(m.samples)
	if uint64(n) > m.count {
		n = int(m.count)
	}
	if n == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), m.samples[:n]...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	return sorted[int(float64(n-1)*p/100.0)]
}

package debug

import (
	"fmt"
	"math"
	"sync/atomic"
)

// AudioAnalyzer measures level and saturation of audio buffers.
type AudioAnalyzer struct {
	ceiling          float32
	silenceThreshold float32
}

// NewAudioAnalyzer creates an analyzer that counts samples at or above
// ceiling (the clip stage's output gain) as saturated.
func NewAudioAnalyzer(ceiling float32) *AudioAnalyzer {
	if !(ceiling > 0) {
		ceiling = 1
	}
	return &AudioAnalyzer{
		ceiling:          ceiling,
		silenceThreshold: 0.0001,
	}
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples       int
	Peak          float32
	RMS           float32
	DC            float32
	SumSquares    float64
	Saturated     int
	Silent        bool
	NaNCount      int
	ZeroCrossings int
}

// Analyze scans one buffer. NaN and Inf samples are counted and left out
// of the level figures.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{Samples: len(buffer)}
	if len(buffer) == 0 {
		return result
	}

	// Saturated samples sit exactly on the ceiling; allow float32 rounding.
	limit := a.ceiling * (1 - 1e-6)

	var sum float64
	var last float32
	for i, sample := range buffer {
		if math.IsNaN(float64(sample)) || math.IsInf(float64(sample), 0) {
			result.NaNCount++
			continue
		}

		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > result.Peak {
			result.Peak = abs
		}
		if abs >= limit {
			result.Saturated++
		}

		sum += float64(sample)
		result.SumSquares += float64(sample) * float64(sample)

		if i > 0 && (last < 0) != (sample < 0) {
			result.ZeroCrossings++
		}
		last = sample
	}

	n := float64(len(buffer))
	result.RMS = float32(math.Sqrt(result.SumSquares / n))
	result.DC = float32(sum / n)
	result.Silent = result.RMS < a.silenceThreshold

	return result
}

// CheckBuffer reports problems that mean the clip stage misbehaved:
// non-finite samples or output above ceiling.
func (a *AudioAnalyzer) CheckBuffer(buffer []float32, name string) []string {
	var issues []string
	result := a.Analyze(buffer)

	if result.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d non-finite samples", name, result.NaNCount))
	}
	if result.Peak > a.ceiling*(1+1e-6) {
		issues = append(issues, fmt.Sprintf("%s: peak %.3f exceeds ceiling %.3f", name, result.Peak, a.ceiling))
	}
	return issues
}

// Meter accumulates buffer statistics on the audio goroutine and lets
// another goroutine read and reset them without locking.
type Meter struct {
	samples   atomic.Uint64
	saturated atomic.Uint64
	nonFinite atomic.Uint64
	peakBits  atomic.Uint32
	sumSqBits atomic.Uint64
	buffers   atomic.Uint64
}

// MeterReading is a snapshot of a Meter.
type MeterReading struct {
	Buffers   uint64
	Samples   uint64
	Peak      float32
	RMS       float32
	Saturated uint64
	NonFinite uint64
}

// SaturationRatio is the fraction of samples that hit the ceiling.
func (r MeterReading) SaturationRatio() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Saturated) / float64(r.Samples)
}

// PeakDB returns the peak in dBFS, or -Inf for silence.
func (r MeterReading) PeakDB() float64 {
	if r.Peak <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(r.Peak))
}

// Add folds an analysis result into the meter.
func (m *Meter) Add(r AnalysisResult) {
	m.buffers.Add(1)
	m.samples.Add(uint64(r.Samples))
	m.saturated.Add(uint64(r.Saturated))
	m.nonFinite.Add(uint64(r.NaNCount))

	for {
		old := m.peakBits.Load()
		if r.Peak <= math.Float32frombits(old) || m.peakBits.CompareAndSwap(old, math.Float32bits(r.Peak)) {
			break
		}
	}
	for {
		old := m.sumSqBits.Load()
		next := math.Float64frombits(old) + r.SumSquares
		if m.sumSqBits.CompareAndSwap(old, math.Float64bits(next)) {
			break
		}
	}
}

// Read returns the accumulated statistics and resets the meter.
func (m *Meter) Read() MeterReading {
	r := MeterReading{
		Buffers:   m.buffers.Swap(0),
		Samples:   m.samples.Swap(0),
		Saturated: m.saturated.Swap(0),
		NonFinite: m.nonFinite.Swap(0),
		Peak:      math.Float32frombits(m.peakBits.Swap(0)),
	}
	sumSq := math.Float64frombits(m.sumSqBits.Swap(0))
	if r.Samples > 0 {
		r.RMS = float32(math.Sqrt(sumSq / float64(r.Samples)))
	}
	return r
}

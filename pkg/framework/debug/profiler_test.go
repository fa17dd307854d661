package debug

import (
	"strings"
	"testing"
	"time"
)

func TestProfiler(t *testing.T) {
	t.Run("BasicProfiling", func(t *testing.T) {
		p := NewProfiler(100)

		stop := p.Start("test")
		time.Sleep(10 * time.Millisecond)
		stop()

		m, exists := p.GetMeasurement("test")
		if !exists {
			t.Fatal("Measurement not found")
		}
		if m.Count() != 1 {
			t.Errorf("Expected count 1, got %d", m.Count())
		}
		if m.Last() < 10*time.Millisecond {
			t.Error("Timing seems too short")
		}
	})

	t.Run("MultipleRuns", func(t *testing.T) {
		p := NewProfiler(100)

		for i := 0; i < 5; i++ {
			p.Record("multi", time.Duration(i+1)*time.Millisecond)
		}

		m, exists := p.GetMeasurement("multi")
		if !exists {
			t.Fatal("Measurement not found")
		}
		if m.Count() != 5 {
			t.Errorf("Expected count 5, got %d", m.Count())
		}
		if m.Average() != 3*time.Millisecond {
			t.Errorf("Average = %v, want 3ms", m.Average())
		}
		if m.Min() != time.Millisecond || m.Max() != 5*time.Millisecond {
			t.Errorf("min/max = %v/%v, want 1ms/5ms", m.Min(), m.Max())
		}
	})

	t.Run("Percentile", func(t *testing.T) {
		p := NewProfiler(10)
		for _, ms := range []int{9, 1, 5, 3, 7} {
			p.Record("frame", time.Duration(ms)*time.Millisecond)
		}

		m, _ := p.GetMeasurement("frame")
		if got := m.Percentile(0); got != time.Millisecond {
			t.Errorf("P0 = %v, want 1ms", got)
		}
		if got := m.Percentile(50); got != 5*time.Millisecond {
			t.Errorf("P50 = %v, want 5ms", got)
		}
		if got := m.Percentile(100); got != 9*time.Millisecond {
			t.Errorf("P100 = %v, want 9ms", got)
		}
	})

	t.Run("RingWraps", func(t *testing.T) {
		p := NewProfiler(2)
		p.Record("wrap", time.Millisecond)
		p.Record("wrap", 2*time.Millisecond)
		p.Record("wrap", 3*time.Millisecond)

		m, _ := p.GetMeasurement("wrap")
		if got := m.Percentile(0); got != 2*time.Millisecond {
			t.Errorf("oldest retained sample = %v, want 2ms", got)
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		p := NewProfiler(10)
		p.SetEnabled(false)

		p.Time("off", func() {})
		p.Record("off", time.Millisecond)

		if _, exists := p.GetMeasurement("off"); exists {
			t.Error("Disabled profiler should not record")
		}
	})

	t.Run("Report", func(t *testing.T) {
		p := NewProfiler(10)
		if got := p.Report(); got != "No measurements recorded" {
			t.Errorf("empty report = %q", got)
		}

		p.Record("present", time.Millisecond)
		p.Record("build", time.Millisecond)
		report := p.Report()
		if strings.Index(report, "build") > strings.Index(report, "present") {
			t.Errorf("report not sorted by name:\n%s", report)
		}

		p.Reset()
		if _, exists := p.GetMeasurement("build"); exists {
			t.Error("Reset should clear measurements")
		}
	})
}

func BenchmarkProfiler(b *testing.B) {
	p := NewProfiler(1000)

	b.Run("Record", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			p.Record("bench", time.Microsecond)
		}
	})

	b.Run("Disabled", func(b *testing.B) {
		p.SetEnabled(false)
		for i := 0; i < b.N; i++ {
			p.Start("bench")()
		}
	})
}

package plugin

import (
	"testing"

	"github.com/deathdisco/softclip/pkg/framework/bus"
)

func TestBaseProcessorDefaults(t *testing.T) {
	p := NewBaseProcessor(nil)

	if p.InputChannels() != 2 || p.OutputChannels() != 2 {
		t.Errorf("default channels = %d/%d, want 2/2", p.InputChannels(), p.OutputChannels())
	}
	if p.SampleRate() != 44100 {
		t.Errorf("default sample rate = %v, want 44100", p.SampleRate())
	}
	if p.GetLatencySamples() != 0 {
		t.Error("latency should be zero")
	}
}

func TestBaseProcessorInitialize(t *testing.T) {
	p := NewBaseProcessor(bus.NewMonoConfiguration())

	var gotRate float64
	p.OnInitialize(func(sampleRate float64, maxBlockSize int32) error {
		gotRate = sampleRate
		return nil
	})

	if err := p.Initialize(48000, 512); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if gotRate != 48000 || p.SampleRate() != 48000 || p.MaxBlockSize() != 512 {
		t.Errorf("setup not recorded: rate=%v callback=%v block=%d", p.SampleRate(), gotRate, p.MaxBlockSize())
	}
	if p.InputChannels() != 1 {
		t.Errorf("mono input channels = %d, want 1", p.InputChannels())
	}
}

func TestBaseProcessorActivation(t *testing.T) {
	p := NewBaseProcessor(nil)
	if p.Active() {
		t.Fatal("new processor should be inactive")
	}

	p.SetActive(true)
	if !p.Active() {
		t.Error("processor should be active")
	}
	p.SetActive(false)
	if p.Active() {
		t.Error("processor should be inactive")
	}
}

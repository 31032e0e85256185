// ABOUTME: Tests for audio sources and PCM helpers
// ABOUTME: Covers the test tone generator, stereo downmix, and encoding
package server

import (
	"math"
	"testing"
)

func TestTestToneSourceRead(t *testing.T) {
	source := NewTestToneSource(48000)

	samples := make([]int16, 960)
	n, err := source.Read(samples)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 960 {
		t.Errorf("expected 960 samples, got %d", n)
	}

	// First sample of a sine is zero; the tone must not be silence
	if samples[0] != 0 {
		t.Errorf("expected first sample 0, got %d", samples[0])
	}
	nonZero := false
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("tone generated only silence")
	}
}

func TestTestToneSourceContinuity(t *testing.T) {
	source := NewTestToneSource(48000)

	first := make([]int16, 480)
	second := make([]int16, 480)
	source.Read(first)
	source.Read(second)

	// Second read continues the waveform where the first left off
	expected := int16(math.Sin(2*math.Pi*440.0*float64(480)/48000.0) * 32767.0 * 0.5)
	if second[0] != expected {
		t.Errorf("expected continued waveform sample %d, got %d", expected, second[0])
	}
}

func TestDownmixStereo(t *testing.T) {
	// Two stereo frames: (100, 200) and (-100, -300)
	data := EncodePCM16([]int16{100, 200, -100, -300})

	out := make([]int16, 2)
	n := downmixStereo(data, out)
	if n != 2 {
		t.Fatalf("expected 2 mono samples, got %d", n)
	}
	if out[0] != 150 {
		t.Errorf("expected first sample 150, got %d", out[0])
	}
	if out[1] != -200 {
		t.Errorf("expected second sample -200, got %d", out[1])
	}
}

func TestEncodePCM16(t *testing.T) {
	data := EncodePCM16([]int16{1, -1})

	if len(data) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(data))
	}
	// Little-endian: 1 = 01 00, -1 = ff ff
	expected := []byte{0x01, 0x00, 0xff, 0xff}
	for i, b := range expected {
		if data[i] != b {
			t.Errorf("byte %d: expected %#x, got %#x", i, b, data[i])
		}
	}
}

func TestNewAudioSourceRejectsUnknownFormat(t *testing.T) {
	if _, err := NewAudioSource("song.wav", 48000); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewAudioSourceDefaultsToTone(t *testing.T) {
	source, err := NewAudioSource("", 48000)
	if err != nil {
		t.Fatalf("NewAudioSource failed: %v", err)
	}
	defer source.Close()

	if source.SampleRate() != 48000 {
		t.Errorf("expected 48000 Hz, got %d", source.SampleRate())
	}
	title, _, _ := source.Metadata()
	if title != "Test Tone" {
		t.Errorf("expected test tone source, got %q", title)
	}
}

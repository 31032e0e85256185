// ABOUTME: Tests for audio sample types
// ABOUTME: Tests buffer duration math and Linear16 conversions
package audio

import (
	"testing"
	"time"
)

func TestBufferDuration(t *testing.T) {
	tests := []struct {
		name       string
		samples    int
		sampleRate int
		want       time.Duration
	}{
		{"one second at 48k", 48000, 48000, time.Second},
		{"half second at 24k", 12000, 24000, 500 * time.Millisecond},
		{"20ms at 16k", 320, 16000, 20 * time.Millisecond},
		{"empty buffer", 0, 48000, 0},
		{"zero sample rate", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Buffer{Samples: make([]float64, tt.samples), SampleRate: tt.sampleRate}
			if got := buf.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleToFloat(t *testing.T) {
	if got := SampleToFloat(0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}

	if got := SampleToFloat(-32768); got != -1.0 {
		t.Errorf("expected -1.0, got %v", got)
	}

	// Positive full scale is asymmetric: 32767/32768, not 1.0
	got := SampleToFloat(32767)
	want := 32767.0 / 32768.0
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got >= 1.0 {
		t.Errorf("positive full scale must stay below 1.0, got %v", got)
	}
}

func TestSampleFromFloat(t *testing.T) {
	if got := SampleFromFloat(0); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}

	if got := SampleFromFloat(-1.0); got != -32768 {
		t.Errorf("expected -32768, got %d", got)
	}

	// Values beyond full scale clamp instead of wrapping
	if got := SampleFromFloat(2.0); got != 32767 {
		t.Errorf("expected clamp to 32767, got %d", got)
	}
	if got := SampleFromFloat(-2.0); got != -32768 {
		t.Errorf("expected clamp to -32768, got %d", got)
	}
}

func TestSampleRoundTrip(t *testing.T) {
	for _, s := range []int16{-32768, -12345, -1, 0, 1, 12345, 32767} {
		if got := SampleFromFloat(SampleToFloat(s)); got != s {
			t.Errorf("round trip of %d gave %d", s, got)
		}
	}
}

// ABOUTME: Tests for oto device helpers
// ABOUTME: Tests sample-to-byte conversion and silence generation
package device

import (
	"testing"
	"time"

	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio"
)

func TestPCMBytes(t *testing.T) {
	buf := audio.Buffer{
		Samples:    []float64{0, -1.0, 256.0 / 32768.0},
		SampleRate: 48000,
	}

	out := pcmBytes(buf)
	if len(out) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(out))
	}

	// 0 -> 0x0000, -1.0 -> 0x8000, 256/32768 -> 0x0100 (little-endian)
	want := []byte{0x00, 0x00, 0x00, 0x80, 0x00, 0x01}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("byte %d: expected 0x%02X, got 0x%02X", i, want[i], out[i])
		}
	}
}

func TestSilenceBytes(t *testing.T) {
	tests := []struct {
		name string
		rate int
		dur  time.Duration
		want int
	}{
		{"20ms at 48k", 48000, 20 * time.Millisecond, 960 * 2},
		{"zero duration", 48000, 0, 0},
		{"negative duration", 48000, -time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := silenceBytes(tt.rate, tt.dur)
			if len(out) != tt.want {
				t.Errorf("expected %d bytes, got %d", tt.want, len(out))
			}
			for _, b := range out {
				if b != 0 {
					t.Fatal("silence must be all zero bytes")
				}
			}
		})
	}
}

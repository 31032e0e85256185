// ABOUTME: Tests for the Opus chunk encoder
// ABOUTME: Tests encoder creation, encoding, and frame size handling
package server

import (
	"testing"
)

func TestNewOpusEncoder(t *testing.T) {
	frameSize := 960 // 20ms at 48kHz
	encoder, err := NewOpusEncoder(48000, frameSize)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	if encoder.sampleRate != 48000 {
		t.Errorf("expected sampleRate 48000, got %d", encoder.sampleRate)
	}
	if encoder.frameSize != frameSize {
		t.Errorf("expected frameSize %d, got %d", frameSize, encoder.frameSize)
	}
}

func TestOpusEncoderInvalidSampleRate(t *testing.T) {
	// Opus only supports 8, 12, 16, 24, 48 kHz
	_, err := NewOpusEncoder(44100, 960)
	if err == nil {
		t.Fatal("expected error for invalid sample rate 44100")
	}
}

func TestOpusEncodeValidFrame(t *testing.T) {
	encoder, err := NewOpusEncoder(48000, 960)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	pcm := make([]int16, 960)
	for i := range pcm {
		pcm[i] = int16(i * 10)
	}

	encoded, err := encoder.Encode(pcm)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if len(encoded) == 0 {
		t.Fatal("expected non-empty encoded output")
	}
	if len(encoded) >= len(pcm)*2 {
		t.Errorf("expected compression, but encoded size %d >= PCM size %d", len(encoded), len(pcm)*2)
	}
}

func TestOpusEncodeWrongFrameSize(t *testing.T) {
	encoder, err := NewOpusEncoder(48000, 960)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	pcm := make([]int16, 100)
	if _, err := encoder.Encode(pcm); err == nil {
		t.Fatal("expected error for wrong frame size")
	}
}

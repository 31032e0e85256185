// ABOUTME: Tests for the Linear16 PCM decoder
// ABOUTME: Tests normalization, alignment failures, and purity
package decode

import (
	"errors"
	"testing"
	"time"
)

func TestPCM16Decode(t *testing.T) {
	// 0x0100 = 256, 0x0302 = 770 (little-endian)
	input := []byte{0x00, 0x01, 0x02, 0x03}

	buf, err := PCM16(input, 48000)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(buf.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(buf.Samples))
	}

	if buf.Samples[0] != 256.0/32768.0 {
		t.Errorf("expected first sample %v, got %v", 256.0/32768.0, buf.Samples[0])
	}
	if buf.Samples[1] != 770.0/32768.0 {
		t.Errorf("expected second sample %v, got %v", 770.0/32768.0, buf.Samples[1])
	}

	if buf.SampleRate != 48000 {
		t.Errorf("expected sample rate 48000, got %d", buf.SampleRate)
	}
}

func TestPCM16DecodeNegative(t *testing.T) {
	// 0x8000 = -32768, the only sample reaching exactly -1.0
	buf, err := PCM16([]byte{0x00, 0x80}, 16000)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if buf.Samples[0] != -1.0 {
		t.Errorf("expected -1.0, got %v", buf.Samples[0])
	}
}

func TestPCM16DecodePositiveFullScale(t *testing.T) {
	// 0x7FFF = 32767 maps below 1.0 (asymmetric range)
	buf, err := PCM16([]byte{0xFF, 0x7F}, 16000)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if want := 32767.0 / 32768.0; buf.Samples[0] != want {
		t.Errorf("expected %v, got %v", want, buf.Samples[0])
	}
}

func TestPCM16DecodeMisaligned(t *testing.T) {
	_, err := PCM16([]byte{0x00, 0x01, 0x02}, 48000)
	if err == nil {
		t.Fatal("expected error for odd payload length")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned, got %v", err)
	}
}

func TestPCM16DecodeInvalidSampleRate(t *testing.T) {
	for _, rate := range []int{0, -48000} {
		if _, err := PCM16([]byte{0x00, 0x01}, rate); err == nil {
			t.Errorf("expected error for sample rate %d", rate)
		}
	}
}

func TestPCM16DecodeEmpty(t *testing.T) {
	buf, err := PCM16(nil, 48000)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(buf.Samples) != 0 {
		t.Errorf("expected 0 samples, got %d", len(buf.Samples))
	}
	if buf.Duration() != 0 {
		t.Errorf("expected zero duration, got %v", buf.Duration())
	}
}

func TestPCM16DecodeIdempotent(t *testing.T) {
	input := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}

	first, err := PCM16(input, 24000)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	second, err := PCM16(input, 24000)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(first.Samples) != len(second.Samples) {
		t.Fatalf("sample counts differ: %d vs %d", len(first.Samples), len(second.Samples))
	}
	for i := range first.Samples {
		if first.Samples[i] != second.Samples[i] {
			t.Errorf("sample %d differs: %v vs %v", i, first.Samples[i], second.Samples[i])
		}
	}
}

func TestPCM16DecodeDuration(t *testing.T) {
	// 960 samples at 48kHz is a 20ms chunk
	input := make([]byte, 960*2)
	buf, err := PCM16(input, 48000)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Duration() != 20*time.Millisecond {
		t.Errorf("expected 20ms, got %v", buf.Duration())
	}
}

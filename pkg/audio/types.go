// ABOUTME: Audio sample type definitions
// ABOUTME: Defines normalized mono buffers and Linear16 conversions
package audio

import "time"

// Int16Scale is the Linear16 normalization divisor. The resulting range is
// asymmetric: -32768 maps to exactly -1.0 while +32767 maps to 0.99996948...
const Int16Scale = 32768.0

// Buffer is a decoded mono sample sequence normalized to [-1.0, 1.0].
// Buffers are immutable once created.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the playback length of the buffer
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	seconds := float64(len(b.Samples)) / float64(b.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// SampleToFloat converts a signed 16-bit PCM sample to a normalized float
func SampleToFloat(s int16) float64 {
	return float64(s) / Int16Scale
}

// SampleFromFloat converts a normalized float to a signed 16-bit PCM sample,
// clamping values outside [-1.0, 1.0]
func SampleFromFloat(f float64) int16 {
	v := f * Int16Scale
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

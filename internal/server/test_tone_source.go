// ABOUTME: Test tone generator audio source
// ABOUTME: Generates a mono 440Hz sine wave
package server

import (
	"math"
	"sync"
)

// TestToneSource generates a 440Hz test tone
type TestToneSource struct {
	sampleIndex uint64
	sampleMu    sync.Mutex
	sampleRate  int
	frequency   float64
}

// NewTestToneSource creates a tone generator at the given rate
func NewTestToneSource(sampleRate int) *TestToneSource {
	return &TestToneSource{
		sampleRate: sampleRate,
		frequency:  440.0, // A4 note
	}
}

func (s *TestToneSource) Read(samples []int16) (int, error) {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	for i := range samples {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		sample := math.Sin(2 * math.Pi * s.frequency * t)

		samples[i] = int16(sample * 32767.0 * 0.5) // 50% volume
	}

	s.sampleIndex += uint64(len(samples))

	return len(samples), nil
}

func (s *TestToneSource) SampleRate() int { return s.sampleRate }
func (s *TestToneSource) Metadata() (string, string, string) {
	return "Test Tone", "Chunkcast Server", "Reference Stream"
}
func (s *TestToneSource) Close() error { return nil }

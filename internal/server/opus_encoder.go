// ABOUTME: Opus audio encoder for bandwidth-efficient streaming
// ABOUTME: Wraps libopus to encode mono Linear16 chunks to Opus packets
package server

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusPacket is the largest packet libopus will produce
const maxOpusPacket = 4000

// OpusEncoder wraps the Opus encoder for mono audio
type OpusEncoder struct {
	encoder    *opus.Encoder
	sampleRate int
	frameSize  int // samples per frame
}

// NewOpusEncoder creates an encoder. frameSize is in samples
// (e.g. 960 for 20ms at 48kHz) and must be a valid Opus frame size.
func NewOpusEncoder(sampleRate, frameSize int) (*OpusEncoder, error) {
	encoder, err := opus.NewEncoder(sampleRate, 1, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	if err := encoder.SetBitrate(64000); err != nil {
		log.Warn("failed to set opus bitrate", "err", err)
	}

	return &OpusEncoder{
		encoder:    encoder,
		sampleRate: sampleRate,
		frameSize:  frameSize,
	}, nil
}

// Encode encodes one frame of mono PCM samples to an Opus packet
func (e *OpusEncoder) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) != e.frameSize {
		return nil, fmt.Errorf("expected %d samples per frame, got %d", e.frameSize, len(pcm))
	}

	output := make([]byte, maxOpusPacket)
	n, err := e.encoder.Encode(pcm, output)
	if err != nil {
		return nil, fmt.Errorf("opus encode failed: %w", err)
	}

	return output[:n], nil
}

// ABOUTME: Opus packet decoder for the wire boundary
// ABOUTME: Decodes Opus packets to Linear16 bytes for the PCM core
package decode

import (
	"encoding/binary"
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

// maxOpusFrame is the largest Opus frame size: 120ms at 48kHz
const maxOpusFrame = 5760

// Opus decodes mono Opus packets into Linear16 little-endian bytes. The
// player core only ever consumes Linear16; Opus exists so the transport
// can carry compressed chunks.
type Opus struct {
	decoder    *opus.Decoder
	sampleRate int
}

// NewOpus creates an Opus decoder for mono packets at the given rate
func NewOpus(sampleRate int) (*Opus, error) {
	dec, err := opus.NewDecoder(sampleRate, 1)
	if err != nil {
		return nil, &DecodeError{Codec: "opus", Err: fmt.Errorf("create decoder: %w", err)}
	}

	return &Opus{decoder: dec, sampleRate: sampleRate}, nil
}

// Decode converts one Opus packet to Linear16 little-endian bytes
func (d *Opus) Decode(packet []byte) ([]byte, error) {
	pcm := make([]int16, maxOpusFrame)

	n, err := d.decoder.Decode(packet, pcm)
	if err != nil {
		return nil, &DecodeError{Codec: "opus", Err: err}
	}

	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(pcm[i]))
	}
	return out, nil
}

// SampleRate returns the decoder's output sample rate
func (d *Opus) SampleRate() int {
	return d.sampleRate
}

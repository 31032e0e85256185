// ABOUTME: Chunkcast wire message definitions
// ABOUTME: JSON control envelope plus binary chunk framing
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Message is the top-level wrapper for all JSON control messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientHello is sent by players to initiate the handshake
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// StreamStart announces the stream format before the first chunk
type StreamStart struct {
	Codec      string `json:"codec"` // "pcm16" or "opus"
	SampleRate int    `json:"sample_rate"`
	ChunkMs    int    `json:"chunk_ms"`
	Title      string `json:"title,omitempty"`
}

// StreamEnd announces that no further chunks will follow
type StreamEnd struct {
	Reason string `json:"reason,omitempty"`
}

// PlayerUpdate reports the player's current state back to the server
type PlayerUpdate struct {
	State    string `json:"state"`
	Queued   int    `json:"queued"`
	InFlight int    `json:"in_flight"`
}

// chunkFrameType tags a binary frame as an audio chunk
const chunkFrameType byte = 0x00

// chunkHeaderSize is the binary frame header: 1 type byte + 8 sequence bytes
const chunkHeaderSize = 9

// EncodeChunkFrame packs a chunk into a binary frame with its sequence
// number. Sequence numbers let the receiver spot transport reordering,
// which the player's FIFO contract cannot tolerate.
func EncodeChunkFrame(seq uint64, payload []byte) []byte {
	frame := make([]byte, chunkHeaderSize+len(payload))
	frame[0] = chunkFrameType
	binary.BigEndian.PutUint64(frame[1:chunkHeaderSize], seq)
	copy(frame[chunkHeaderSize:], payload)
	return frame
}

// DecodeChunkFrame unpacks a binary chunk frame
func DecodeChunkFrame(frame []byte) (seq uint64, payload []byte, err error) {
	if len(frame) < chunkHeaderSize {
		return 0, nil, fmt.Errorf("chunk frame too short: %d bytes", len(frame))
	}
	if frame[0] != chunkFrameType {
		return 0, nil, fmt.Errorf("unknown binary frame type: %d", frame[0])
	}
	return binary.BigEndian.Uint64(frame[1:chunkHeaderSize]), frame[chunkHeaderSize:], nil
}

// ABOUTME: Package documentation for decoders
// ABOUTME: Describes chunk-to-buffer decoding
// Package decode converts encoded chunk payloads into sample buffers.
//
// PCM16 is the core decoder: every chunk the player consumes is Linear16.
// Opus is a wire-boundary helper that unpacks compressed chunks back to
// Linear16 before they reach the player.
package decode

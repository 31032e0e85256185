// ABOUTME: Package documentation for audio types
// ABOUTME: Describes the shared sample buffer model
// Package audio defines the sample buffer types shared by the decoder,
// the player core, and the output device.
//
// All decoded audio is mono float64 in [-1.0, 1.0]. A Buffer carries its
// own sample rate and derives its duration from it, which is what the
// playback scheduler uses to abut consecutive buffers.
package audio

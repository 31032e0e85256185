// ABOUTME: Package documentation for the player core
// ABOUTME: Describes the gapless chunk playback model
// Package player implements gapless playback of incrementally arriving
// Linear16 PCM chunks.
//
// Chunks are decoded into normalized sample buffers, queued FIFO, and
// scheduled against the output device's clock so that each buffer begins
// at the exact sample boundary where the previous one ends, independent
// of when chunks arrive. The player supports pause/resume and a full
// mid-stream reset, and emits an ended event when playback exhausts both
// the queue and the in-flight set.
//
// Example:
//
//	dev, _ := device.NewOto(48000)
//	p, _ := player.New(player.Config{Device: dev})
//	p.AddListener(player.EventEnded, func() { ... })
//	p.AddChunk(chunk, 48000)
//	p.Play()
//
// Note that Play only begins draining buffers that are already queued:
// a caller interleaving AddChunk and Play must call Play again after
// each chunk to guarantee playback starts.
package player

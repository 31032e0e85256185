// ABOUTME: Chunk streamer pacing Linear16 audio onto client connections
// ABOUTME: Reads from an AudioSource, frames chunks with sequence numbers
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/Chunkcast-Protocol/chunkcast-go/internal/protocol"
)

// Streamer paces chunk generation and fans chunks out to clients
type Streamer struct {
	server *Server
	source AudioSource

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// Opus encoding (nil when streaming raw pcm16)
	opusEnc *OpusEncoder

	chunkSamples int
	seq          uint64

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewStreamer creates a streamer for the configured codec
func NewStreamer(server *Server, source AudioSource) (*Streamer, error) {
	chunkSamples := (server.config.SampleRate * server.config.ChunkMs) / 1000

	s := &Streamer{
		server:       server,
		source:       source,
		clients:      make(map[string]*Client),
		chunkSamples: chunkSamples,
		stopChan:     make(chan struct{}),
	}

	if server.config.Codec == "opus" {
		enc, err := NewOpusEncoder(server.config.SampleRate, chunkSamples)
		if err != nil {
			return nil, fmt.Errorf("failed to create opus encoder: %w", err)
		}
		s.opusEnc = enc
	}

	return s, nil
}

// Run generates and sends chunks until Stop
func (s *Streamer) Run() {
	s.server.logger.Info("streamer starting",
		"codec", s.server.config.Codec,
		"rate", s.server.config.SampleRate,
		"chunk_ms", s.server.config.ChunkMs)

	ticker := time.NewTicker(time.Duration(s.server.config.ChunkMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendChunk(); err != nil {
				s.server.logger.Error("stream ended", "err", err)
				s.broadcastEnd(err.Error())
				return
			}
		case <-s.stopChan:
			s.server.logger.Info("streamer stopping")
			s.broadcastEnd("server shutdown")
			return
		}
	}
}

// Stop halts chunk generation
func (s *Streamer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// AddClient starts streaming to a client
func (s *Streamer) AddClient(client *Client) {
	s.clientsMu.Lock()
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	s.server.logger.Info("streamer: added client", "name", client.Name)

	title, _, _ := s.source.Metadata()
	start := protocol.StreamStart{
		Codec:      s.server.config.Codec,
		SampleRate: s.server.config.SampleRate,
		ChunkMs:    s.server.config.ChunkMs,
		Title:      title,
	}

	if err := s.server.sendMessage(client, "stream/start", start); err != nil {
		s.server.logger.Warn("could not send stream/start", "name", client.Name, "err", err)
	}
}

// RemoveClient stops streaming to a client
func (s *Streamer) RemoveClient(client *Client) {
	s.clientsMu.Lock()
	delete(s.clients, client.ID)
	s.clientsMu.Unlock()

	s.server.logger.Info("streamer: removed client", "name", client.Name)
}

// sendChunk reads one chunk from the source and fans it out
func (s *Streamer) sendChunk() error {
	samples := make([]int16, s.chunkSamples)
	n, err := s.source.Read(samples)
	if err != nil {
		return fmt.Errorf("source read failed: %w", err)
	}
	samples = samples[:n]
	if len(samples) == 0 {
		return nil
	}

	payload := EncodePCM16(samples)
	if s.opusEnc != nil {
		payload, err = s.opusEnc.Encode(samples)
		if err != nil {
			return fmt.Errorf("opus encode failed: %w", err)
		}
	}

	frame := protocol.EncodeChunkFrame(s.seq, payload)
	s.seq++

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		if err := s.server.sendBinary(client, frame); err != nil {
			s.server.logger.Warn("dropping chunk", "name", client.Name, "err", err)
		}
	}
	return nil
}

// broadcastEnd tells every client the stream is over
func (s *Streamer) broadcastEnd(reason string) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		if err := s.server.sendMessage(client, "stream/end", protocol.StreamEnd{Reason: reason}); err != nil {
			s.server.logger.Debug("could not send stream/end", "name", client.Name)
		}
	}
}

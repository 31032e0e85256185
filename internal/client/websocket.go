// ABOUTME: WebSocket client for the Chunkcast stream protocol
// ABOUTME: Handles connection, handshake, and message routing
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/Chunkcast-Protocol/chunkcast-go/internal/protocol"
)

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string
	Name       string
	Version    int
}

// Chunk is one received audio chunk with its transport sequence number
type Chunk struct {
	Seq  uint64
	Data []byte
}

// Client receives a chunk stream over WebSocket
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Message channels
	StreamStart chan protocol.StreamStart
	Chunks      chan Chunk
	StreamEnd   chan protocol.StreamEnd

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:      config,
		StreamStart: make(chan protocol.StreamStart, 1),
		Chunks:      make(chan Chunk, 100),
		StreamEnd:   make(chan protocol.StreamEnd, 1),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Connect establishes the WebSocket connection and performs the handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: "/chunkcast"}
	log.Info("connecting", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake exchanges hello messages
func (c *Client) handshake() error {
	hello := protocol.Message{
		Type: "client/hello",
		Payload: protocol.ClientHello{
			ClientID: c.config.ClientID,
			Name:     c.config.Name,
			Version:  c.config.Version,
		},
	}

	if err := c.sendJSON(hello); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}
	if msg.Type != "server/hello" {
		return fmt.Errorf("expected server/hello, got %s", msg.Type)
	}

	log.Info("handshake complete", "server", c.config.ServerAddr)
	return nil
}

// SendUpdate reports player state to the server
func (c *Client) SendUpdate(update protocol.PlayerUpdate) error {
	return c.sendJSON(protocol.Message{Type: "player/update", Payload: update})
}

// sendJSON sends one JSON control message
func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug("read error", "err", err)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			c.handleChunkFrame(data)
		case websocket.TextMessage:
			c.handleJSONMessage(data)
		}
	}
}

// handleChunkFrame routes one binary audio chunk
func (c *Client) handleChunkFrame(data []byte) {
	seq, payload, err := protocol.DecodeChunkFrame(data)
	if err != nil {
		log.Warn("dropping bad chunk frame", "err", err)
		return
	}

	select {
	case c.Chunks <- Chunk{Seq: seq, Data: payload}:
	case <-c.ctx.Done():
	}
}

// handleJSONMessage routes one JSON control message
func (c *Client) handleJSONMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn("failed to parse control message", "err", err)
		return
	}

	payloadBytes, _ := json.Marshal(msg.Payload)

	switch msg.Type {
	case "stream/start":
		var start protocol.StreamStart
		if err := json.Unmarshal(payloadBytes, &start); err != nil {
			log.Warn("bad stream/start payload", "err", err)
			return
		}
		select {
		case c.StreamStart <- start:
		case <-c.ctx.Done():
		}

	case "stream/end":
		var end protocol.StreamEnd
		json.Unmarshal(payloadBytes, &end)
		select {
		case c.StreamEnd <- end:
		case <-c.ctx.Done():
		}

	default:
		log.Debug("ignoring message", "type", msg.Type)
	}
}

// Close shuts the connection down
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.connected {
		c.connected = false
		return c.conn.Close()
	}
	return nil
}

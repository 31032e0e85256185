// ABOUTME: WebSocket server streaming Linear16 audio as sequenced chunks
// ABOUTME: Manages client connections, handshake, and the chunk streamer
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Chunkcast-Protocol/chunkcast-go/internal/discovery"
	"github.com/Chunkcast-Protocol/chunkcast-go/internal/protocol"
)

const (
	ProtocolVersion = 1

	DefaultSampleRate = 48000
	DefaultChunkMs    = 20
)

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	AudioFile  string      // Path to audio file to stream (MP3, FLAC). Empty = test tone
	Source     AudioSource // Custom source, overrides AudioFile
	Codec      string      // "pcm16" or "opus"
	SampleRate int
	ChunkMs    int
	Logger     *log.Logger
}

// Server streams audio chunks to connected players
type Server struct {
	config   Config
	serverID string
	logger   *log.Logger

	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*Client
	clientsMu sync.RWMutex

	streamer *Streamer

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client is one connected player
type Client struct {
	ID   string
	Name string
	Conn *websocket.Conn

	// Reported player state
	State    string
	Queued   int
	InFlight int

	sendChan chan interface{}

	mu sync.RWMutex
}

// New creates a server instance
func New(config Config) *Server {
	if config.SampleRate == 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.ChunkMs == 0 {
		config.ChunkMs = DefaultChunkMs
	}
	if config.Codec == "" {
		config.Codec = "pcm16"
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	return &Server{
		config:   config,
		serverID: uuid.New().String(),
		logger:   config.Logger,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local network deployments only; non-browser clients
				// carry no Origin header.
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
}

// Start runs the server until Stop is called or the listener fails
func (s *Server) Start() error {
	s.logger.Info("server starting", "name", s.config.Name, "id", s.serverID)

	source := s.config.Source
	if source == nil {
		var err error
		source, err = NewAudioSource(s.config.AudioFile, s.config.SampleRate)
		if err != nil {
			return fmt.Errorf("failed to open audio source: %w", err)
		}
	}

	streamer, err := NewStreamer(s, source)
	if err != nil {
		source.Close()
		return fmt.Errorf("failed to create streamer: %w", err)
	}
	s.streamer = streamer

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			s.logger.Warn("mDNS advertisement failed", "err", err)
		} else {
			s.logger.Info("mDNS advertisement started")
		}
	}

	s.mux.HandleFunc("/chunkcast", s.handleWebSocket)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.streamer.Run()
	}()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Info("listening", "addr", addr)

	s.httpServer = &http.Server{Addr: addr, Handler: s.mux}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		s.logger.Info("shutting down")
	case err := <-errChan:
		s.logger.Error("http server error", "err", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	s.streamer.Stop()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "err", err)
	}

	s.wg.Wait()
	s.logger.Info("server stopped")

	if serverErr != nil {
		return fmt.Errorf("http server failed: %w", serverErr)
	}
	return nil
}

// Stop requests shutdown
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "err", err)
		return
	}

	s.logger.Info("connection", "remote", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection performs the handshake and owns the read loop
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		return
	}
	s.shutdownMu.RUnlock()

	_, data, err := conn.ReadMessage()
	if err != nil {
		s.logger.Error("failed to read hello", "err", err)
		return
	}

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Error("bad hello", "err", err)
		return
	}
	if msg.Type != "client/hello" {
		s.logger.Error("expected client/hello", "got", msg.Type)
		return
	}

	helloData, _ := json.Marshal(msg.Payload)
	var hello protocol.ClientHello
	if err := json.Unmarshal(helloData, &hello); err != nil {
		s.logger.Error("bad client/hello payload", "err", err)
		return
	}
	if hello.ClientID == "" {
		s.logger.Error("client/hello missing client id")
		return
	}

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		State:    "idle",
		sendChan: make(chan interface{}, 100),
	}

	s.clientsMu.Lock()
	if _, exists := s.clients[hello.ClientID]; exists {
		s.clientsMu.Unlock()
		s.logger.Warn("rejecting duplicate client id", "id", hello.ClientID)
		conn.WriteJSON(protocol.Message{
			Type: "server/error",
			Payload: map[string]string{
				"error":   "duplicate_client_id",
				"message": "client id already connected",
			},
		})
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		s.clientsMu.Unlock()
		close(client.sendChan)
		s.logger.Info("client disconnected", "name", client.Name)
	}()

	if err := s.sendMessage(client, "server/hello", protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  ProtocolVersion,
	}); err != nil {
		s.logger.Error("failed to send server/hello", "err", err)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	s.streamer.AddClient(client)
	defer s.streamer.RemoveClient(client)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("read error", "err", err)
			}
			break
		}
		s.handleClientMessage(client, data)
	}
}

// clientWriter drains a client's send channel onto the wire
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			switch v := msg.(type) {
			case []byte:
				client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := client.Conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					s.logger.Debug("binary write failed", "err", err)
					return
				}
			default:
				data, err := json.Marshal(v)
				if err != nil {
					s.logger.Error("marshal failed", "err", err)
					continue
				}
				client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
					s.logger.Debug("text write failed", "err", err)
					return
				}
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleClientMessage(client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Error("bad message", "err", err)
		return
	}

	switch msg.Type {
	case "player/update":
		s.handlePlayerUpdate(client, msg.Payload)
	default:
		s.logger.Debug("ignoring message", "type", msg.Type)
	}
}

// handlePlayerUpdate records reported player state
func (s *Server) handlePlayerUpdate(client *Client, payload interface{}) {
	updateData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	var update protocol.PlayerUpdate
	if err := json.Unmarshal(updateData, &update); err != nil {
		s.logger.Error("bad player/update", "err", err)
		return
	}

	client.mu.Lock()
	client.State = update.State
	client.Queued = update.Queued
	client.InFlight = update.InFlight
	client.mu.Unlock()

	s.logger.Debug("player update", "name", client.Name, "state", update.State,
		"queued", update.Queued, "inflight", update.InFlight)
}

// sendMessage queues a JSON message for a client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	msg := protocol.Message{Type: msgType, Payload: payload}

	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// sendBinary queues a binary frame for a client
func (s *Server) sendBinary(client *Client, data []byte) error {
	select {
	case client.sendChan <- data:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

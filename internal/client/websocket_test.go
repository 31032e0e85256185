// ABOUTME: Tests for the WebSocket chunk stream client
// ABOUTME: Uses an httptest server speaking the Chunkcast protocol
package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Chunkcast-Protocol/chunkcast-go/internal/protocol"
)

var upgrader = websocket.Upgrader{}

// testServer upgrades connections, answers the hello, then hands the
// connection to fn.
func testServer(t *testing.T, fn func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("failed to read hello: %v", err)
			return
		}
		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Errorf("bad hello: %v", err)
			return
		}
		if msg.Type != "client/hello" {
			t.Errorf("expected client/hello, got %s", msg.Type)
			return
		}

		conn.WriteJSON(protocol.Message{
			Type:    "server/hello",
			Payload: protocol.ServerHello{ServerID: "test-server", Version: 1},
		})

		if fn != nil {
			fn(conn)
		}
	}))
}

func wsAddr(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestConnectHandshake(t *testing.T) {
	srv := testServer(t, nil)
	defer srv.Close()

	c := NewClient(Config{ServerAddr: wsAddr(srv), ClientID: "c1", Name: "test", Version: 1})
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	c.Close()
}

func TestHandshakeRejectsWrongMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
		conn.WriteJSON(protocol.Message{Type: "stream/end"})
	}))
	defer srv.Close()

	c := NewClient(Config{ServerAddr: wsAddr(srv), ClientID: "c1"})
	if err := c.Connect(); err == nil {
		c.Close()
		t.Fatal("expected handshake error, got nil")
	}
}

func TestChunkRouting(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	srv := testServer(t, func(conn *websocket.Conn) {
		conn.WriteJSON(protocol.Message{
			Type:    "stream/start",
			Payload: protocol.StreamStart{Codec: "pcm16", SampleRate: 48000, ChunkMs: 20},
		})
		conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeChunkFrame(7, payload))
		time.Sleep(50 * time.Millisecond)
	})
	defer srv.Close()

	c := NewClient(Config{ServerAddr: wsAddr(srv), ClientID: "c1"})
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	select {
	case start := <-c.StreamStart:
		if start.Codec != "pcm16" || start.SampleRate != 48000 {
			t.Errorf("unexpected stream/start: %+v", start)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for stream/start")
	}

	select {
	case chunk := <-c.Chunks:
		if chunk.Seq != 7 {
			t.Errorf("expected seq 7, got %d", chunk.Seq)
		}
		if len(chunk.Data) != len(payload) {
			t.Errorf("expected %d payload bytes, got %d", len(payload), len(chunk.Data))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for chunk")
	}
}

func TestBadChunkFrameDropped(t *testing.T) {
	srv := testServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x00, 0x01}) // too short
		conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeChunkFrame(1, []byte{0xAA}))
		time.Sleep(50 * time.Millisecond)
	})
	defer srv.Close()

	c := NewClient(Config{ServerAddr: wsAddr(srv), ClientID: "c1"})
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	select {
	case chunk := <-c.Chunks:
		if chunk.Seq != 1 {
			t.Errorf("expected the valid frame (seq 1), got seq %d", chunk.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for chunk")
	}
}

func TestSendUpdate(t *testing.T) {
	got := make(chan protocol.Message, 1)
	srv := testServer(t, func(conn *websocket.Conn) {
		var msg protocol.Message
		if err := conn.ReadJSON(&msg); err == nil {
			got <- msg
		}
	})
	defer srv.Close()

	c := NewClient(Config{ServerAddr: wsAddr(srv), ClientID: "c1"})
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	if err := c.SendUpdate(protocol.PlayerUpdate{State: "playing", Queued: 2}); err != nil {
		t.Fatalf("SendUpdate failed: %v", err)
	}

	select {
	case msg := <-got:
		if msg.Type != "player/update" {
			t.Errorf("expected player/update, got %s", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
}

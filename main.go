// ABOUTME: Entry point for the Chunkcast player
// ABOUTME: Parses flags, discovers a server, and wires the stream to the player
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Chunkcast-Protocol/chunkcast-go/internal/client"
	"github.com/Chunkcast-Protocol/chunkcast-go/internal/config"
	"github.com/Chunkcast-Protocol/chunkcast-go/internal/discovery"
	"github.com/Chunkcast-Protocol/chunkcast-go/internal/protocol"
	"github.com/Chunkcast-Protocol/chunkcast-go/internal/ui"
	"github.com/Chunkcast-Protocol/chunkcast-go/internal/version"
	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio/decode"
	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/device"
	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/player"
)

var (
	serverAddr = flag.String("server", "", "Manual server address (skip mDNS)")
	name       = flag.String("name", "", "Player friendly name (default: hostname-chunkcast)")
	logFile    = flag.String("log-file", "chunkcast-player.log", "Log file path in TUI mode")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadPlayer()
	if err != nil {
		log.Fatal("bad configuration", "err", err)
	}
	if *serverAddr != "" {
		cfg.ServerAddr = *serverAddr
	}
	if *name != "" {
		cfg.Name = *name
	}
	if *noTUI {
		cfg.NoTUI = true
	}
	if *debug {
		cfg.Debug = true
	}

	useTUI := !cfg.NoTUI

	if useTUI {
		// TUI owns the terminal, so log to a file
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("error opening log file", "err", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	playerName := cfg.Name
	if playerName == "Chunkcast Player" {
		if hostname, err := os.Hostname(); err == nil {
			playerName = fmt.Sprintf("%s-chunkcast", hostname)
		}
	}

	var tuiProg *tea.Program
	var control *ui.Control

	if useTUI {
		control = ui.NewControl()
		tuiProg, err = ui.Run(control)
		if err != nil {
			log.Fatal("failed to start TUI", "err", err)
		}
		go tuiProg.Run()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	serverAddress := cfg.ServerAddr
	if serverAddress == "" {
		log.Info("searching for servers via mDNS")
		disc := discovery.NewManager(discovery.Config{ServiceName: playerName})
		disc.Browse()

		select {
		case server := <-disc.Servers():
			serverAddress = fmt.Sprintf("%s:%d", server.Host, server.Port)
			log.Info("discovered server", "addr", serverAddress)
		case <-time.After(10 * time.Second):
			log.Fatal("no server found after 10 seconds")
		}
		disc.Stop()
	}

	c := client.NewClient(client.Config{
		ServerAddr: serverAddress,
		ClientID:   uuid.New().String(),
		Name:       playerName,
		Version:    1,
	})
	if err := c.Connect(); err != nil {
		log.Fatal("connection failed", "err", err)
	}
	defer c.Close()

	connected := true
	updateTUI(ui.StatusMsg{Connected: &connected, ServerName: serverAddress})
	log.Info("connected", "server", serverAddress, "version", version.Version)

	if err := run(c, control, updateTUI); err != nil {
		log.Fatal("player failed", "err", err)
	}

	log.Info("player stopped")
}

// run wires the chunk stream into the player until shutdown
func run(c *client.Client, control *ui.Control, updateTUI func(ui.StatusMsg)) error {
	// The device is created once the first stream announces its rate
	start, err := waitForStream(c)
	if err != nil {
		return err
	}

	dev, err := device.NewOto(start.SampleRate)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	defer dev.Close()

	p, err := player.New(player.Config{
		Device: dev,
		OnStateChange: func(s player.State) {
			updateTUI(ui.StatusMsg{State: s.String()})
		},
		OnError: func(err error) {
			log.Error("playback error", "err", err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	defer p.Close()

	stream := newStreamState(start, updateTUI)
	addEndedListener(p, updateTUI)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	statsTicker := time.NewTicker(500 * time.Millisecond)
	defer statsTicker.Stop()

	var commands chan ui.Command
	var quit chan struct{}
	if control != nil {
		commands = control.Commands
		quit = control.Quit
	}

	for {
		select {
		case chunk := <-c.Chunks:
			if err := stream.deliver(p, chunk); err != nil {
				log.Error("dropping chunk", "seq", chunk.Seq, "err", err)
			}

		case next := <-c.StreamStart:
			if next.SampleRate != stream.start.SampleRate {
				log.Warn("stream sample rate changed, device keeps its rate",
					"device", stream.start.SampleRate, "stream", next.SampleRate)
			}
			stream = newStreamState(next, updateTUI)

		case end := <-c.StreamEnd:
			log.Info("stream ended", "reason", end.Reason)
			updateTUI(ui.StatusMsg{StreamEnded: true})

		case cmd := <-commands:
			handleCommand(p, cmd, updateTUI)

		case <-statsTicker.C:
			snap := p.Snapshot()
			updateTUI(ui.StatusMsg{State: snap.State.String(), Queued: snap.Queued, InFlight: snap.InFlight})
			if err := c.SendUpdate(protocol.PlayerUpdate{
				State:    snap.State.String(),
				Queued:   snap.Queued,
				InFlight: snap.InFlight,
			}); err != nil {
				log.Debug("could not report state", "err", err)
			}

		case <-quit:
			log.Info("quit requested from TUI")
			return nil

		case <-sigChan:
			log.Info("shutdown signal received")
			return nil
		}
	}
}

// waitForStream blocks until the server announces the stream format
func waitForStream(c *client.Client) (protocol.StreamStart, error) {
	select {
	case start := <-c.StreamStart:
		return start, nil
	case <-time.After(10 * time.Second):
		return protocol.StreamStart{}, fmt.Errorf("no stream/start within 10 seconds")
	}
}

// streamState tracks the active stream's codec and sequence numbers
type streamState struct {
	start   protocol.StreamStart
	opusDec *decode.Opus
	nextSeq uint64
	started bool
}

func newStreamState(start protocol.StreamStart, updateTUI func(ui.StatusMsg)) *streamState {
	s := &streamState{start: start}

	if start.Codec == "opus" {
		dec, err := decode.NewOpus(start.SampleRate)
		if err != nil {
			log.Error("failed to create opus decoder, expecting pcm16", "err", err)
		} else {
			s.opusDec = dec
		}
	}

	log.Info("stream started", "codec", start.Codec,
		"rate", start.SampleRate, "chunk_ms", start.ChunkMs, "title", start.Title)
	updateTUI(ui.StatusMsg{
		Codec:      start.Codec,
		SampleRate: start.SampleRate,
		ChunkMs:    start.ChunkMs,
		Title:      start.Title,
	})

	return s
}

// deliver decodes one chunk if needed and feeds it to the player
func (s *streamState) deliver(p *player.Player, chunk client.Chunk) error {
	if s.started && chunk.Seq != s.nextSeq {
		log.Warn("sequence gap", "expected", s.nextSeq, "got", chunk.Seq)
	}
	s.nextSeq = chunk.Seq + 1
	s.started = true

	data := chunk.Data
	if s.opusDec != nil {
		pcm, err := s.opusDec.Decode(data)
		if err != nil {
			return err
		}
		data = pcm
	}

	if err := p.AddChunk(data, s.start.SampleRate); err != nil {
		return err
	}
	// Playback does not auto-start on arrival, so nudge it after each
	// delivered chunk. A user-initiated pause (and the ended state, which
	// only reset leaves) must survive the nudge.
	switch p.State() {
	case player.StatePaused, player.StateEnded:
		return nil
	}
	return p.Play()
}

// handleCommand applies a TUI transport command
func handleCommand(p *player.Player, cmd ui.Command, updateTUI func(ui.StatusMsg)) {
	var err error
	switch cmd {
	case ui.CommandPlayPause:
		if p.State() == player.StatePlaying {
			err = p.Pause()
		} else {
			err = p.Play()
		}
	case ui.CommandReset:
		err = p.Reset()
		if err == nil {
			// Reset drops event listeners, so re-register
			addEndedListener(p, updateTUI)
		}
	}
	if err != nil {
		log.Error("command failed", "cmd", cmd, "err", err)
	}
}

// addEndedListener registers the ended event forwarder
func addEndedListener(p *player.Player, updateTUI func(ui.StatusMsg)) {
	p.AddListener(player.EventEnded, func() {
		log.Info("playback ended")
		updateTUI(ui.StatusMsg{State: player.StateEnded.String()})
	})
}

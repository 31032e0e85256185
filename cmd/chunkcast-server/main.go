// ABOUTME: Entry point for the Chunkcast server
// ABOUTME: Parses CLI flags and starts the chunk streaming server
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/Chunkcast-Protocol/chunkcast-go/internal/config"
	"github.com/Chunkcast-Protocol/chunkcast-go/internal/server"
)

var (
	port      = flag.Int("port", 0, "WebSocket server port (default 8937)")
	name      = flag.String("name", "", "Server friendly name (default: hostname-chunkcast-server)")
	audioFile = flag.String("audio", "", "Audio file to stream (MP3, FLAC) or HTTP URL. Default: test tone")
	codec     = flag.String("codec", "", "Stream codec: pcm16 or opus (default pcm16)")
	debug     = flag.Bool("debug", false, "Enable debug logging")
	noMDNS    = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal("bad configuration", "err", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *name != "" {
		cfg.Name = *name
	}
	if *audioFile != "" {
		cfg.AudioFile = *audioFile
	}
	if *codec != "" {
		cfg.Codec = *codec
	}
	if *noMDNS {
		cfg.NoMDNS = true
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("bad configuration", "err", err)
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	serverName := cfg.Name
	if serverName == "Chunkcast Server" {
		if hostname, err := os.Hostname(); err == nil {
			serverName = fmt.Sprintf("%s-chunkcast-server", hostname)
		}
	}

	log.Info("starting server", "name", serverName, "port", cfg.Port,
		"codec", cfg.Codec, "rate", cfg.SampleRate)

	srv := server.New(server.Config{
		Port:       cfg.Port,
		Name:       serverName,
		EnableMDNS: !cfg.NoMDNS,
		AudioFile:  cfg.AudioFile,
		Codec:      cfg.Codec,
		SampleRate: cfg.SampleRate,
		ChunkMs:    cfg.ChunkMs,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("shutting down", "signal", sig)
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatal("server error", "err", err)
	}
}

// ABOUTME: Environment-based configuration for player and server
// ABOUTME: Parsed from CHUNKCAST_* variables, overridden by flags
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Player holds player process configuration
type Player struct {
	ServerAddr string `env:"CHUNKCAST_SERVER"`
	Name       string `env:"CHUNKCAST_NAME" envDefault:"Chunkcast Player"`
	NoTUI      bool   `env:"CHUNKCAST_NO_TUI" envDefault:"false"`
	Debug      bool   `env:"CHUNKCAST_DEBUG" envDefault:"false"`
}

// Server holds server process configuration
type Server struct {
	Port       int    `env:"CHUNKCAST_PORT" envDefault:"8937"`
	Name       string `env:"CHUNKCAST_NAME" envDefault:"Chunkcast Server"`
	AudioFile  string `env:"CHUNKCAST_AUDIO_FILE"`
	Codec      string `env:"CHUNKCAST_CODEC" envDefault:"pcm16"`
	SampleRate int    `env:"CHUNKCAST_SAMPLE_RATE" envDefault:"48000"`
	ChunkMs    int    `env:"CHUNKCAST_CHUNK_MS" envDefault:"20"`
	NoMDNS     bool   `env:"CHUNKCAST_NO_MDNS" envDefault:"false"`
	Debug      bool   `env:"CHUNKCAST_DEBUG" envDefault:"false"`
}

// LoadPlayer parses player configuration from the environment
func LoadPlayer() (Player, error) {
	cfg, err := env.ParseAs[Player]()
	if err != nil {
		return Player{}, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// LoadServer parses server configuration from the environment
func LoadServer() (Server, error) {
	cfg, err := env.ParseAs[Server]()
	if err != nil {
		return Server{}, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks server configuration values
func (s Server) Validate() error {
	if s.Codec != "pcm16" && s.Codec != "opus" {
		return fmt.Errorf("unsupported codec %q (supported: pcm16, opus)", s.Codec)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", s.SampleRate)
	}
	if s.ChunkMs <= 0 {
		return fmt.Errorf("chunk duration must be positive, got %d", s.ChunkMs)
	}
	return nil
}

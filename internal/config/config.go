package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the lookup daemon.
type Config struct {
	// LogLevel: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Index
	ChunkSize  int32 `yaml:"chunk_size"`  // chunk edge length in tiles
	EventQueue int   `yaml:"event_queue"` // pending event buffer size

	// Debug overlay server
	Debug DebugConfig `yaml:"debug"`

	// Demo scenario driving the index when running standalone
	Demo DemoConfig `yaml:"demo"`
}

// DebugConfig configures the optional websocket introspection server.
type DebugConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// Addr returns the listen address of the debug server.
func (d DebugConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.BindAddress, d.Port)
}

// DemoConfig configures the built-in demo scenario.
type DemoConfig struct {
	Enabled    bool `yaml:"enabled"`
	GridSize   int  `yaml:"grid_size"`   // demo grid edge in tiles
	Entities   int  `yaml:"entities"`    // moving entities
	TickMillis int  `yaml:"tick_millis"` // movement tick interval
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel:   "info",
		ChunkSize:  16,
		EventQueue: 1024,
		Debug: DebugConfig{
			Enabled:     true,
			BindAddress: "127.0.0.1",
			Port:        8642,
		},
		Demo: DemoConfig{
			Enabled:    true,
			GridSize:   32,
			Entities:   8,
			TickMillis: 200,
		},
	}
}

// Load reads config from a YAML file over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

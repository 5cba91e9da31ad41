// Package config handles game and server configuration.
package config

import "github.com/Cruelhelp/NeonVoid/internal/render"

// Config holds all settings for the game client and the room server.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Network  NetworkConfig  `yaml:"network"`
	Game     GameConfig     `yaml:"game"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	VSync     bool    `yaml:"vsync"`
	Wireframe bool    `yaml:"wireframe"`
	Stars     int     `yaml:"stars"`
	Bloom     bool    `yaml:"bloom"`
	Focal     float64 `yaml:"focal"` // perspective focal length in pixels
}

// NetworkConfig holds the client's connection settings.
type NetworkConfig struct {
	ServerURL  string `yaml:"server_url"`
	PlayerName string `yaml:"player_name"`
	PushHz     int    `yaml:"push_hz"` // state pushes per second while in a match
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	ShipType string `yaml:"ship_type"`
	ShowFPS  bool   `yaml:"show_fps"`
}

// ServerConfig holds the room server's listen settings.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	JoinBaseURL   string `yaml:"join_base_url"` // encoded into QR join links
	MaxConnsPerIP int    `yaml:"max_conns_per_ip"`
	MaxConns      int    `yaml:"max_conns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  1024,
			Height: 768,
			VSync:  true,
			Stars:  render.StarCount,
			Bloom:  true,
			Focal:  render.DefaultFocal,
		},
		Network: NetworkConfig{
			ServerURL: "ws://127.0.0.1:8080/ws",
			PushHz:    20,
		},
		Game: GameConfig{
			ShipType: "Interceptor",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			JoinBaseURL: "http://127.0.0.1:8080/",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

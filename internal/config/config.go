package config

import (
	"log/slog"
	"time"
)

// Config is the root configuration for a relay instance.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Socket SocketConfig `yaml:"socket"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	FrontendURL     string        `yaml:"frontend_url" envconfig:"FRONTEND_URL"` // allowed WebSocket origin; empty allows any
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SocketConfig holds per-session WebSocket settings.
type SocketConfig struct {
	PingTimeout      time.Duration `yaml:"ping_timeout"` // read deadline; a client silent this long is reclaimed
	PingInterval     time.Duration `yaml:"ping_interval"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	SendBufferSize   int           `yaml:"send_buffer_size"`
	ReadLimit        int64         `yaml:"read_limit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SlogLevel maps the configured level to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort             = 5000
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultPingTimeout      = 60 * time.Second
	DefaultPingInterval     = 25 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultSendBufferSize   = 256
	DefaultReadLimit        = 1 << 20
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Socket.PingTimeout == 0 {
		c.Socket.PingTimeout = DefaultPingTimeout
	}
	if c.Socket.PingInterval == 0 {
		c.Socket.PingInterval = DefaultPingInterval
	}
	if c.Socket.WriteTimeout == 0 {
		c.Socket.WriteTimeout = DefaultWriteTimeout
	}
	if c.Socket.HandshakeTimeout == 0 {
		c.Socket.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Socket.SendBufferSize == 0 {
		c.Socket.SendBufferSize = DefaultSendBufferSize
	}
	if c.Socket.ReadLimit == 0 {
		c.Socket.ReadLimit = DefaultReadLimit
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

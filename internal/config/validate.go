package config

import "fmt"

// Validate checks the configuration for values the relay cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if c.Socket.PingTimeout <= 0 {
		return fmt.Errorf("socket.ping_timeout must be positive")
	}
	if c.Socket.PingInterval <= 0 {
		return fmt.Errorf("socket.ping_interval must be positive")
	}
	if c.Socket.PingInterval >= c.Socket.PingTimeout {
		return fmt.Errorf("socket.ping_interval (%s) must be shorter than socket.ping_timeout (%s)",
			c.Socket.PingInterval, c.Socket.PingTimeout)
	}
	if c.Socket.WriteTimeout <= 0 {
		return fmt.Errorf("socket.write_timeout must be positive")
	}
	if c.Socket.HandshakeTimeout <= 0 {
		return fmt.Errorf("socket.handshake_timeout must be positive")
	}
	if c.Socket.SendBufferSize <= 0 {
		return fmt.Errorf("socket.send_buffer_size must be positive")
	}
	if c.Socket.ReadLimit <= 0 {
		return fmt.Errorf("socket.read_limit must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q unknown", c.Log.Format)
	}

	return nil
}

package server

import (
	"net/http"
	"time"
)

// Config holds configuration for the diff server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	// Default: ":8080".
	Address string

	// MaxDocumentSize is the maximum accepted document size in bytes,
	// both for /v1/diff bodies and published documents.
	// Default: 4MB.
	MaxDocumentSize int64

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin is called to validate the request origin on WebSocket
	// upgrade. Default: allows all origins (not recommended for
	// production).
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout is the maximum time to wait when sending a frame to
	// a subscriber. Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the time between WebSocket keepalive pings.
	// Default: 30 seconds.
	PingInterval time.Duration

	// SendQueue is the per-subscriber outgoing frame buffer. A
	// subscriber that falls this far behind is disconnected.
	// Default: 64.
	SendQueue int

	// Server lifecycle

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// IdleTimeout closes idle keep-alive connections.
	// Default: 2 minutes.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		MaxDocumentSize:   4 * 1024 * 1024,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       func(r *http.Request) bool { return true },
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		SendQueue:         64,
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// fillDefaults replaces unset fields with their defaults.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.MaxDocumentSize == 0 {
		c.MaxDocumentSize = defaults.MaxDocumentSize
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = defaults.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = defaults.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = defaults.CheckOrigin
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = defaults.PingInterval
	}
	if c.SendQueue == 0 {
		c.SendQueue = defaults.SendQueue
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaults.IdleTimeout
	}
}

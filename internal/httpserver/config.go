package httpserver

import (
	"time"

	"webserver/internal/obs"
)

// Default settings
const (
	defaultPublicRoot     = "public"
	defaultIdleTimeout    = 30 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultMaxHeaderBytes = 8 << 10
	defaultMaxBodyBytes   = 1 << 20
)

// Config holds the server settings
type Config struct {
	// PublicRoot is the directory static files are served from.
	PublicRoot string

	// IdleTimeout bounds the wait for each complete request, including the
	// first one on a new connection. When it passes the connection is closed
	// without a response.
	IdleTimeout time.Duration

	// WriteTimeout bounds writing one response.
	WriteTimeout time.Duration

	// MaxHeaderBytes limits the request line plus headers.
	MaxHeaderBytes int

	// MaxBodyBytes limits a buffered request body.
	MaxBodyBytes int64

	// MaxConns caps concurrently served connections when positive.
	MaxConns int

	// Multiplex treats each accepted connection as a yamux session and
	// serves every stream as its own connection.
	Multiplex bool

	// XorKey, when set, obfuscates accepted connections.
	XorKey string

	Logger obs.Logger
	Meter  obs.Meter
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		PublicRoot:     defaultPublicRoot,
		IdleTimeout:    defaultIdleTimeout,
		WriteTimeout:   defaultWriteTimeout,
		MaxHeaderBytes: defaultMaxHeaderBytes,
		MaxBodyBytes:   defaultMaxBodyBytes,
		Logger:         obs.NopLogger{},
		Meter:          obs.NopMeter{},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PublicRoot == "" {
		c.PublicRoot = d.PublicRoot
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = d.MaxHeaderBytes
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.Meter == nil {
		c.Meter = d.Meter
	}
	return c
}

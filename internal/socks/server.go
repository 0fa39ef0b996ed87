// Package socks provides a SOCKS5 front door to the web server.
package socks

import (
	"bytes"
	"context"
	"log"
	"net"

	"github.com/armon/go-socks5"

	"webserver/internal/obs"
	"webserver/internal/xorrw"
)

// LocalDialer opens in-process connections to the web server.
type LocalDialer interface {
	DialLocal() net.Conn
}

// Config configures a SOCKS5 server.
type Config struct {
	// Addr is where the proxy listens.
	Addr string
	// XorKey, when set, obfuscates the client side of every proxy connection.
	XorKey string
	// LocalAddr is the web server's listen address. CONNECT requests for it
	// are served through Local instead of the network.
	LocalAddr string
	Local     LocalDialer
	Logger    obs.Logger
}

// Server represents a SOCKS5 proxy server
type Server struct {
	server *socks5.Server
	addr   string
	key    []byte
	log    obs.Logger
}

// NewServer creates a new SOCKS5 server
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = obs.NopLogger{}
	}

	conf := &socks5.Config{
		Logger: log.New(logWriter{log: logger}, "", 0),
		Dial: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cfg.Local != nil && isLocal(cfg.LocalAddr, addr) {
				logger.Logf(obs.Debug, "socks: %s served in-process", addr)
				return newLocalConn(cfg.Local.DialLocal(), addr), nil
			}
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}

	server, err := socks5.New(conf)
	if err != nil {
		return nil, err
	}

	return &Server{
		server: server,
		addr:   cfg.Addr,
		key:    []byte(cfg.XorKey),
		log:    logger,
	}, nil
}

// Start listens on the configured address and serves until the listener
// fails.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.log.Logf(obs.Info, "starting SOCKS5 server on %s", l.Addr())
	return s.server.Serve(&xorrw.Listener{Listener: l, Key: s.key})
}

// StartAsync starts the SOCKS5 server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.log.Logf(obs.Error, "SOCKS5 server error: %v", err)
		}
	}()
}

// ServeConn runs the SOCKS5 protocol on a single client connection.
func (s *Server) ServeConn(conn net.Conn) error {
	return s.server.ServeConn(xorrw.NewConn(conn, s.key))
}

type logWriter struct {
	log obs.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Logf(obs.Warn, "socks: %s", bytes.TrimSpace(p))
	return len(p), nil
}

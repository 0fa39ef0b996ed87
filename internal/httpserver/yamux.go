package httpserver

import (
	"bytes"
	"errors"
	"io"
	"net"
	"time"

	"github.com/hashicorp/yamux"

	"webserver/internal/obs"
)

const yamuxKeepAliveInterval = 30 * time.Second

// ServeMultiplexed runs a yamux server session over conn and serves every
// accepted stream as an independent connection. Requests on one stream are
// answered in order; streams proceed concurrently. It returns when the
// session ends.
func (s *Server) ServeMultiplexed(conn net.Conn) error {
	config := yamux.DefaultConfig()
	config.EnableKeepAlive = true
	config.KeepAliveInterval = yamuxKeepAliveInterval
	config.ConnectionWriteTimeout = s.cfg.WriteTimeout
	config.LogOutput = logWriter{log: s.log}

	ys, err := yamux.Server(conn, config)
	if err != nil {
		conn.Close()
		return err
	}
	if !s.trackConn(ys, true) {
		ys.Close()
		return ErrServerClosed
	}
	defer s.trackConn(ys, false)
	defer ys.Close()

	s.log.Logf(obs.Debug, "%s: started yamux session", conn.RemoteAddr())
	for {
		stream, err := ys.Accept()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, yamux.ErrSessionShutdown) {
				s.log.Logf(obs.Debug, "%s: yamux session closed", conn.RemoteAddr())
				return nil
			}
			return err
		}
		go s.ServeConn(stream)
	}
}

// logWriter forwards yamux's internal log lines at debug level.
type logWriter struct {
	log obs.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Logf(obs.Debug, "yamux: %s", bytes.TrimSpace(p))
	return len(p), nil
}

// Package httpserver implements a small embeddable HTTP/1.1 server: a fixed
// route table, a dispatcher with a deterministic precedence order, static file
// serving from a public root and a keep-alive connection loop.
package httpserver

import (
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	"webserver/internal/obs"
	"webserver/internal/xorrw"
)

const maxAcceptBackoff = time.Second

// Server accepts connections and runs one session per connection.
type Server struct {
	cfg        Config
	mux        *Mux
	files      *FileResolver
	dispatcher *Dispatcher
	log        obs.Logger
	meter      obs.Meter
	started    time.Time

	connections atomic.Uint64
	requests    atomic.Uint64

	mu        sync.Mutex
	closed    bool
	listeners map[net.Listener]struct{}
	conns     map[io.Closer]struct{}
}

// Stats is a snapshot of server counters.
type Stats struct {
	Started     time.Time
	Connections uint64
	Requests    uint64
}

// NewServer creates a server for the routes in mux. Registration on mux
// must be finished before serving starts.
func NewServer(mux *Mux, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	files, err := NewFileResolver(cfg.PublicRoot)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:        cfg,
		mux:        mux,
		files:      files,
		dispatcher: NewDispatcher(mux, files, cfg.Logger),
		log:        cfg.Logger,
		meter:      cfg.Meter,
		started:    time.Now(),
		listeners:  make(map[net.Listener]struct{}),
		conns:      make(map[io.Closer]struct{}),
	}, nil
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.Logf(obs.Info, "listening on %s (public root %s)", ln.Addr(), s.files.Root())
	return s.Serve(ln)
}

// Serve accepts connections on l until l fails permanently or the server is
// closed. Transient accept errors are logged and retried.
func (s *Server) Serve(l net.Listener) error {
	s.mux.Freeze()
	if s.cfg.MaxConns > 0 {
		l = netutil.LimitListener(l, s.cfg.MaxConns)
	}
	if s.cfg.XorKey != "" {
		l = &xorrw.Listener{Listener: l, Key: []byte(s.cfg.XorKey)}
	}
	if !s.trackListener(l, true) {
		l.Close()
		return ErrServerClosed
	}
	defer s.trackListener(l, false)
	defer l.Close()

	var backoff time.Duration
	for {
		c, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.log.Logf(obs.Warn, "accept error: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		go s.serveConn(c)
	}
}

func (s *Server) serveConn(c net.Conn) {
	if s.cfg.Multiplex {
		if err := s.ServeMultiplexed(c); err != nil {
			s.log.Logf(obs.Warn, "%s: multiplexed session: %v", c.RemoteAddr(), err)
		}
		return
	}
	s.ServeConn(c)
}

// ServeConn runs a session on c and returns when it ends. c is closed on
// return.
func (s *Server) ServeConn(c net.Conn) {
	s.mux.Freeze()
	if !s.trackConn(c, true) {
		c.Close()
		return
	}
	defer s.trackConn(c, false)

	s.connections.Add(1)
	s.meter.Counter("httpserver.connections", 1)
	newSession(s, c).run()
}

// Close stops all listeners and closes every open connection.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	var err error
	for l := range s.listeners {
		if cerr := l.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	for c := range s.conns {
		c.Close()
	}
	return err
}

// Stats returns the current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Started:     s.started,
		Connections: s.connections.Load(),
		Requests:    s.requests.Load(),
	}
}

func (s *Server) observe(req *Request, res *Response, start time.Time) {
	s.requests.Add(1)

	status := res.Status
	if status == 0 {
		status = 200
	}
	method, target := "-", "-"
	if req != nil {
		method, target = req.Method, req.Target
	}
	s.log.Logf(obs.Info, "%s %s %d", method, target, status)
	s.meter.Counter("httpserver.requests", 1, obs.Label{Key: "status", Value: strconv.Itoa(status)})
	s.meter.Histogram("httpserver.request_seconds", time.Since(start).Seconds())
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) trackListener(l net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !add {
		delete(s.listeners, l)
		return true
	}
	if s.closed {
		return false
	}
	s.listeners[l] = struct{}{}
	return true
}

func (s *Server) trackConn(c io.Closer, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !add {
		delete(s.conns, c)
		return true
	}
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

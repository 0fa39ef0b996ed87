package httpserver

import (
	"bufio"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"webserver/internal/obs"
)

const (
	// headerSlack covers what bufio may read ahead past the header limit.
	headerSlack = 4096

	// After the send side is shut, unread input is drained for a short while
	// so the kernel does not answer it with a reset that could destroy the
	// final response before the peer reads it.
	lingerTimeout = 500 * time.Millisecond
	lingerBytes   = 256 << 10
)

type closeWriter interface {
	CloseWrite() error
}

// session owns one connection and serves requests on it strictly one at a
// time: request N+1 is not read until response N has been written.
type session struct {
	srv  *Server
	conn net.Conn
	lr   *io.LimitedReader
	br   *bufio.Reader
	bw   *bufio.Writer

	req       *Request
	res       *Response
	keepAlive bool
	start     time.Time
}

// stateFunc is one state of the session; it returns the next, or nil when
// the session is over.
type stateFunc func(*session) stateFunc

func newSession(srv *Server, conn net.Conn) *session {
	lr := &io.LimitedReader{R: conn, N: math.MaxInt64}
	return &session{
		srv:  srv,
		conn: conn,
		lr:   lr,
		br:   bufio.NewReader(lr),
		bw:   bufio.NewWriter(conn),
	}
}

func (s *session) run() {
	for state := reading; state != nil; {
		state = state(s)
	}
}

func (s *session) remote() string {
	if addr := s.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// fail queues an error response that ends the connection.
func (s *session) fail(status int, why string) stateFunc {
	s.srv.log.Logf(obs.Warn, "%s: %d %s", s.remote(), status, why)
	s.res = HTML(status, why)
	s.res.Close = true
	return writing
}

// reading waits, under the idle deadline, for the next complete request.
func reading(s *session) stateFunc {
	cfg := &s.srv.cfg
	s.req, s.res = nil, nil

	s.conn.SetReadDeadline(time.Now().Add(cfg.IdleTimeout))
	s.lr.N = int64(cfg.MaxHeaderBytes) + headerSlack
	hr, err := http.ReadRequest(s.br)
	s.start = time.Now()
	if err != nil {
		switch {
		case s.lr.N <= 0:
			return s.fail(http.StatusRequestHeaderFieldsTooLarge, "Request header too large")
		case isTransportError(err):
			s.srv.log.Logf(obs.Debug, "%s: closing: %v", s.remote(), err)
			return closing
		default:
			return s.fail(http.StatusBadRequest, "Malformed request")
		}
	}
	s.lr.N = math.MaxInt64

	if hr.ContentLength > cfg.MaxBodyBytes {
		return s.fail(http.StatusRequestEntityTooLarge, "Request body too large")
	}
	if hr.ContentLength != 0 && strings.EqualFold(hr.Header.Get("Expect"), "100-continue") {
		if err := writeContinue(s.bw); err != nil {
			return closing
		}
	}
	body, err := io.ReadAll(io.LimitReader(hr.Body, cfg.MaxBodyBytes+1))
	if err != nil {
		if isTransportError(err) {
			s.srv.log.Logf(obs.Debug, "%s: closing: %v", s.remote(), err)
			return closing
		}
		return s.fail(http.StatusBadRequest, "Malformed request body")
	}
	if int64(len(body)) > cfg.MaxBodyBytes {
		return s.fail(http.StatusRequestEntityTooLarge, "Request body too large")
	}

	s.req = newRequest(hr, body, s.remote())
	return dispatching
}

func dispatching(s *session) stateFunc {
	s.res = s.srv.dispatcher.Dispatch(s.req)
	return writing
}

// writing sends the response, then either loops back to reading or closes.
func writing(s *session) stateFunc {
	s.keepAlive = s.req != nil && s.req.KeepAlive() && !s.res.Close

	s.conn.SetWriteDeadline(time.Now().Add(s.srv.cfg.WriteTimeout))
	err := writeResponse(s.bw, s.req, s.res, s.keepAlive)
	if err == nil {
		err = s.bw.Flush()
	}
	s.srv.observe(s.req, s.res, s.start)
	if err != nil {
		s.srv.log.Logf(obs.Debug, "%s: write failed: %v", s.remote(), err)
		return closing
	}
	if !s.keepAlive {
		return closing
	}
	return reading
}

// closing shuts down the send side, then releases the connection.
func closing(s *session) stateFunc {
	if cw, ok := s.conn.(closeWriter); ok && cw.CloseWrite() == nil {
		s.conn.SetReadDeadline(time.Now().Add(lingerTimeout))
		io.Copy(io.Discard, io.LimitReader(s.conn, lingerBytes))
	}
	s.conn.Close()
	return nil
}

func newRequest(hr *http.Request, body []byte, remote string) *Request {
	target := hr.RequestURI
	path, query := target, ""
	if i := strings.IndexByte(target, '?'); i >= 0 {
		path, query = target[:i], target[i+1:]
	}
	return &Request{
		Method:     hr.Method,
		Target:     target,
		Path:       path,
		RawQuery:   query,
		Proto:      hr.Proto,
		ProtoMajor: hr.ProtoMajor,
		ProtoMinor: hr.ProtoMinor,
		Header:     hr.Header,
		Body:       body,
		RemoteAddr: remote,
		Close:      hr.Close,
	}
}

// isTransportError reports errors that mean the peer is gone or too slow,
// as opposed to a malformed request.
func isTransportError(err error) bool {
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Package xorrw provides XOR-based obfuscation for connection streams.
package xorrw

import (
	"errors"
	"io"
	"net"
)

// stream tracks a position in the repeating key for one direction.
type stream struct {
	key []byte
	pos int
}

func (s *stream) apply(dst, src []byte) {
	for i := range src {
		dst[i] = src[i] ^ s.key[s.pos]
		s.pos = (s.pos + 1) % len(s.key)
	}
}

// ReadWriter applies a repeating XOR key to everything read from and written
// to the underlying io.ReadWriter. Reads and writes keep independent key
// positions so both directions of a connection stay in step with the peer.
type ReadWriter struct {
	rw io.ReadWriter
	rd stream
	wr stream
}

// New wraps rw. An empty key disables the transform.
func New(rw io.ReadWriter, key []byte) *ReadWriter {
	return &ReadWriter{
		rw: rw,
		rd: stream{key: key},
		wr: stream{key: key},
	}
}

func (x *ReadWriter) Read(p []byte) (int, error) {
	n, err := x.rw.Read(p)
	if n > 0 && len(x.rd.key) > 0 {
		x.rd.apply(p[:n], p[:n])
	}
	return n, err
}

func (x *ReadWriter) Write(p []byte) (int, error) {
	if len(x.wr.key) == 0 {
		return x.rw.Write(p)
	}
	encoded := make([]byte, len(p))
	x.wr.apply(encoded, p)
	return x.rw.Write(encoded)
}

// Close closes the underlying ReadWriter if it is an io.Closer.
func (x *ReadWriter) Close() error {
	if closer, ok := x.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Conn is a net.Conn whose payload is XOR-obfuscated. Address and deadline
// methods pass through to the wrapped connection.
type Conn struct {
	net.Conn
	xrw *ReadWriter
}

// NewConn wraps c with key. When key is empty c is returned unchanged.
func NewConn(c net.Conn, key []byte) net.Conn {
	if len(key) == 0 {
		return c
	}
	return &Conn{Conn: c, xrw: New(c, key)}
}

func (c *Conn) Read(b []byte) (int, error)  { return c.xrw.Read(b) }
func (c *Conn) Write(b []byte) (int, error) { return c.xrw.Write(b) }

// CloseWrite half-closes the wrapped connection. It fails with
// errors.ErrUnsupported when the wrapped connection cannot half-close.
func (c *Conn) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return errors.ErrUnsupported
}

// Listener wraps every accepted connection with NewConn.
type Listener struct {
	net.Listener
	Key []byte
}

// Accept waits for the next connection and wraps it with the listener key.
func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(c, l.Key), nil
}

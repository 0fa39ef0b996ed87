package httpserver

import "errors"

var (
	// ErrNotFound reports that a path maps to no servable file.
	ErrNotFound = errors.New("httpserver: not found")
	// ErrServerClosed is returned by Serve after Close.
	ErrServerClosed = errors.New("httpserver: server closed")
)

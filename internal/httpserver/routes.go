package httpserver

import (
	"net/http"
)

// Head is the status and header set a string-returning route function may
// adjust before its return value becomes the body.
type Head struct {
	Status int
	Header http.Header
}

func newHead() *Head {
	h := &Head{Status: http.StatusOK, Header: http.Header{}}
	h.Header.Set("Content-Type", contentTypeHTML)
	return h
}

func (h *Head) respond(body string) *Response {
	return &Response{Status: h.Status, Header: h.Header, Body: []byte(body)}
}

// Get registers a static GET route whose body is fn's result.
func (m *Mux) Get(path string, fn func() string) {
	m.GetFunc(path, func(*Request, *Head) (string, error) {
		return fn(), nil
	})
}

// GetFunc registers a static GET route whose body is fn's result. fn may
// change the status and headers through the Head.
func (m *Mux) GetFunc(path string, fn func(*Request, *Head) (string, error)) {
	m.GetHandler(path, stringHandler(fn))
}

// GetPattern registers a dynamic GET route whose body is fn's result.
func (m *Mux) GetPattern(expr string, fn func(Match) string) {
	m.GetPatternFunc(expr, func(_ *Request, _ *Head, match Match) (string, error) {
		return fn(match), nil
	})
}

// GetPatternFunc registers a dynamic GET route whose body is fn's result.
func (m *Mux) GetPatternFunc(expr string, fn func(*Request, *Head, Match) (string, error)) {
	m.GetPatternHandler(expr, func(req *Request, match Match) (*Response, error) {
		head := newHead()
		body, err := fn(req, head, match)
		if err != nil {
			return nil, err
		}
		return head.respond(body), nil
	})
}

// Post registers a static POST route whose body is fn's result.
func (m *Mux) Post(path string, fn func(*Request, *Head) (string, error)) {
	m.PostHandler(path, stringHandler(fn))
}

func stringHandler(fn func(*Request, *Head) (string, error)) Handler {
	return func(req *Request) (*Response, error) {
		head := newHead()
		body, err := fn(req, head)
		if err != nil {
			return nil, err
		}
		return head.respond(body), nil
	}
}

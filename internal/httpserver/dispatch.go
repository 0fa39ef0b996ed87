package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"webserver/internal/mime"
	"webserver/internal/obs"
)

// Dispatcher resolves each request to exactly one response. Routing order:
// static POST, static GET, public file, dynamic GET, then an empty 404.
type Dispatcher struct {
	mux   *Mux
	files *FileResolver
	log   obs.Logger
}

// NewDispatcher returns a dispatcher over mux and files. files may be nil.
func NewDispatcher(mux *Mux, files *FileResolver, log obs.Logger) *Dispatcher {
	if log == nil {
		log = obs.NopLogger{}
	}
	return &Dispatcher{mux: mux, files: files, log: log}
}

// Dispatch never fails: handler errors and panics become 500 responses.
func (d *Dispatcher) Dispatch(req *Request) *Response {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		return d.reject(req, http.StatusNotImplemented, "Unknown HTTP-method")
	}

	path := req.Path
	if path == "" || path[0] != '/' || strings.Contains(path, "..") {
		return d.reject(req, http.StatusBadRequest, "Illegal request-target")
	}

	if req.Method == http.MethodPost {
		if h, ok := d.mux.lookupPost(path); ok {
			return d.invoke(req, func() (*Response, error) { return h(req) })
		}
	} else {
		if h, ok := d.mux.lookupGet(path); ok {
			return d.invoke(req, func() (*Response, error) { return h(req) })
		}
	}

	if d.files != nil {
		f, size, err := d.files.Resolve(path)
		switch {
		case err == nil:
			return FileResponse(f, size, mime.TypeByPath(path))
		case !errors.Is(err, ErrNotFound):
			return d.serverError(req, err)
		}
	}

	if h, match, ok := d.mux.matchDynamic(path); ok {
		return d.invoke(req, func() (*Response, error) { return h(req, match) })
	}

	d.log.Logf(obs.Debug, "%s %d %s", req.Method, http.StatusNotFound, path)
	return NotFound()
}

// invoke runs a handler, converting an error, a panic or a nil response
// into a 500.
func (d *Dispatcher) invoke(req *Request, fn func() (*Response, error)) (res *Response) {
	defer func() {
		if p := recover(); p != nil {
			res = d.serverError(req, fmt.Errorf("%v", p))
		}
	}()
	res, err := fn()
	if err != nil {
		return d.serverError(req, err)
	}
	if res == nil {
		return d.serverError(req, errors.New("handler returned no response"))
	}
	return res
}

func (d *Dispatcher) reject(req *Request, status int, why string) *Response {
	d.log.Logf(obs.Warn, "%s %d %s %s", req.Method, status, req.Target, why)
	return HTML(status, why)
}

func (d *Dispatcher) serverError(req *Request, err error) *Response {
	d.log.Logf(obs.Error, "%s %d %s %v", req.Method, http.StatusInternalServerError, req.Target, err)
	return Text(http.StatusInternalServerError, err.Error())
}

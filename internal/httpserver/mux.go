package httpserver

import (
	"regexp"
	"sync/atomic"
)

// Handler serves a request routed by exact path.
type Handler func(*Request) (*Response, error)

// PatternHandler serves a request routed by a dynamic GET pattern.
type PatternHandler func(*Request, Match) (*Response, error)

// route is a dynamic GET entry.
type route struct {
	pattern *regexp.Regexp
	handler PatternHandler
}

// Mux is the route table: exact-path GET and POST handlers plus an ordered
// list of dynamic GET patterns. It is populated before serving starts and
// read concurrently, without locking, by every session afterwards.
type Mux struct {
	gets    map[string]Handler
	posts   map[string]Handler
	dynamic []route
	frozen  atomic.Bool
}

// NewMux creates an empty route table
func NewMux() *Mux {
	return &Mux{
		gets:  make(map[string]Handler),
		posts: make(map[string]Handler),
	}
}

// GetHandler registers h for GET and HEAD requests to exactly path. A later
// registration of the same path replaces the earlier one.
func (m *Mux) GetHandler(path string, h Handler) {
	m.mustBeOpen()
	m.gets[path] = h
}

// PostHandler registers h for POST requests to exactly path. A later
// registration of the same path replaces the earlier one.
func (m *Mux) PostHandler(path string, h Handler) {
	m.mustBeOpen()
	m.posts[path] = h
}

// GetPatternHandler appends a dynamic GET route. expr must match the whole
// path; patterns are tried in registration order and the first match wins.
// It panics if expr does not compile.
func (m *Mux) GetPatternHandler(expr string, h PatternHandler) {
	m.mustBeOpen()
	m.dynamic = append(m.dynamic, route{
		pattern: regexp.MustCompile(`^(?:` + expr + `)$`),
		handler: h,
	})
}

// Freeze ends registration. Any later registration panics.
func (m *Mux) Freeze() {
	m.frozen.Store(true)
}

func (m *Mux) mustBeOpen() {
	if m.frozen.Load() {
		panic("httpserver: route registered after serving started")
	}
}

func (m *Mux) lookupGet(path string) (Handler, bool) {
	h, ok := m.gets[path]
	return h, ok
}

func (m *Mux) lookupPost(path string) (Handler, bool) {
	h, ok := m.posts[path]
	return h, ok
}

// matchDynamic returns the first dynamic route fully matching path.
func (m *Mux) matchDynamic(path string) (PatternHandler, Match, bool) {
	for _, r := range m.dynamic {
		groups := r.pattern.FindStringSubmatch(path)
		if groups == nil {
			continue
		}
		return r.handler, Match{groups: groups, names: r.pattern.SubexpNames()}, true
	}
	return nil, Match{}, false
}

package httpserver

import (
	"net/http"
	"net/url"
)

// Request is an HTTP request as seen by handlers. It is fully received
// (headers and body) before dispatch and must not be modified by handlers.
type Request struct {
	Method string
	// Target is the request-target exactly as sent, including any query.
	Target string
	// Path is Target up to the first '?'. It is not percent-decoded.
	Path       string
	RawQuery   string
	Proto      string
	ProtoMajor int
	ProtoMinor int
	Header     http.Header
	Body       []byte
	RemoteAddr string
	// Close is set when the client asked for the connection to be closed
	// after this exchange, explicitly or by protocol default.
	Close bool
}

// KeepAlive reports whether the client wants the connection reused.
func (r *Request) KeepAlive() bool {
	return !r.Close
}

// Query parses RawQuery. Malformed pairs are dropped.
func (r *Request) Query() url.Values {
	v, _ := url.ParseQuery(r.RawQuery)
	return v
}

// Form parses an application/x-www-form-urlencoded body.
func (r *Request) Form() (url.Values, error) {
	return url.ParseQuery(string(r.Body))
}

// Match holds the capture groups of a dynamic route. Group 0 is the whole
// path. Groups that took part in no match are empty strings.
type Match struct {
	groups []string
	names  []string
}

// Len returns the number of groups including group 0.
func (m Match) Len() int {
	return len(m.groups)
}

// Group returns capture group i, or "" when i is out of range.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i]
}

// Named returns the group captured under name, or "" if there is none.
func (m Match) Named(name string) string {
	if name == "" {
		return ""
	}
	for i, n := range m.names {
		if n == name {
			return m.Group(i)
		}
	}
	return ""
}

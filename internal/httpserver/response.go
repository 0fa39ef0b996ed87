package httpserver

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"webserver/internal/common"
	"webserver/internal/mime"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
)

// Response is what a handler returns. Exactly one of Body or File carries the
// payload; File is streamed and closed after ContentLength bytes are sent.
type Response struct {
	Status        int
	Header        http.Header
	Body          []byte
	File          io.ReadCloser
	ContentLength int64
	// Close forces the connection closed after this response.
	Close bool
}

// NewResponse returns a response with the given status, content type and body.
func NewResponse(status int, contentType string, body []byte) *Response {
	res := &Response{Status: status, Header: http.Header{}, Body: body}
	if contentType != "" {
		res.Header.Set("Content-Type", contentType)
	}
	return res
}

// HTML returns a text/html response.
func HTML(status int, body string) *Response {
	return NewResponse(status, contentTypeHTML, []byte(body))
}

// Text returns a text/plain response.
func Text(status int, body string) *Response {
	return NewResponse(status, contentTypeText, []byte(body))
}

// JSON returns an application/json response.
func JSON(status int, body string) *Response {
	return NewResponse(status, contentTypeJSON, []byte(body))
}

// Redirect returns an empty-bodied response pointing at location.
func Redirect(status int, location string) *Response {
	res := NewResponse(status, "", nil)
	res.Header.Set("Location", location)
	return res
}

// NotFound is the minimal 404 used when no route matches: no body.
func NotFound() *Response {
	return NewResponse(http.StatusNotFound, "", nil)
}

// FileResponse streams f, which holds size bytes, with contentType.
func FileResponse(f io.ReadCloser, size int64, contentType string) *Response {
	res := NewResponse(http.StatusOK, contentType, nil)
	res.File = f
	res.ContentLength = size
	return res
}

// ServeFile opens the regular file at path and returns a response streaming
// it with an extension-derived content type. A missing or non-regular file
// yields an error wrapping ErrNotFound.
func ServeFile(path string) (*Response, error) {
	if !common.IsRegularFile(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return FileResponse(f, info.Size(), mime.TypeByPath(path)), nil
}

// size is the payload length announced in Content-Length.
func (r *Response) size() int64 {
	if r.File != nil {
		return r.ContentLength
	}
	return int64(len(r.Body))
}

func (r *Response) release() {
	if r.File != nil {
		r.File.Close()
	}
}

// bodyless reports statuses that never carry a payload or length.
func bodyless(status int) bool {
	return (status >= 100 && status < 200) || status == http.StatusNoContent || status == http.StatusNotModified
}

// writeResponse frames res onto bw: status line, headers with explicit
// Content-Length and Connection, then the payload unless the request was HEAD.
// Payloads of 1xx, 204 and 304 responses are dropped. The caller flushes.
func writeResponse(bw *bufio.Writer, req *Request, res *Response, keepAlive bool) error {
	defer res.release()

	proto := "HTTP/1.1"
	if req != nil && req.ProtoMajor == 1 && req.ProtoMinor == 0 {
		proto = "HTTP/1.0"
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	if _, err := fmt.Fprintf(bw, "%s %d %s\r\n", proto, status, http.StatusText(status)); err != nil {
		return err
	}

	hdr := res.Header.Clone()
	if hdr == nil {
		hdr = http.Header{}
	}
	hdr.Del("Connection")
	hdr.Del("Transfer-Encoding")
	if bodyless(status) {
		hdr.Del("Content-Length")
	} else {
		hdr.Set("Content-Length", strconv.FormatInt(res.size(), 10))
	}
	if keepAlive {
		hdr.Set("Connection", "keep-alive")
	} else {
		hdr.Set("Connection", "close")
	}
	if err := hdr.Write(bw); err != nil {
		return err
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}

	if bodyless(status) || (req != nil && req.Method == http.MethodHead) {
		return nil
	}
	if res.File != nil {
		_, err := common.WriteBlob(bw, res.File, res.ContentLength)
		return err
	}
	_, err := bw.Write(res.Body)
	return err
}

// writeContinue sends the interim response for Expect: 100-continue.
func writeContinue(bw *bufio.Writer) error {
	if _, err := bw.WriteString("HTTP/1.1 100 Continue\r\n\r\n"); err != nil {
		return err
	}
	return bw.Flush()
}

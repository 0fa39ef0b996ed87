package main

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"webserver/internal/httpserver"
)

func TestParseFlagsDefaults(t *testing.T) {
	config, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}
	if config.listenAddr() != "0.0.0.0:8080" {
		t.Errorf("Expected 0.0.0.0:8080, got %s", config.listenAddr())
	}
	if config.Threads < 1 {
		t.Errorf("Expected at least one thread, got %d", config.Threads)
	}
	if config.IdleTimeout != 30*time.Second {
		t.Errorf("Expected 30s idle timeout, got %v", config.IdleTimeout)
	}
}

func TestParseFlagsPositional(t *testing.T) {
	config, err := parseFlags([]string{"127.0.0.1", "9090", "0"})
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}
	if config.listenAddr() != "127.0.0.1:9090" {
		t.Errorf("Expected 127.0.0.1:9090, got %s", config.listenAddr())
	}
	if config.Threads != 1 {
		t.Errorf("Expected threads to be clamped to 1, got %d", config.Threads)
	}

	config, err = parseFlags([]string{"-multiplex", "-max-conns", "4", "::1", "80", "3"})
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}
	if !config.Multiplex || config.MaxConns != 4 || config.Threads != 3 {
		t.Errorf("Unexpected config %+v", config)
	}
	if config.listenAddr() != "[::1]:80" {
		t.Errorf("Expected [::1]:80, got %s", config.listenAddr())
	}
}

func TestParseFlagsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"127.0.0.1", "8080"},
		{"not-an-ip", "8080", "1"},
		{"127.0.0.1", "port", "1"},
		{"127.0.0.1", "70000", "1"},
		{"-bogus-flag"},
	} {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("Expected error for %q", args)
		}
	}
}

type fixedStats httpserver.Stats

func (f fixedStats) Stats() httpserver.Stats { return httpserver.Stats(f) }

func newDemoDispatcher(t *testing.T) *httpserver.Dispatcher {
	t.Helper()
	root, err := os.MkdirTemp("", "public")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(root) })
	if err := os.WriteFile(filepath.Join(root, "hello_world.txt"), []byte("Hello World!"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	mux := httpserver.NewMux()
	stats := fixedStats{Started: time.Now(), Connections: 2, Requests: 5}
	registerRoutes(mux, root, func() statsSource { return stats })
	return httpserver.NewDispatcher(mux, nil, nil)
}

func demoRequest(method, target, body string) *httpserver.Request {
	path, query, _ := strings.Cut(target, "?")
	return &httpserver.Request{
		Method:     method,
		Target:     target,
		Path:       path,
		RawQuery:   query,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
		Body:       []byte(body),
	}
}

func responseBody(t *testing.T, res *httpserver.Response) string {
	t.Helper()
	if res.File == nil {
		return string(res.Body)
	}
	defer res.File.Close()
	b, err := io.ReadAll(res.File)
	if err != nil {
		t.Fatalf("Failed to read file body: %v", err)
	}
	return string(b)
}

func TestDemoRoutes(t *testing.T) {
	d := newDemoDispatcher(t)

	cases := []struct {
		method, target, body string
		status               int
		want                 string
	}{
		{"GET", "/", "", 200, "<h1>Hello World!</h1>"},
		{"GET", "/json", "", 200, `{"Hello": "World"}`},
		{"GET", "/user/42", "", 200, "User ID: 42"},
		{"GET", "/params?name=Ada", "", 200, "Hello Ada!"},
		{"GET", "/params", "", 200, "Hello!"},
		{"GET", "/form", "", 200, `<form action="/form" method="post">`},
		{"POST", "/form", "name=Grace+Hopper", 200, "Thanks Grace Hopper for submitting the form!"},
		{"POST", "/form", "other=1", 500, "Invalid form"},
		{"GET", "/hello/J%C3%BCrgen", "", 200, "Hello Jürgen!"},
		{"GET", "/hello/%zz", "", 200, "Hello!"},
		{"GET", "/file-body", "", 200, "Hello World!"},
		{"GET", "/status", "", 200, "Requests: 5"},
		{"GET", "/nope", "", 404, "<h1>404 Not Found!</h1>"},
		{"HEAD", "/user/1", "", 200, "User ID: 1"},
	}
	for _, c := range cases {
		res := d.Dispatch(demoRequest(c.method, c.target, c.body))
		if res.Status != c.status {
			t.Errorf("%s %s: expected %d, got %d", c.method, c.target, c.status, res.Status)
		}
		if body := responseBody(t, res); !strings.Contains(body, c.want) {
			t.Errorf("%s %s: expected body to contain %q, got %q", c.method, c.target, c.want, body)
		}
	}
}

func TestDemoRedirect(t *testing.T) {
	res := newDemoDispatcher(t).Dispatch(demoRequest("GET", "/redirect", ""))
	if res.Status != http.StatusMovedPermanently || res.Header.Get("Location") != "/" {
		t.Errorf("Expected 301 to /, got %d %q", res.Status, res.Header.Get("Location"))
	}
}

func TestDemoFileBodyMissing(t *testing.T) {
	mux := httpserver.NewMux()
	registerRoutes(mux, t.TempDir(), nil)
	d := httpserver.NewDispatcher(mux, nil, nil)

	res := d.Dispatch(demoRequest("GET", "/file-body", ""))
	if res.Status != http.StatusNotFound || string(res.Body) != "The file was not found!" {
		t.Errorf("Expected file-not-found page, got %d %q", res.Status, res.Body)
	}
}

func TestNewHTTPServer(t *testing.T) {
	config, _ := parseFlags([]string{"-public", t.TempDir()})
	server, err := newHTTPServer(config, newLogger(false))
	if err != nil {
		t.Fatalf("newHTTPServer returned error: %v", err)
	}
	defer server.Close()

	conn := server.DialLocal()
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	go conn.Write([]byte("GET /status HTTP/1.1\r\nHost: test\r\nConnection: close\r\n\r\n"))

	body, _ := io.ReadAll(conn)
	if !strings.Contains(string(body), "Connections: 1") {
		t.Errorf("Expected status page to report the open connection, got %q", body)
	}
}

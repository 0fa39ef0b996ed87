package main

import (
	"errors"
	"net/http"
	"net/url"
	"path/filepath"

	"webserver/internal/common"
	"webserver/internal/httpserver"
)

const formPage = `<form action="/form" method="post">` +
	`<label for="name">Name:</label><br>` +
	`<input type="text" id="name" name="name">` +
	`<input type="submit" value="Submit">` +
	`</form>`

// statsSource is what /status reads counters from.
type statsSource interface {
	Stats() httpserver.Stats
}

// registerRoutes installs the demo routes. srv is looked up lazily by
// /status since the server is built after its routes.
func registerRoutes(mux *httpserver.Mux, publicRoot string, srv func() statsSource) {
	mux.Get("/", func() string { return "<h1>Hello World!</h1>" })

	mux.GetFunc("/json", func(_ *httpserver.Request, h *httpserver.Head) (string, error) {
		h.Header.Set("Content-Type", "application/json")
		return `{"Hello": "World"}`, nil
	})

	mux.GetPattern(`/user/(\d+)`, func(m httpserver.Match) string {
		return "User ID: " + m.Group(1)
	})

	mux.GetHandler("/redirect", func(*httpserver.Request) (*httpserver.Response, error) {
		return httpserver.Redirect(http.StatusMovedPermanently, "/"), nil
	})

	mux.GetFunc("/params", func(req *httpserver.Request, _ *httpserver.Head) (string, error) {
		if q := req.Query(); q.Has("name") {
			return "Hello " + q.Get("name") + "!", nil
		}
		return "Hello!", nil
	})

	mux.Get("/form", func() string { return formPage })

	mux.Post("/form", func(req *httpserver.Request, _ *httpserver.Head) (string, error) {
		if form, err := req.Form(); err == nil && form.Has("name") {
			return "Thanks " + form.Get("name") + " for submitting the form!", nil
		}
		return "", errors.New("Invalid form")
	})

	mux.GetPattern(`/hello/(?P<name>.*)`, func(m httpserver.Match) string {
		name, err := url.PathUnescape(m.Named("name"))
		if err != nil {
			return "Hello!"
		}
		return "Hello " + name + "!"
	})

	mux.GetHandler("/file-body", func(*httpserver.Request) (*httpserver.Response, error) {
		res, err := httpserver.ServeFile(filepath.Join(publicRoot, "hello_world.txt"))
		if errors.Is(err, httpserver.ErrNotFound) {
			return httpserver.NewResponse(http.StatusNotFound, "text/html", []byte("The file was not found!")), nil
		}
		return res, err
	})

	mux.GetHandler("/status", func(*httpserver.Request) (*httpserver.Response, error) {
		stats := srv().Stats()
		info := common.GetInfo(stats.Started)
		info.Connections = stats.Connections
		info.Requests = stats.Requests
		return httpserver.Text(http.StatusOK, info.String()), nil
	})

	mux.GetPatternFunc(`.*`, func(_ *httpserver.Request, h *httpserver.Head, _ httpserver.Match) (string, error) {
		h.Status = http.StatusNotFound
		return "<h1>404 Not Found!</h1>", nil
	})
}

package httpserver

import (
	"net/http"
	"testing"
)

func constHandler(body string) Handler {
	return func(*Request) (*Response, error) {
		return Text(http.StatusOK, body), nil
	}
}

func TestNewMux(t *testing.T) {
	mux := NewMux()
	if mux == nil {
		t.Fatal("NewMux returned nil")
	}
	if _, ok := mux.lookupGet("/"); ok {
		t.Error("Expected empty GET table")
	}
	if _, ok := mux.lookupPost("/"); ok {
		t.Error("Expected empty POST table")
	}
	if _, _, ok := mux.matchDynamic("/"); ok {
		t.Error("Expected no dynamic routes")
	}
}

func TestStaticRegistrationLastWriteWins(t *testing.T) {
	mux := NewMux()
	mux.GetHandler("/a", constHandler("first"))
	mux.GetHandler("/a", constHandler("second"))
	mux.PostHandler("/a", constHandler("post"))

	h, ok := mux.lookupGet("/a")
	if !ok {
		t.Fatal("Expected /a to be registered")
	}
	res, _ := h(&Request{})
	if string(res.Body) != "second" {
		t.Errorf("Expected later registration to win, got %q", res.Body)
	}

	h, ok = mux.lookupPost("/a")
	if !ok {
		t.Fatal("Expected POST /a to be registered")
	}
	res, _ = h(&Request{})
	if string(res.Body) != "post" {
		t.Errorf("Expected POST handler, got %q", res.Body)
	}
}

func TestStaticPathsAreExact(t *testing.T) {
	mux := NewMux()
	mux.GetHandler("/a", constHandler("a"))

	for _, p := range []string{"/a/", "/A", "a", "/a?x=1"} {
		if _, ok := mux.lookupGet(p); ok {
			t.Errorf("Expected no match for %q", p)
		}
	}
}

func TestDynamicFirstMatchWins(t *testing.T) {
	mux := NewMux()
	mux.GetPatternHandler(`/user/(\d+)`, func(*Request, Match) (*Response, error) {
		return Text(http.StatusOK, "user"), nil
	})
	mux.GetPatternHandler(`.*`, func(*Request, Match) (*Response, error) {
		return Text(http.StatusOK, "catch-all"), nil
	})

	h, match, ok := mux.matchDynamic("/user/5")
	if !ok {
		t.Fatal("Expected a match")
	}
	res, _ := h(nil, match)
	if string(res.Body) != "user" {
		t.Errorf("Expected first registered pattern to win, got %q", res.Body)
	}
	if match.Group(1) != "5" {
		t.Errorf("Expected group 1 to be 5, got %q", match.Group(1))
	}

	h, _, _ = mux.matchDynamic("/user/abc")
	res, _ = h(nil, Match{})
	if string(res.Body) != "catch-all" {
		t.Errorf("Expected catch-all, got %q", res.Body)
	}
}

func TestDynamicRequiresFullMatch(t *testing.T) {
	mux := NewMux()
	mux.GetPatternHandler(`/user/(\d+)`, func(*Request, Match) (*Response, error) {
		return nil, nil
	})
	mux.GetPatternHandler(`/a|/b`, func(*Request, Match) (*Response, error) {
		return nil, nil
	})

	for _, p := range []string{"/user/5/edit", "/x/user/5", "/user/"} {
		if _, _, ok := mux.matchDynamic(p); ok {
			t.Errorf("Expected no full match for %q", p)
		}
	}
	// Alternation binds inside the anchors.
	for _, p := range []string{"/a", "/b"} {
		if _, _, ok := mux.matchDynamic(p); !ok {
			t.Errorf("Expected full match for %q", p)
		}
	}
	if _, _, ok := mux.matchDynamic("/ab"); ok {
		t.Error("Expected no match for /ab")
	}
}

func TestMatchGroups(t *testing.T) {
	mux := NewMux()
	mux.GetPatternHandler(`/hello/(?P<name>.*)`, nil)
	mux.GetPatternHandler(`/opt/(a)?(b)`, nil)

	_, match, ok := mux.matchDynamic("/hello/world")
	if !ok {
		t.Fatal("Expected a match")
	}
	if match.Named("name") != "world" {
		t.Errorf("Expected named group world, got %q", match.Named("name"))
	}
	if match.Group(0) != "/hello/world" {
		t.Errorf("Expected group 0 to be the path, got %q", match.Group(0))
	}
	if match.Named("missing") != "" || match.Group(5) != "" || match.Group(-1) != "" {
		t.Error("Expected empty strings for unknown groups")
	}

	_, match, ok = mux.matchDynamic("/hello/")
	if !ok {
		t.Fatal("Expected a match for empty capture")
	}
	if match.Len() != 2 || match.Named("name") != "" {
		t.Errorf("Expected empty capture to be present, got len=%d name=%q", match.Len(), match.Named("name"))
	}

	_, match, ok = mux.matchDynamic("/opt/b")
	if !ok {
		t.Fatal("Expected a match")
	}
	if match.Len() != 3 || match.Group(1) != "" || match.Group(2) != "b" {
		t.Errorf("Unexpected groups: len=%d %q %q", match.Len(), match.Group(1), match.Group(2))
	}
}

func TestRegistrationAfterFreezePanics(t *testing.T) {
	mux := NewMux()
	mux.Freeze()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic when registering after Freeze")
		}
	}()
	mux.GetHandler("/late", constHandler("late"))
}

func TestBadPatternPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid pattern")
		}
	}()
	NewMux().GetPatternHandler(`/user/(`, nil)
}

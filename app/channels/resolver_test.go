package channels

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const videoPage = `<!DOCTYPE html>
<html><head>
<meta itemprop="name" content="Some video">
<meta itemprop="channelId" content="UCaYhcUwRBNscFNUKTjgPFiA">
</head><body></body></html>`

func TestResolveChannelFromPage(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected user agent test-agent, got %s", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(videoPage))
	}))
	defer server.Close()

	r := NewResolver(server.Client(), "test-agent", 5*time.Second)

	for i := 0; i < 2; i++ {
		id, err := r.ResolveChannel(context.Background(), server.URL+"/watch?v=abc")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if id != "UCaYhcUwRBNscFNUKTjgPFiA" {
			t.Errorf("Expected channel UCaYhcUwRBNscFNUKTjgPFiA, got %s", id)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("Expected 1 request thanks to cache, got %d", hits.Load())
	}
}

func TestResolveChannelFromCanonicalLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><link itemprop="url" href="http://www.youtube.com/channel/UCxyz"></head></html>`))
	}))
	defer server.Close()

	r := NewResolver(server.Client(), "test-agent", 5*time.Second)
	id, err := r.ResolveChannel(context.Background(), server.URL+"/watch?v=abc")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id != "UCxyz" {
		t.Errorf("Expected UCxyz, got %s", id)
	}
}

func TestResolveChannelMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head></head></html>`))
	}))
	defer server.Close()

	r := NewResolver(server.Client(), "test-agent", 5*time.Second)
	_, err := r.ResolveChannel(context.Background(), server.URL)
	if !errors.Is(err, ErrNoChannel) {
		t.Errorf("Expected ErrNoChannel, got %v", err)
	}
}

func TestResolveChannelHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	r := NewResolver(server.Client(), "test-agent", 5*time.Second)
	if _, err := r.ResolveChannel(context.Background(), server.URL); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestResolveChannelPathWithoutFetch(t *testing.T) {
	r := NewResolver(http.DefaultClient, "test-agent", time.Second)
	id, err := r.ResolveChannel(context.Background(), "https://www.youtube.com/channel/UCabc/videos")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id != "UCabc" {
		t.Errorf("Expected UCabc, got %s", id)
	}
}

func TestIsVideoURL(t *testing.T) {
	tests := map[string]bool{
		"https://www.youtube.com/watch?v=abc": true,
		"https://youtu.be/abc":                true,
		"https://M.YouTube.com/watch?v=abc":   true,
		"https://example.com/youtube.com":     false,
		"not a url":                           false,
	}
	for u, expected := range tests {
		if got := IsVideoURL(u); got != expected {
			t.Errorf("IsVideoURL(%q): expected %v, got %v", u, expected, got)
		}
	}
}

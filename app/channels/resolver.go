package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoChannel = errors.New("no channel ID found on page")

var videoHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// IsVideoURL reports whether rawURL points at YouTube
func IsVideoURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return videoHosts[strings.ToLower(u.Hostname())]
}

// Resolver looks up the channel ID behind a YouTube URL by reading the
// channelId meta tag of the page. Results are cached per URL.
type Resolver struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration

	mu    sync.Mutex
	cache map[string]string
}

func NewResolver(httpClient *http.Client, userAgent string, timeout time.Duration) *Resolver {
	return &Resolver{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		cache:      make(map[string]string),
	}
}

func (r *Resolver) ResolveChannel(ctx context.Context, rawURL string) (string, error) {
	if id, ok := channelFromPath(rawURL); ok {
		return id, nil
	}

	r.mu.Lock()
	id, ok := r.cache[rawURL]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := r.fetchChannel(ctx, rawURL)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[rawURL] = id
	r.mu.Unlock()

	slog.Debug("Channel resolved", "url", rawURL, "channel", id)

	return id, nil
}

func (r *Resolver) fetchChannel(ctx context.Context, rawURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	return channelFromDocument(doc)
}

func channelFromDocument(doc *goquery.Document) (string, error) {
	if id, ok := doc.Find(`meta[itemprop="channelId"]`).First().Attr("content"); ok && id != "" {
		return id, nil
	}

	if href, ok := doc.Find(`link[itemprop="url"]`).First().Attr("href"); ok {
		if id, ok := channelFromPath(href); ok {
			return id, nil
		}
	}

	return "", ErrNoChannel
}

// channelFromPath extracts the ID from /channel/<id> URLs without a fetch
func channelFromPath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	rest, ok := strings.CutPrefix(u.Path, "/channel/")
	if !ok {
		return "", false
	}

	id, _, _ := strings.Cut(rest, "/")
	return id, id != ""
}

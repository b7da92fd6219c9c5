package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/lysyi3m/post-comb/app/post"
)

var ErrUnauthorized = errors.New("unauthorized")

const (
	DefaultPublicURL = "https://www.reddit.com"
	DefaultOAuthURL  = "https://oauth.reddit.com"
)

type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

func (c *Credentials) Valid() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != "" && c.Username != "" && c.Password != ""
}

// JSONSource reads the "new" listing of a subreddit. With credentials it
// uses the OAuth password grant, otherwise the public .json listing.
type JSONSource struct {
	httpClient  *http.Client
	userAgent   string
	subreddit   string
	limit       int
	credentials *Credentials

	PublicURL string
	OAuthURL  string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewJSONSource(httpClient *http.Client, userAgent, subreddit string, limit int, credentials *Credentials) *JSONSource {
	if !credentials.Valid() {
		credentials = nil
	}
	return &JSONSource{
		httpClient:  httpClient,
		userAgent:   userAgent,
		subreddit:   subreddit,
		limit:       limit,
		credentials: credentials,
		PublicURL:   DefaultPublicURL,
		OAuthURL:    DefaultOAuthURL,
	}
}

func (s *JSONSource) FetchLatest(ctx context.Context) ([]post.Post, error) {
	if s.credentials == nil {
		endpoint := fmt.Sprintf("%s/r/%s/new.json?limit=%d&raw_json=1", s.PublicURL, s.subreddit, s.limit)
		return s.fetchListing(ctx, endpoint, "")
	}

	endpoint := fmt.Sprintf("%s/r/%s/new?limit=%d&raw_json=1", s.OAuthURL, s.subreddit, s.limit)

	token, err := s.accessToken(ctx, false)
	if err != nil {
		return nil, err
	}

	posts, err := s.fetchListing(ctx, endpoint, token)
	if errors.Is(err, ErrUnauthorized) {
		slog.Info("Access token rejected, re-authenticating", "subreddit", s.subreddit)

		token, err = s.accessToken(ctx, true)
		if err != nil {
			return nil, err
		}
		return s.fetchListing(ctx, endpoint, token)
	}

	return posts, err
}

func (s *JSONSource) fetchListing(ctx context.Context, endpoint, token string) ([]post.Post, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var l listing
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	posts := make([]post.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		posts = append(posts, child.Data.toPost())
	}

	return posts, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

func (s *JSONSource) accessToken(ctx context.Context, force bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && s.token != "" && time.Now().Before(s.expiresAt) {
		return s.token, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {s.credentials.Username},
		"password":   {s.credentials.Password},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.PublicURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	req.SetBasicAuth(s.credentials.ClientID, s.credentials.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("failed to authenticate: %w", ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("failed to authenticate: %w: %s", ErrUnauthorized, tr.Error)
	}

	s.token = tr.AccessToken
	// refresh a minute early
	s.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)

	slog.Debug("Access token acquired", "expires_in", tr.ExpiresIn)

	return s.token, nil
}

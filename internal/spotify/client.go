// Package spotify looks up album art, artist images and share links in the
// Spotify catalog. It only serves as a fallback when MusicBrainz and the
// Cover Art Archive have no answer.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"notionbrainz/internal/logging"
	"notionbrainz/internal/services"
)

const (
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultAPIURL   = "https://api.spotify.com/v1"
)

var errUnauthorized = errors.New("spotify: unauthorized")

// Client performs client-credential searches. A Client built without
// credentials is disabled and answers every lookup with "".
type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	interval     time.Duration
	httpClient   *http.Client
	logger       *slog.Logger

	mu    sync.Mutex
	token string
	last  time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoints overrides the token and API endpoints.
func WithEndpoints(tokenURL, apiURL string) Option {
	return func(c *Client) {
		if tokenURL = strings.TrimSpace(tokenURL); tokenURL != "" {
			c.tokenURL = tokenURL
		}
		if apiURL = strings.TrimSpace(apiURL); apiURL != "" {
			c.apiURL = strings.TrimRight(apiURL, "/")
		}
	}
}

// WithMinInterval sets the politeness delay between searches.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.interval = d
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "spotify")
	}
}

// New creates a Spotify client.
func New(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
		interval:     100 * time.Millisecond,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logging.NewComponentLogger(nil, "spotify"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether credentials were supplied.
func (c *Client) Enabled() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// AlbumArt returns the largest cover image for the best album match.
func (c *Client) AlbumArt(ctx context.Context, title, artist string) (string, error) {
	var payload searchResponse
	if err := c.search(ctx, "album", albumQuery(title, artist), &payload); err != nil || len(payload.Albums.Items) == 0 {
		return "", err
	}
	return firstImage(payload.Albums.Items[0].Images), nil
}

// AlbumLink returns the share URL for the best album match.
func (c *Client) AlbumLink(ctx context.Context, title, artist string) (string, error) {
	var payload searchResponse
	if err := c.search(ctx, "album", albumQuery(title, artist), &payload); err != nil || len(payload.Albums.Items) == 0 {
		return "", err
	}
	return payload.Albums.Items[0].ExternalURLs.Spotify, nil
}

// TrackLink returns the share URL for the best track match.
func (c *Client) TrackLink(ctx context.Context, title, artist string) (string, error) {
	query := "track:" + quote(title)
	if strings.TrimSpace(artist) != "" {
		query += " artist:" + quote(artist)
	}
	var payload searchResponse
	if err := c.search(ctx, "track", query, &payload); err != nil || len(payload.Tracks.Items) == 0 {
		return "", err
	}
	return payload.Tracks.Items[0].ExternalURLs.Spotify, nil
}

// ArtistImage returns the largest image for the best artist match.
func (c *Client) ArtistImage(ctx context.Context, name string) (string, error) {
	var payload searchResponse
	if err := c.search(ctx, "artist", "artist:"+quote(name), &payload); err != nil || len(payload.Artists.Items) == 0 {
		return "", err
	}
	return firstImage(payload.Artists.Items[0].Images), nil
}

func albumQuery(title, artist string) string {
	query := "album:" + quote(title)
	if strings.TrimSpace(artist) != "" {
		query += " artist:" + quote(artist)
	}
	return query
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(value), `"`, "") + `"`
}

func firstImage(images []image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// search runs one catalog search, refreshing the token once on a 401.
func (c *Client) search(ctx context.Context, kind, query string, dst *searchResponse) error {
	if !c.Enabled() {
		return nil
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	params.Set("limit", "1")
	target := c.apiURL + "/search?" + params.Encode()

	err := c.searchOnce(ctx, target, dst)
	if errors.Is(err, errUnauthorized) {
		c.dropToken()
		err = c.searchOnce(ctx, target, dst)
	}
	if err != nil {
		return services.Wrap(services.ErrTransient, "spotify", kind+" search", "", err)
	}
	return nil
}

func (c *Client) searchOnce(ctx context.Context, target string, dst *searchResponse) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	if err := c.pace(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	return nil
}

// pace spaces searches by the configured interval.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	wait := time.Duration(0)
	if !c.last.IsZero() {
		wait = c.interval - time.Since(c.last)
	}
	c.last = time.Now().Add(max(wait, 0))
	c.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("token endpoint returned no access token")
	}
	c.mu.Lock()
	c.token = payload.AccessToken
	c.mu.Unlock()
	c.logger.Debug("spotify token acquired")
	return payload.AccessToken, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

type image struct {
	URL string `json:"url"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type item struct {
	Name         string       `json:"name"`
	Images       []image      `json:"images"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type searchResponse struct {
	Albums  struct{ Items []item } `json:"albums"`
	Tracks  struct{ Items []item } `json:"tracks"`
	Artists struct{ Items []item } `json:"artists"`
}

package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"notionbrainz/internal/logging"
	"notionbrainz/internal/services"
)

const (
	defaultBaseURL     = "https://musicbrainz.org/ws/2"
	defaultCoverArtURL = "https://coverartarchive.org"

	artistIncludes    = "aliases+tags+ratings+release-groups+genres+url-rels+area-rels"
	releaseIncludes   = "artists+labels+recordings+release-groups+tags+ratings+genres+url-rels"
	recordingIncludes = "artists+releases+release-groups+tags+ratings+isrcs+url-rels+genres"
	labelIncludes     = "aliases+tags+ratings+url-rels+area-rels+genres"
	browseIncludes    = "artist-credits+labels+recordings+release-groups+media"
)

// Client provides rate-limited access to MusicBrainz and the Cover Art
// Archive.
type Client struct {
	baseURL     string
	coverArtURL string
	userAgent   string
	maxRetries  int
	httpClient  *http.Client
	limiter     *limiter
	sleep       Sleeper
	cache       *Cache
	logger      *slog.Logger
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

// WithCoverArtURL overrides the Cover Art Archive endpoint.
func WithCoverArtURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.coverArtURL = strings.TrimRight(base, "/")
		}
	}
}

// WithMinInterval overrides the spacing enforced between requests.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.limiter.interval = d
	}
}

// WithMaxRetries overrides the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithSleeper replaces the wait function used for rate limiting and backoff.
func WithSleeper(sleep Sleeper) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
			c.limiter.sleep = sleep
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "musicbrainz")
	}
}

// New creates a MusicBrainz client. userAgent is required by the service's
// terms of use.
func New(userAgent, baseURL string, opts ...Option) (*Client, error) {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		coverArtURL: defaultCoverArtURL,
		userAgent:   userAgent,
		maxRetries:  DefaultMaxRetries,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     newLimiter(DefaultMinInterval, SleepWithContext),
		sleep:       SleepWithContext,
		cache:       &Cache{},
		logger:      logging.NewComponentLogger(nil, "musicbrainz"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Reset clears the memoized lookups.
func (c *Client) Reset() {
	c.cache.Reset()
}

// Cache exposes the client's memo tables.
func (c *Client) Cache() *Cache {
	return c.cache
}

// SearchArtists runs a free-text artist search.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	var payload artistSearch
	if err := c.search(ctx, "artist", query, limit, &payload); err != nil {
		return nil, err
	}
	return payload.Artists, nil
}

// SearchLabels runs a free-text label search.
func (c *Client) SearchLabels(ctx context.Context, query string, limit int) ([]Label, error) {
	var payload labelSearch
	if err := c.search(ctx, "label", query, limit, &payload); err != nil {
		return nil, err
	}
	return payload.Labels, nil
}

// SearchReleases runs a Lucene release search.
func (c *Client) SearchReleases(ctx context.Context, query string, limit int) ([]Release, error) {
	var payload releaseSearch
	if err := c.search(ctx, "release", query, limit, &payload); err != nil {
		return nil, err
	}
	return payload.Releases, nil
}

// SearchRecordings runs a Lucene recording search.
func (c *Client) SearchRecordings(ctx context.Context, query string, limit int) ([]Recording, error) {
	var payload recordingSearch
	if err := c.search(ctx, "recording", query, limit, &payload); err != nil {
		return nil, err
	}
	return payload.Recordings, nil
}

// ReleasesWithRecording lists releases whose track listing includes the
// recording, using the browse endpoint because release search cannot filter
// by recording MBID.
func (c *Client) ReleasesWithRecording(ctx context.Context, recordingID string, limit int) ([]Release, error) {
	if !ValidID(recordingID) {
		return nil, services.Wrap(services.ErrNotFound, "musicbrainz", "browse releases", "invalid recording id "+recordingID, nil)
	}
	params := url.Values{}
	params.Set("recording", recordingID)
	params.Set("inc", browseIncludes)
	params.Set("limit", strconv.Itoa(limit))
	var payload releaseSearch
	if err := c.getJSON(ctx, "browse releases", c.baseURL+"/release", params, &payload); err != nil {
		return nil, err
	}
	return payload.Releases, nil
}

// Artist fetches full artist detail.
func (c *Client) Artist(ctx context.Context, id string) (*Artist, error) {
	return lookup(ctx, c, &c.cache.artists, "artist", id, artistIncludes)
}

// Release fetches full release detail including track listings.
func (c *Client) Release(ctx context.Context, id string) (*Release, error) {
	return lookup(ctx, c, &c.cache.releases, "release", id, releaseIncludes)
}

// Recording fetches full recording detail including its releases.
func (c *Client) Recording(ctx context.Context, id string) (*Recording, error) {
	return lookup(ctx, c, &c.cache.recordings, "recording", id, recordingIncludes)
}

// Label fetches full label detail.
func (c *Client) Label(ctx context.Context, id string) (*Label, error) {
	return lookup(ctx, c, &c.cache.labels, "label", id, labelIncludes)
}

// CoverArt returns the front cover image URL for a release, or "" when the
// archive has none.
func (c *Client) CoverArt(ctx context.Context, releaseID string) (string, error) {
	if cached, ok := c.cache.coverArt.get(releaseID); ok {
		return cached, nil
	}
	if !ValidID(releaseID) {
		return "", nil
	}
	var listing coverArtListing
	err := c.getJSON(ctx, "cover art", c.coverArtURL+"/release/"+releaseID, nil, &listing)
	if errors.Is(err, services.ErrNotFound) {
		c.cache.coverArt.put(releaseID, "")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	image := ""
	for _, img := range listing.Images {
		if img.Front && img.Image != "" {
			image = img.Image
			break
		}
	}
	c.cache.coverArt.put(releaseID, image)
	return image, nil
}

func lookup[T any](ctx context.Context, c *Client, table *memo[*T], entity, id, includes string) (*T, error) {
	id = strings.TrimSpace(id)
	if cached, ok := table.get(id); ok {
		return cached, nil
	}
	if !ValidID(id) {
		return nil, services.Wrap(services.ErrNotFound, "musicbrainz", entity, "invalid id "+strconv.Quote(id), nil)
	}
	params := url.Values{}
	params.Set("inc", includes)
	var payload T
	if err := c.getJSON(ctx, entity, c.baseURL+"/"+entity+"/"+id, params, &payload); err != nil {
		return nil, err
	}
	table.put(id, &payload)
	return &payload, nil
}

func (c *Client) search(ctx context.Context, entity, query string, limit int, dst any) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.getJSON(ctx, entity+" search", c.baseURL+"/"+entity, params, dst)
}

// getJSON performs a rate-limited GET with the retry schedule and decodes the
// body into dst.
func (c *Client) getJSON(ctx context.Context, operation, endpoint string, params url.Values, dst any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("fmt", "json")
	target := endpoint + "?" + params.Encode()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		status, err := c.fetch(ctx, target, dst)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if status == http.StatusNotFound {
			return services.Wrap(services.ErrNotFound, "musicbrainz", operation, "", err)
		}
		var decodeErr *decodeError
		if errors.As(err, &decodeErr) {
			return services.Wrap(services.ErrTransient, "musicbrainz", operation, "decode response", err)
		}
		if attempt >= c.maxRetries {
			return services.Wrap(services.ErrTransient, "musicbrainz", operation,
				fmt.Sprintf("giving up after %d attempts", attempt+1), err)
		}
		delay := Backoff(attempt, status == http.StatusTooManyRequests)
		c.logger.Debug("musicbrainz request retry",
			logging.String("operation", operation),
			logging.Int("attempt", attempt+1),
			logging.Int("status", status),
			logging.Duration("delay", delay),
			logging.Error(err))
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

func (c *Client) fetch(ctx context.Context, target string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return 0, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("status %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, &decodeError{err: err}
	}
	return resp.StatusCode, nil
}

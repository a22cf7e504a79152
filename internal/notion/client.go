package notion

import (
	"bytes"
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
	defaultBaseURL = "https://api.notion.com/v1"
	defaultVersion = "2022-06-28"
	maxPageSize    = 100
)

// Client talks to the Notion REST API.
type Client struct {
	token      string
	baseURL    string
	version    string
	maxRetries int
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
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

// WithBaseURL overrides the API endpoint.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithVersion overrides the Notion-Version header.
func WithVersion(version string) Option {
	return func(c *Client) {
		if version = strings.TrimSpace(version); version != "" {
			c.version = version
		}
	}
}

// WithMaxRetries bounds retries of rate-limited requests.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithSleeper replaces the wait used between rate-limited retries.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "notion")
	}
}

// New creates a Notion client.
func New(token string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "notion", "new client", "token required", nil)
	}
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		version:    defaultVersion,
		maxRetries: 3,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sleep:      sleepWithContext,
		logger:     logging.NewComponentLogger(nil, "notion"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Database fetches a database definition.
func (c *Client) Database(ctx context.Context, id string) (*Database, error) {
	var db Database
	if err := c.do(ctx, "get database", http.MethodGet, "/databases/"+id, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// Schema fetches a database definition and indexes it by property ID.
func (c *Client) Schema(ctx context.Context, id string) (*Schema, error) {
	db, err := c.Database(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSchema(db), nil
}

// QueryDatabase returns every page matching q, following pagination cursors.
func (c *Client) QueryDatabase(ctx context.Context, id string, q Query) ([]Page, error) {
	var pages []Page
	cursor := ""
	for {
		body := map[string]any{"page_size": maxPageSize}
		if q.Limit > 0 && q.Limit-len(pages) < maxPageSize {
			body["page_size"] = q.Limit - len(pages)
		}
		if len(q.Filter) > 0 {
			body["filter"] = q.Filter
		}
		if len(q.Sorts) > 0 {
			body["sorts"] = q.Sorts
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var resp struct {
			Results    []Page `json:"results"`
			HasMore    bool   `json:"has_more"`
			NextCursor string `json:"next_cursor"`
		}
		if err := c.do(ctx, "query database", http.MethodPost, "/databases/"+id+"/query", body, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if q.Limit > 0 && len(pages) >= q.Limit {
			return pages[:q.Limit], nil
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// Page fetches a single page.
func (c *Client) Page(ctx context.Context, id string) (*Page, error) {
	var page Page
	if err := c.do(ctx, "get page", http.MethodGet, "/pages/"+id, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RelationIDs returns every page ID referenced by a relation property,
// following pagination. Page payloads carry at most 25 references per
// relation and flag the rest with has_more.
func (c *Client) RelationIDs(ctx context.Context, pageID, propertyID string) ([]string, error) {
	if decoded, err := url.PathUnescape(propertyID); err == nil {
		propertyID = decoded
	}
	base := "/pages/" + pageID + "/properties/" + url.PathEscape(propertyID)
	var ids []string
	cursor := ""
	for {
		params := url.Values{}
		params.Set("page_size", strconv.Itoa(maxPageSize))
		if cursor != "" {
			params.Set("start_cursor", cursor)
		}
		var resp struct {
			Results []struct {
				Relation Ref `json:"relation"`
			} `json:"results"`
			HasMore    bool   `json:"has_more"`
			NextCursor string `json:"next_cursor"`
		}
		if err := c.do(ctx, "get relation", http.MethodGet, base+"?"+params.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Results {
			if item.Relation.ID != "" {
				ids = append(ids, item.Relation.ID)
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return ids, nil
		}
		cursor = resp.NextCursor
	}
}

// CreatePage adds a page to a database and returns its ID.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props Properties, opts PageOptions) (string, error) {
	body := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": props,
	}
	opts.apply(body)
	var page Page
	if err := c.do(ctx, "create page", http.MethodPost, "/pages", body, &page); err != nil {
		return "", asWriteFailure(err)
	}
	return page.ID, nil
}

// UpdatePage writes properties, cover and icon to an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, props Properties, opts PageOptions) error {
	body := map[string]any{"properties": props}
	opts.apply(body)
	if err := c.do(ctx, "update page", http.MethodPatch, "/pages/"+pageID, body, nil); err != nil {
		return asWriteFailure(err)
	}
	return nil
}

func asWriteFailure(err error) error {
	if errors.Is(err, services.ErrConfiguration) || errors.Is(err, context.Canceled) {
		return err
	}
	return services.Wrap(services.ErrWriteFailure, "notion", "write", "", err)
}

// apiError is the error envelope returned by the API.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("notion %d %s: %s", e.Status, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, operation, method, path string, body any, dst any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", operation, err)
		}
		payload = encoded
	}
	for attempt := 0; ; attempt++ {
		retryAfter, err := c.send(ctx, method, path, payload, dst)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var apiErr *apiError
		if !errors.As(err, &apiErr) {
			return services.Wrap(services.ErrTransient, "notion", operation, "", err)
		}
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return services.Wrap(services.ErrConfiguration, "notion", operation, "token rejected", err)
		case apiErr.Status == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "notion", operation, "object not found or not shared with the integration", err)
		case apiErr.Status == http.StatusTooManyRequests && attempt < c.maxRetries:
			c.logger.Debug("notion rate limited",
				logging.String("operation", operation),
				logging.Int("attempt", attempt+1),
				logging.Duration("delay", retryAfter))
			if err := c.sleep(ctx, retryAfter); err != nil {
				return err
			}
			continue
		case apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, "notion", operation, "", err)
		default:
			return services.Wrap(services.ErrValidation, "notion", operation, "", err)
		}
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, dst any) (time.Duration, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.Status = resp.StatusCode
		return retryAfter(resp.Header.Get("Retry-After")), apiErr
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return 0, nil
}

func retryAfter(header string) time.Duration {
	if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return time.Second
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

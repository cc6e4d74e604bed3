// Package cfbd talks to the College Football Data API through a
// cache-aside proxy: responses are cached by a SHA-256 hash of the
// canonical request URL with per-endpoint TTLs, and upstream failures
// are reported as fixed human-readable strings that tool callers pass
// through verbatim.
package cfbd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/gridironlab/cfbd-mcp/internal/errors"
)

const (
	// DefaultBaseURL is the upstream API root.
	DefaultBaseURL = "https://apinext.collegefootballdata.com"

	// httpClientTimeout bounds each upstream request.
	httpClientTimeout = 30 * time.Second

	// maxResponseBytes caps upstream body reads. Play-by-play payloads
	// for a full week run to a few megabytes.
	maxResponseBytes = 16 * 1024 * 1024
)

// UpstreamError is a non-2xx response from the API. Its Error string is
// the exact text surfaced to tool callers, who pattern-match on it.
type UpstreamError struct {
	Status int
	msg    string
}

func (e *UpstreamError) Error() string { return e.msg }

func newUpstreamError(status int, body []byte) *UpstreamError {
	var msg string
	switch status {
	case http.StatusUnauthorized:
		msg = "401: API authentication failed. Please check your API key."
	case http.StatusForbidden:
		msg = "403: API access forbidden. Please check your permission."
	case http.StatusTooManyRequests:
		msg = "429: Rate limit exceeded. Please try again later."
	default:
		msg = fmt.Sprintf("API Error: %d - %s", status, body)
	}
	return &UpstreamError{Status: status, msg: msg}
}

// Client fetches from the upstream API with a cache in front. A nil
// cache disables caching; every call then goes upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      Cache
	ttl        TTLPolicy
	logger     *slog.Logger
	group      singleflight.Group
}

// NewClient creates an API client. cache may be nil to disable caching,
// and httpClient may be nil for a default with a 30-second timeout.
func NewClient(apiKey, baseURL string, cache Cache, ttl TTLPolicy, logger *slog.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if ttl == nil {
		ttl = DefaultTTLPolicy()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// CanonicalURL builds the full request URL with the query parameters in
// sorted, encoded order, so equivalent requests share one cache entry.
func (c *Client) CanonicalURL(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// CacheKey returns the hex SHA-256 of the canonical URL.
func CacheKey(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])
}

// Fetch returns the upstream response body for an endpoint, serving
// from cache when possible. Cache failures degrade to a plain upstream
// fetch and are never surfaced to the caller. Concurrent requests for
// the same canonical URL are coalesced into a single upstream call.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	canonical := c.CanonicalURL(path, params)
	key := CacheKey(canonical)

	if c.cache != nil {
		body, err := c.cache.Get(ctx, key)
		if err == nil {
			c.logger.Debug("cache hit", "path", path, "key", key)
			return body, nil
		}
		if err != apperrors.ErrCacheMiss {
			c.logger.Warn("cache read failed, fetching upstream", "path", path, "error", err)
		}
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		body, err := c.fetchUpstream(ctx, canonical)
		if err != nil {
			return nil, err
		}
		c.store(ctx, path, key, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// store writes a response body to the cache. Bodies that are not valid
// JSON are skipped: the upstream occasionally serves HTML error pages
// with a 200 status, and caching those would pin garbage for the TTL.
func (c *Client) store(ctx context.Context, path, key string, body []byte) {
	if c.cache == nil {
		return
	}
	if !gjson.ValidBytes(body) {
		c.logger.Warn("upstream response is not valid JSON, not caching", "path", path)
		return
	}

	ttl := c.ttl.TTLFor(path)
	if err := c.cache.Set(ctx, key, body, ttl); err != nil {
		c.logger.Warn("cache write failed", "path", path, "error", err)
	}
}

// fetchUpstream performs the HTTP request. Errors are returned with the
// exact message text the tool layer passes to callers.
func (c *Client) fetchUpstream(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("Network error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newUpstreamError(resp.StatusCode, body)
	}

	return body, nil
}

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pfrederiksen/mtb-routes/internal/logger"
)

const (
	DefaultUserAgent = "mtb-routes/1.0 (github.com/pfrederiksen/mtb-routes)"
	DefaultTimeout   = 30 * time.Second
)

// ErrEmptyBody is returned when the server answers with no content.
var ErrEmptyBody = errors.New("empty response body")

// Options configures a Client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond limits outgoing requests; zero or less disables the limit.
	RequestsPerSecond float64
	// Cache is optional.
	Cache *Cache
}

// Client fetches pages over HTTP.
type Client struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	cache     *Cache
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		limiter:   limiter,
		cache:     opts.Cache,
	}
}

// Cache returns the page cache, or nil when caching is disabled.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Fetch returns the body of url, from the cache when possible.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.IncrCounter("pages.cached")
			return body, nil
		}
	}

	body, err := c.download(ctx, url)
	if err != nil {
		logger.IncrCounter("pages.fetch_failed")
		return nil, err
	}
	logger.IncrCounter("pages.fetched")

	if c.cache != nil {
		if err := c.cache.Put(ctx, url, body); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status code: %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	logger.RecordTiming("fetch", time.Since(start))

	if len(body) == 0 {
		return nil, fmt.Errorf("fetching %s: %w", url, ErrEmptyBody)
	}
	return body, nil
}

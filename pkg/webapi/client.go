// Package webapi is the shared HTTP JSON client used by talents that talk to
// public web APIs. It adds a bounded timeout, an optional response cache and
// an optional client side rate limit, and classifies failures.
package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// Client performs GET requests against one service.
type Client struct {
	service string
	http    *http.Client
	cache   *ttlcache.Cache[string, []byte]
	limiter *rate.Limiter
	header  http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache caches successful response bodies for ttl.
func WithCache(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](ttl),
			ttlcache.WithCapacity[string, []byte](512),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		)
	}
}

// WithRateLimit allows at most r requests per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// New returns a client for service. service names the API in user facing
// messages.
func New(service string, opts ...Option) *Client {
	c := &Client{
		service: service,
		http:    &http.Client{Timeout: DefaultTimeout},
		header:  http.Header{},
	}
	c.header.Set("Accept", "application/json")
	c.header.Set("User-Agent", "talon-talents/1.0")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name.
func (c *Client) Service() string { return c.service }

// GetJSON fetches url and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return talent.Remote(c.service+" returned an unexpected response.", errors.Wrap(err, "decode response"))
	}
	return nil
}

// Get fetches url and returns the raw body. Errors are classified
// talent errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.cache != nil {
		if item := c.cache.Get(url); item != nil {
			return item.Value(), nil
		}
	}

	if c.limiter != nil && !c.limiter.Allow() {
		return nil, talent.RateLimited(c.service)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, talent.Remote("Could not build the "+c.service+" request.", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, talent.Remote(c.service+" timed out. Please try again.", err)
		}
		return nil, talent.Remote("Could not reach "+c.service+".", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, talent.RateLimited(c.service)
	case resp.StatusCode == http.StatusNotFound:
		return nil, talent.NewError(talent.KindNotFound, c.service+" has no data for that request.", &StatusError{Code: resp.StatusCode, URL: url})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, talent.Remote(fmt.Sprintf("%s returned an error (HTTP %d).", c.service, resp.StatusCode), &StatusError{Code: resp.StatusCode, URL: url})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, talent.Remote("Could not read the "+c.service+" response.", err)
	}
	if c.cache != nil {
		c.cache.Set(url, body, ttlcache.DefaultTTL)
	}
	return body, nil
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

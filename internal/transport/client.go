// Package transport performs every HTTP request made against the
// reference-data API. It applies the configured rate limit, timeout and user
// agent, bounds response sizes and reports every failure as a TransportError.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/logging"
)

// Config configures the HTTP client behavior.
type Config struct {
	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// RateLimit in requests per second. Zero means unlimited.
	RateLimit float64

	// RateBurst maximum burst size (default: 1).
	RateBurst int

	// UserAgent sent with every request.
	UserAgent string

	// HTTPClient replaces the default client (for tests/stubs).
	// Its Timeout is left untouched.
	HTTPClient *http.Client
}

// DefaultConfig returns a client config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   constants.DefaultHTTPTimeout,
		RateBurst: constants.DefaultRateBurst,
		UserAgent: constants.DefaultUserAgent,
	}
}

// Client is a rate-limited HTTP client for XML resources.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// New creates a new transport client. A nil config uses DefaultConfig.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = constants.DefaultRateBurst
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.DefaultUserAgent
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, cfg.RateBurst),
		userAgent: cfg.UserAgent,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Charset returns the character set declared by the response, preferring
// the Content-Type header over the XML declaration. Empty means UTF-8.
func (r *Response) Charset() string {
	if cs := mediaCharset(r.Header.Get("Content-Type")); cs != "" {
		return cs
	}
	return DeclaredCharset(r.Body)
}

// Get fetches url. The operation names the pipeline step for error reports.
// Any failure, including a non-2xx status, is returned as a *errors.TransportError.
func (c *Client) Get(ctx context.Context, operation, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewTransportError(operation, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewTransportError(operation, url, err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", c.userAgent)

	logging.FromContext(ctx).Debug().
		Str("operation", operation).
		Str("url", url).
		Msg("HTTP GET")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewTransportError(operation, url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.FromContext(ctx).Warn().Err(cerr).Str("url", url).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewStatusError(operation, url, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseSize+1))
	if err != nil {
		return nil, errors.NewTransportError(operation, url, err)
	}
	if len(body) > constants.MaxResponseSize {
		return nil, errors.NewTransportError(operation, url,
			fmt.Errorf("response exceeds %d bytes", constants.MaxResponseSize))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

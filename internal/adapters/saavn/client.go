// Package saavn implements the catalog port against a JioSaavn-compatible
// search API (search/songs and songs/{id}).
package saavn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/metrics"
)

const (
	DefaultBaseURL = "https://saavn.dev/api"

	maxBodyBytes = 4 << 20
)

// Client is an HTTP client for the catalog API. It performs no retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// compile-time interface assertion
var _ ports.Catalog = (*Client)(nil)

type Option func(*Client)

// WithBreaker guards every catalog request with a circuit breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = newBreaker(cfg)
	}
}

// NewClient constructs a catalog client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError is returned for non-2xx responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.code)
}

// getJSON fetches rawURL and decodes the body into out. endpoint labels
// metrics.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	body, err := c.fetch(ctx, rawURL)
	metrics.RecordCatalog(endpoint, err)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// fetch runs one request through the breaker when configured. A request
// whose context is already done never reaches the breaker.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.breaker == nil {
		return c.do(ctx, rawURL)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, rawURL)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", metrics.ErrBreakerOpen, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

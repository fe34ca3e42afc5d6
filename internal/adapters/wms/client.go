package wms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/tilegrab/internal/logging"
	"github.com/example/tilegrab/internal/metrics"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// Defaults for the retry loop.
const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 200 * time.Millisecond
)

// ErrRetriesExhausted is wrapped by FetchError once every attempt failed.
var ErrRetriesExhausted = errors.New("wms: retries exhausted")

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// FetchError is the terminal failure of a fetch after all attempts.
type FetchError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

// Unwrap exposes both the exhaustion sentinel and the last cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrRetriesExhausted, e.Last}
}

// ClientConfig contains configuration for a Client.
type ClientConfig struct {
	Service     string // metrics/log label, e.g. "label" or "image"
	MaxAttempts int
	RetryDelay  time.Duration
}

// Client fetches GetMap responses with a fixed-delay retry loop. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	http    *http.Client
	cfg     ClientConfig
	metrics *metrics.Metrics
}

// NewClient creates a Client sharing the given transport.
func NewClient(httpClient *http.Client, cfg ClientConfig, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	return &Client{http: httpClient, cfg: cfg, metrics: m}
}

// Fetch performs up to MaxAttempts GET requests, waiting RetryDelay between
// failed attempts. Each attempt is logged with its number and outcome.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := logging.FromContext(ctx).WithValues("service", c.cfg.Service)

	var last error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		body, err := c.attempt(ctx, url)
		if err == nil {
			c.metrics.RecordFetchAttempt(c.cfg.Service, "success")
			logger.V(logging.VERBOSE).Info("fetch attempt succeeded", "attempt", attempt, "bytes", len(body))
			return body, nil
		}
		last = err
		c.metrics.RecordFetchAttempt(c.cfg.Service, outcomeOf(err))
		logger.Error(err, "fetch attempt failed", "attempt", attempt, "maxAttempts", c.cfg.MaxAttempts)

		if ctx.Err() != nil {
			return nil, &FetchError{URL: url, Attempts: attempt, Last: ctx.Err()}
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}
		if err := sleep(ctx, c.cfg.RetryDelay); err != nil {
			return nil, &FetchError{URL: url, Attempts: attempt, Last: err}
		}
	}

	logger.Error(last, "fetch gave up", "attempts", c.cfg.MaxAttempts)
	return nil, &FetchError{URL: url, Attempts: c.cfg.MaxAttempts, Last: last}
}

func (c *Client) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

func outcomeOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return "http_error"
	}
	return "transport_error"
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ensure Client implements the interface
var _ secondary.Fetcher = (*Client)(nil)

// Package http wraps the standard client with rate limiting and retry.
// Market data providers throttle aggressively on free tiers, so every
// outbound request goes through the shared limiter.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client is an HTTP client with a token-bucket rate limiter and
// exponential-backoff retries on transport errors and retryable statuses.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
}

// ClientOptions configures a Client. Zero fields fall back to defaults.
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerMin  int
	MaxRetryElapsed time.Duration
}

// NewClient creates a rate-limited HTTP client.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerMin == 0 {
		opts.RequestsPerMin = 5
	}
	if opts.MaxRetryElapsed == 0 {
		opts.MaxRetryElapsed = 2 * time.Minute
	}

	interval := time.Minute / time.Duration(opts.RequestsPerMin)
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		maxElapsed: opts.MaxRetryElapsed,
	}
}

// Do performs the request after a limiter slot becomes free, retrying with
// exponential backoff on transport errors, 429 and 5xx responses. The
// caller owns the response body on success.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return err
		}
		if retryable(resp.StatusCode) {
			resp.Body.Close()
			return &StatusError{StatusCode: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode})
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Package http wraps the standard client with token-bucket pacing and
// retry-with-backoff for the external providers this service talks to.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/trendscout/research-service/internal/http/ratelimit"
)

const userAgent = "TrendScout-ResearchService/1.0"

// Client is an HTTP client with rate limiting and retry logic. One client
// is constructed per upstream provider so each gets its own token bucket.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     ratelimit.Config
}

// NewClient creates a client with the given pacing config.
func NewClient(config ratelimit.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: ratelimit.NewLimiter(config),
		config:  config,
	}
}

// NewClientDefault creates a client with default pacing.
func NewClientDefault() *Client {
	return NewClient(ratelimit.DefaultConfig())
}

// Config returns the pacing config the client was built with.
func (c *Client) Config() ratelimit.Config {
	return c.config
}

// Do performs a request with pacing and retries. The body is held as
// bytes so it can be replayed across attempts; headers are applied on
// every attempt. A non-retryable status is returned to the caller as a
// FetchRetryError immediately.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header, body []byte) (*http.Response, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.config.MaxRetries {
				sleepCtx(ctx, ratelimit.CalculateBackoff(attempt, c.config))
				continue
			}
			break
		}

		lastStatus = resp.StatusCode
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		if !ratelimit.IsRetryableStatus(resp.StatusCode) || attempt == c.config.MaxRetries {
			resp.Body.Close()
			return nil, &ratelimit.FetchRetryError{
				URL:        url,
				Attempts:   attempt + 1,
				LastStatus: resp.StatusCode,
			}
		}

		var backoff time.Duration
		if resp.StatusCode == http.StatusTooManyRequests {
			backoff = ratelimit.CalculateRateLimitBackoff(attempt, c.config, resp.Header.Get("Retry-After"))
		} else {
			backoff = ratelimit.CalculateBackoff(attempt, c.config)
		}
		resp.Body.Close()
		sleepCtx(ctx, backoff)
	}

	return nil, &ratelimit.FetchRetryError{
		URL:        url,
		Attempts:   c.config.MaxRetries + 1,
		LastStatus: lastStatus,
		LastError:  lastErr,
	}
}

// GetBytes performs a GET request and returns the response body.
func (c *Client) GetBytes(ctx context.Context, url string, header http.Header) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, url, header, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

// PostJSON performs a POST with a JSON payload and returns the response body.
func (c *Client) PostJSON(ctx context.Context, url string, header http.Header, payload []byte) ([]byte, error) {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")

	resp, err := c.Do(ctx, http.MethodPost, url, header, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

package ratelimit

import (
	"math"
	"math/rand"
	"strconv"
	"time"
)

// FetchRetryError reports that all retry attempts against an upstream
// provider were exhausted.
type FetchRetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *FetchRetryError) Error() string {
	msg := "failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *FetchRetryError) Unwrap() error { return e.LastError }

// IsRetryableStatus reports whether an HTTP status is worth retrying.
// Retryable: 429 and 5xx.
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// CalculateBackoff returns the exponential backoff delay for an attempt,
// with 0-25% jitter to avoid thundering herds.
func CalculateBackoff(attempt int, cfg Config) time.Duration {
	exponential := float64(cfg.InitialBackoffMs) * math.Pow(2.0, float64(attempt))
	capped := math.Min(exponential, float64(cfg.MaxBackoffMs))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped+jitter) * time.Millisecond
}

// CalculateRateLimitBackoff returns the delay for HTTP 429 responses.
// A server-provided Retry-After header wins; otherwise backoff grows with
// a 3x multiplier instead of 2x.
func CalculateRateLimitBackoff(attempt int, cfg Config, retryAfter string) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
			return time.Duration(seconds)*time.Second + jitter
		}
	}

	exponential := float64(cfg.InitialBackoffMs) * math.Pow(3.0, float64(attempt))
	capped := math.Min(exponential, float64(cfg.MaxBackoffMs))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped+jitter) * time.Millisecond
}

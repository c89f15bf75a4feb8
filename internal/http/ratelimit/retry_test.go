package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{200, false},
		{301, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{599, true},
		{600, false},
	}

	for _, tt := range tests {
		result := IsRetryableStatus(tt.status)
		if result != tt.expected {
			t.Errorf("IsRetryableStatus(%d) = %v, want %v", tt.status, result, tt.expected)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{InitialBackoffMs: 100, MaxBackoffMs: 30000}

	t.Run("Grows exponentially with jitter bound", func(t *testing.T) {
		for attempt := 0; attempt < 5; attempt++ {
			base := time.Duration(100<<attempt) * time.Millisecond
			delay := CalculateBackoff(attempt, cfg)
			assert.GreaterOrEqual(t, delay, base)
			assert.LessOrEqual(t, delay, base+base/4)
		}
	})

	t.Run("Respects the cap", func(t *testing.T) {
		delay := CalculateBackoff(20, cfg)
		maxWithJitter := time.Duration(float64(cfg.MaxBackoffMs)*1.25) * time.Millisecond
		assert.LessOrEqual(t, delay, maxWithJitter)
	})
}

func TestCalculateRateLimitBackoff(t *testing.T) {
	cfg := Config{InitialBackoffMs: 100, MaxBackoffMs: 30000}

	t.Run("Retry-After header wins", func(t *testing.T) {
		delay := CalculateRateLimitBackoff(0, cfg, "7")
		assert.GreaterOrEqual(t, delay, 7*time.Second)
		assert.Less(t, delay, 8*time.Second)
	})

	t.Run("Invalid Retry-After falls back to exponential", func(t *testing.T) {
		delay := CalculateRateLimitBackoff(0, cfg, "soon")
		assert.GreaterOrEqual(t, delay, 100*time.Millisecond)
		assert.Less(t, delay, time.Second)
	})

	t.Run("Grows faster than regular backoff", func(t *testing.T) {
		delay := CalculateRateLimitBackoff(3, cfg, "")
		// 100ms * 3^3 = 2.7s minimum before jitter
		assert.GreaterOrEqual(t, delay, 2700*time.Millisecond)
	})
}

func TestFetchRetryError(t *testing.T) {
	inner := errors.New("connection refused")
	err := &FetchRetryError{URL: "https://api.example.com/search", Attempts: 3, LastStatus: 503, LastError: inner}

	assert.Contains(t, err.Error(), "https://api.example.com/search")
	assert.Contains(t, err.Error(), "3 attempts")
	assert.Contains(t, err.Error(), "503")
	assert.ErrorIs(t, err, inner)
}

func TestWithOverrides(t *testing.T) {
	rps := 2.0
	retries := 5

	cfg := WithOverrides(PartialConfig{RequestsPerSecond: &rps, MaxRetries: &retries})

	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 5, cfg.MaxRetries)
	// Untouched fields keep defaults
	assert.Equal(t, DefaultConfig().Burst, cfg.Burst)
	assert.Equal(t, DefaultConfig().InitialBackoffMs, cfg.InitialBackoffMs)
}

func TestNewLimiter(t *testing.T) {
	t.Run("Zero rate means unlimited", func(t *testing.T) {
		limiter := NewLimiter(Config{RequestsPerSecond: 0})
		assert.True(t, limiter.Allow())
		assert.True(t, limiter.Allow())
	})

	t.Run("Burst floor of one", func(t *testing.T) {
		limiter := NewLimiter(Config{RequestsPerSecond: 1, Burst: 0})
		assert.Equal(t, 1, limiter.Burst())
	})
}

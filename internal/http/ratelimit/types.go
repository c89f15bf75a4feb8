// Package ratelimit provides client-side pacing and retry policy for
// outbound calls to the product search and completion providers. Both
// providers meter by request, so a shared token bucket keeps the service
// under their limits without per-call sleeps scattered through callers.
package ratelimit

import "golang.org/x/time/rate"

// Config holds pacing and retry configuration for one upstream provider.
type Config struct {
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	Burst             int     `json:"burst"`
	MaxRetries        int     `json:"maxRetries"`
	InitialBackoffMs  int     `json:"initialBackoffMs"`
	MaxBackoffMs      int     `json:"maxBackoffMs"`
}

// DefaultConfig returns the default pacing configuration: five requests
// per second, one call per 200ms.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		Burst:             1,
		MaxRetries:        3,
		InitialBackoffMs:  100,
		MaxBackoffMs:      30000,
	}
}

// PartialConfig allows per-provider overrides of individual fields.
type PartialConfig struct {
	RequestsPerSecond *float64 `json:"requestsPerSecond,omitempty"`
	Burst             *int     `json:"burst,omitempty"`
	MaxRetries        *int     `json:"maxRetries,omitempty"`
	InitialBackoffMs  *int     `json:"initialBackoffMs,omitempty"`
	MaxBackoffMs      *int     `json:"maxBackoffMs,omitempty"`
}

// WithOverrides returns the default config with the given overrides applied.
func WithOverrides(overrides PartialConfig) Config {
	cfg := DefaultConfig()
	if overrides.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *overrides.RequestsPerSecond
	}
	if overrides.Burst != nil {
		cfg.Burst = *overrides.Burst
	}
	if overrides.MaxRetries != nil {
		cfg.MaxRetries = *overrides.MaxRetries
	}
	if overrides.InitialBackoffMs != nil {
		cfg.InitialBackoffMs = *overrides.InitialBackoffMs
	}
	if overrides.MaxBackoffMs != nil {
		cfg.MaxBackoffMs = *overrides.MaxBackoffMs
	}
	return cfg
}

// NewLimiter builds a token-bucket limiter from the config. Tests inject
// rate.Inf by constructing the limiter themselves.
func NewLimiter(cfg Config) *rate.Limiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

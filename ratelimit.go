package bearchat

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures outbound request limiting.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: 1)
}

// NewRateLimiter creates a token bucket limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *rate.Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// RateLimitedTranslator wraps a RemoteTranslator with rate limiting.
type RateLimitedTranslator struct {
	translator RemoteTranslator
	limiter    *rate.Limiter
}

// NewRateLimitedTranslator creates a new rate-limited translator.
func NewRateLimitedTranslator(translator RemoteTranslator, cfg RateLimitConfig) *RateLimitedTranslator {
	return &RateLimitedTranslator{
		translator: translator,
		limiter:    NewRateLimiter(cfg),
	}
}

// Translate implements RemoteTranslator, waiting for a token before
// delegating. Empty requests bypass the limiter.
func (t *RateLimitedTranslator) Translate(ctx context.Context, req TranslationRequest) TranslationResult {
	if req.IsEmpty() {
		return t.translator.Translate(ctx, req)
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return TranslationResult{Err: &NetworkError{
			Message: "rate limit wait cancelled",
			Cause:   err,
		}}
	}

	return t.translator.Translate(ctx, req)
}

// ModelName implements RemoteTranslator.
func (t *RateLimitedTranslator) ModelName() string {
	return t.translator.ModelName()
}

// Limiter returns the underlying rate limiter for inspection.
func (t *RateLimitedTranslator) Limiter() *rate.Limiter {
	return t.limiter
}

var _ RemoteTranslator = (*RateLimitedTranslator)(nil)

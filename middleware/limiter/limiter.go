package limiter

import (
	"golang.org/x/time/rate"

	"github.com/sweetpotato0/radsafe/middleware"
)

// ErrRateLimitExceeded is returned when the token bucket is empty.
var ErrRateLimitExceeded = middleware.ErrRateLimitExceeded

// RateLimiter rejects requests once the token bucket is exhausted. One
// instance is shared by every request it guards.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows rps requests per second with bursts of up to burst.
// A non-positive burst is treated as 1.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Name returns the middleware name
func (m *RateLimiter) Name() string {
	return "RateLimiter"
}

// Execute checks rate limit
func (m *RateLimiter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if !m.limiter.Allow() {
		return ErrRateLimitExceeded
	}
	return next(ctx)
}

// Tokens returns the tokens currently available.
func (m *RateLimiter) Tokens() float64 {
	return m.limiter.Tokens()
}

package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
	"pagescraper/pkg/config"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// New returns a token bucket limiter, or a no-op limiter when requestsPerSecond is 0
func New(requestsPerSecond float64, burst int) Limiter {
	if requestsPerSecond <= 0 {
		return Unlimited{}
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// FromSettings builds a limiter from the rate_limit configuration section
func FromSettings(s config.RateLimitConfig) Limiter {
	return New(s.RequestsPerSecond, s.Burst)
}

// TokenBucket paces requests with golang.org/x/time/rate
type TokenBucket struct {
	limiter *rate.Limiter
}

func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.limiter.Wait(ctx)
}

// Unlimited never delays a request
type Unlimited struct{}

// Wait only fails if ctx is already done
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

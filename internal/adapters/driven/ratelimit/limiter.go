// Package ratelimit wraps model backends with a token bucket so bulk
// embedding and summarisation stay within provider quotas.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// Limiter provides rate limiting for backend requests.
// It uses a token bucket with an optional backoff after the backend
// reports it is overloaded.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewLimiter creates a limiter from settings. A non-positive rate means
// unlimited.
func NewLimiter(cfg domain.RateLimitSettings) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		backoff: cfg.Backoff(),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordUnavailable.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordUnavailable starts a backoff period when err says the backend is
// overloaded or unreachable.
func (l *Limiter) RecordUnavailable(err error) {
	if err == nil || l.backoff <= 0 || !domain.IsRetryable(err) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retryAt = time.Now().Add(l.backoff)
}

// Allow reports whether a request can be made immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

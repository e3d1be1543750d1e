package ratelimit

import (
	"context"
	"time"
)

// Result reports the state of a client's window after a request was counted.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts requests per key inside a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Close() error
}

// NoopLimiter admits every request.
type NoopLimiter struct{}

// Allow always admits the request.
func (NoopLimiter) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true, Limit: -1, Remaining: -1}, nil
}

// Close is a no-op.
func (NoopLimiter) Close() error { return nil }

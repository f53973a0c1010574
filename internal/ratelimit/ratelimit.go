// Package ratelimit throttles the credential endpoints with a per-IP token
// bucket. Redis holds the buckets so every instance shares one budget.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of taking one token from a bucket.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	// ResetAt is when the bucket would be full again.
	ResetAt time.Time
}

// Limiter takes one token from the bucket named key.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Noop admits everything. It stands in when Redis is not configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) (*Result, error) {
	return &Result{Allowed: true}, nil
}

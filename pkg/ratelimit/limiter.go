package ratelimit

import (
	"context"
	"errors"
	"time"
)

var errStoreRequired = errors.New("ratelimit: counter store is required")

// CounterStore increments a fixed-window counter and reports when the
// window resets. The redis client and the in-memory store both satisfy it.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, time.Time, error)
}

// Policy describes a fixed-window limit for one group of endpoints.
type Policy struct {
	Name   string
	Window time.Duration
	Max    int64
}

// Result is the outcome of a single rate limit check.
type Result struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// Limiter applies fixed-window policies against a counter store.
type Limiter struct {
	store CounterStore
	key   func(scope string) string
}

// NewLimiter wires a limiter to a counter store. keyFn maps a scope to the
// storage key; pass nil to use the scope verbatim.
func NewLimiter(store CounterStore, keyFn func(string) string) (*Limiter, error) {
	if store == nil {
		return nil, errStoreRequired
	}
	if keyFn == nil {
		keyFn = func(scope string) string { return scope }
	}
	return &Limiter{store: store, key: keyFn}, nil
}

// Allow consumes one unit from the window identified by the policy name and
// the caller identity. On store failure the request is allowed so that a
// degraded counter backend never blocks ordering.
func (l *Limiter) Allow(ctx context.Context, policy Policy, identity string) (Result, error) {
	key := l.key(policy.Name + ":" + identity)
	count, resetAt, err := l.store.IncrWithTTL(ctx, key, policy.Window)
	if err != nil {
		return Result{
			Allowed:   true,
			Limit:     policy.Max,
			Remaining: policy.Max,
			ResetAt:   time.Now().Add(policy.Window),
		}, err
	}

	remaining := policy.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= policy.Max,
		Limit:     policy.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

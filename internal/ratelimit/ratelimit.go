// Package ratelimit provides the admission controls guarding the upstream providers.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Bucket is a token-bucket limiter. The historical-statistics provider
// enforces a strict external ceiling, and parallel fan-out would otherwise
// trip provider-side throttling.
type Bucket struct {
	limiter *rate.Limiter
}

// NewBucket creates a bucket refilling at perSecond tokens with the given burst.
// A non-positive rate yields an unlimited bucket.
func NewBucket(perSecond float64, burst int) *Bucket {
	if perSecond <= 0 {
		return &Bucket{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst < 1 {
		burst = 1
	}
	return &Bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Acquire blocks until one token is available or the context is cancelled.
func (b *Bucket) Acquire(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// Enter acquires one token, satisfying the same admission contract as Gate.
func (b *Bucket) Enter(ctx context.Context) error {
	return b.Acquire(ctx)
}

// Leave is a no-op: consumed tokens refill with time, not on release.
func (b *Bucket) Leave() {}

// Gate bounds the number of concurrent outstanding requests. The
// live-telemetry provider degrades under connection pressure rather than
// call frequency, so this is a concurrency cap, not a rate.
type Gate struct {
	slots chan struct{}
}

// NewGate creates a gate admitting at most size concurrent holders.
// A non-positive size yields a gate of one.
func NewGate(size int) *Gate {
	if size < 1 {
		size = 1
	}
	return &Gate{slots: make(chan struct{}, size)}
}

// Enter blocks until a slot is free or the context is cancelled.
func (g *Gate) Enter(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Leave releases a previously acquired slot.
func (g *Gate) Leave() {
	select {
	case <-g.slots:
	default:
	}
}

// InUse reports the number of currently held slots.
func (g *Gate) InUse() int {
	return len(g.slots)
}

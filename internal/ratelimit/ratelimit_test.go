package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBucketDelaysBeyondBurst(t *testing.T) {
	bucket := NewBucket(10, 2) // 100ms per token beyond the burst
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := bucket.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("expected burst+1 acquires to take at least one refill interval, took %s", elapsed)
	}
}

func TestBucketUnlimitedWhenRateZero(t *testing.T) {
	bucket := NewBucket(0, 0)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := bucket.Acquire(ctx); err != nil {
			t.Fatalf("acquire: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("expected unlimited bucket to not block, took %s", elapsed)
	}
}

func TestBucketHonoursContextCancellation(t *testing.T) {
	bucket := NewBucket(0.1, 1)
	ctx := context.Background()
	if err := bucket.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := bucket.Acquire(cancelCtx); err == nil {
		t.Fatalf("expected context deadline to abort the wait")
	}
}

func TestGateBlocksAtCapacity(t *testing.T) {
	gate := NewGate(2)
	ctx := context.Background()

	if err := gate.Enter(ctx); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if err := gate.Enter(ctx); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if gate.InUse() != 2 {
		t.Fatalf("expected 2 slots in use, got %d", gate.InUse())
	}

	blocked := make(chan error, 1)
	go func() {
		blocked <- gate.Enter(ctx)
	}()

	select {
	case <-blocked:
		t.Fatalf("third entry should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	gate.Leave()
	select {
	case err := <-blocked:
		if err != nil {
			t.Fatalf("expected entry after release, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected blocked entry to proceed after release")
	}
}

func TestGateEnterRespectsContext(t *testing.T) {
	gate := NewGate(1)
	ctx := context.Background()
	if err := gate.Enter(ctx); err != nil {
		t.Fatalf("enter: %v", err)
	}
	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := gate.Enter(cancelCtx); err == nil {
		t.Fatalf("expected context cancellation while gate is full")
	}
}

package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBucketBurstThenEmpty(t *testing.T) {
	rl := NewRateLimiter(1.0, 5.0)

	if tokens := rl.GetCurrentTokens(); tokens < 4.9 {
		t.Fatalf("new bucket has %.2f tokens, want ~5", tokens)
	}
	for i := 0; i < 5; i++ {
		if !rl.tryAcquire() {
			t.Fatalf("tryAcquire() failed on burst token %d", i+1)
		}
	}
	if rl.tryAcquire() {
		t.Error("tryAcquire() succeeded on an empty bucket")
	}
}

func TestBucketRefillCapped(t *testing.T) {
	rl := NewRateLimiter(100.0, 3.0)
	rl.Drain()

	time.Sleep(100 * time.Millisecond)

	if tokens := rl.GetCurrentTokens(); tokens > 3.01 {
		t.Errorf("tokens = %.2f, want capped at 3", tokens)
	}
}

func TestWaitForRefill(t *testing.T) {
	rl := NewRateLimiter(10.0, 1.0)
	rl.tryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait() returned after %v, want ~100ms", elapsed)
	}
}

func TestWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(0.1, 1.0)
	rl.tryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestCooldownBlocksWait(t *testing.T) {
	rl := NewRateLimiter(100.0, 100.0)
	rl.SetCooldown(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("Wait() during cooldown returned after %v, want ~200ms", elapsed)
	}
}

func TestCooldownOnlyExtends(t *testing.T) {
	rl := NewRateLimiter(100.0, 100.0)

	rl.SetCooldown(500 * time.Millisecond)
	rl.SetCooldown(100 * time.Millisecond)
	if d := rl.CooldownRemaining(); d < 350*time.Millisecond {
		t.Errorf("shorter cooldown replaced a longer one: remaining %v", d)
	}

	rl.SetCooldown(time.Second)
	if d := rl.CooldownRemaining(); d < 800*time.Millisecond {
		t.Errorf("longer cooldown did not extend: remaining %v", d)
	}

	rl.SetCooldown(time.Hour)
	if d := rl.CooldownRemaining(); d > MaxCooldown {
		t.Errorf("cooldown %v exceeds cap %v", d, MaxCooldown)
	}
}

func TestCooldownExpires(t *testing.T) {
	rl := NewRateLimiter(1.0, 1.0)
	if d := rl.CooldownRemaining(); d != 0 {
		t.Fatalf("fresh limiter CooldownRemaining() = %v, want 0", d)
	}

	rl.SetCooldown(50 * time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	if d := rl.CooldownRemaining(); d != 0 {
		t.Errorf("CooldownRemaining() = %v after expiry, want 0", d)
	}
}

func TestNewFromConfig(t *testing.T) {
	if rl := NewFromConfig(0, 5); rl != nil {
		t.Errorf("NewFromConfig(0, 5) = %v, want nil (disabled)", rl)
	}

	rl := NewFromConfig(2, 0)
	if rl == nil {
		t.Fatal("NewFromConfig(2, 0) returned nil")
	}
	if !rl.tryAcquire() {
		t.Error("burst below 1 should be raised so the first request passes")
	}
}

func TestNilLimiterNeverBlocks(t *testing.T) {
	var rl *RateLimiter

	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
	rl.Drain()
	rl.SetCooldown(time.Second)
	if d := rl.CooldownRemaining(); d != 0 {
		t.Errorf("CooldownRemaining() = %v, want 0", d)
	}
}

func TestConcurrentWaitAndDrain(t *testing.T) {
	rl := NewRateLimiter(200.0, 20.0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if rl.Wait(ctx) != nil {
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			rl.Drain()
			time.Sleep(10 * time.Millisecond)
		}
	}()

	wg.Wait()
}

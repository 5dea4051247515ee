// Package ratelimit throttles marketplace requests with a token bucket and a
// server-driven cooldown.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RateLimiter is a token bucket holding up to burst tokens, refilled at rate
// tokens per second. While a cooldown is active no token is handed out,
// whatever the bucket holds. A nil *RateLimiter is valid and never blocks.
type RateLimiter struct {
	mu            sync.Mutex
	tokens        float64
	burst         float64
	rate          float64
	updated       time.Time
	cooldownUntil time.Time
	warned        time.Time
}

// NewRateLimiter returns a full bucket.
func NewRateLimiter(tokensPerSecond, burstSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:  burstSize,
		burst:   burstSize,
		rate:    tokensPerSecond,
		updated: time.Now(),
	}
}

// NewFromConfig returns a limiter for the configured rate, or nil when rate
// limiting is disabled (rate <= 0). A burst below 1 is raised to 1.
func NewFromConfig(ratePerSecond float64, burst int) *RateLimiter {
	if ratePerSecond <= 0 {
		return nil
	}
	return NewRateLimiter(ratePerSecond, float64(max(burst, 1)))
}

// level returns the bucket content at now without consuming anything.
func (rl *RateLimiter) level(now time.Time) float64 {
	return min(rl.burst, rl.tokens+now.Sub(rl.updated).Seconds()*rl.rate)
}

// reserve takes a token if one is available and returns 0. Otherwise it
// takes nothing and returns how long until one could be taken.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Before(rl.cooldownUntil) {
		return rl.cooldownUntil.Sub(now)
	}

	rl.tokens = rl.level(now)
	rl.updated = now
	if rl.tokens >= 1 {
		rl.tokens--
		return 0
	}
	return time.Duration((1 - rl.tokens) / rl.rate * float64(time.Second))
}

func (rl *RateLimiter) tryAcquire() bool {
	return rl.reserve() == 0
}

// Wait blocks until a token is taken or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return ctx.Err()
	}

	start := time.Now()
	wait := rl.reserve()
	if wait == 0 {
		return nil
	}
	rl.warnSlow(wait)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		// another waiter may have taken the refill
		if wait = rl.reserve(); wait == 0 {
			if waited := time.Since(start); waited > 5*time.Second {
				log.Debug().Dur("waited", waited).Msg("Rate limit wait completed")
			}
			return nil
		}
		timer.Reset(wait)
	}
}

func (rl *RateLimiter) warnSlow(wait time.Duration) {
	if wait <= WarnWaitThreshold {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if time.Since(rl.warned) > WarnInterval {
		log.Warn().Dur("wait", wait).Msg("Rate limited: waiting for API capacity")
		rl.warned = time.Now()
	}
}

// Drain empties the bucket, so the next request waits for a refill.
func (rl *RateLimiter) Drain() {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = 0
	rl.updated = time.Now()
}

// SetCooldown blocks all Waits for d, capped at MaxCooldown. An active
// cooldown is only ever extended, never shortened.
func (rl *RateLimiter) SetCooldown(d time.Duration) {
	if rl == nil || d <= 0 {
		return
	}
	until := time.Now().Add(min(d, MaxCooldown))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if until.After(rl.cooldownUntil) {
		rl.cooldownUntil = until
	}
}

// CooldownRemaining returns how long the current cooldown still blocks, or 0.
func (rl *RateLimiter) CooldownRemaining() time.Duration {
	if rl == nil {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return max(time.Until(rl.cooldownUntil), 0)
}

// GetCurrentTokens reports the bucket level.
func (rl *RateLimiter) GetCurrentTokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.level(time.Now())
}

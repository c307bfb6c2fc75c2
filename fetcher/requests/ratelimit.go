package requests

import (
	"context"
	"sync"
	"time"

	"loltools/pkg/config"
)

// Single riot rate limiting.
type RiotLimit struct {
	limit         int
	resetInterval time.Duration
	count         int
	lastReset     time.Time
}

// Full riot rate limit, containing all the constraints.
// Shared by every request made with the same key set.
type RateLimiter struct {
	windows []*RiotLimit
	mu      sync.Mutex
}

// Create a instance of the rate limiter from the configured windows.
func CreateRateLimiter(limits config.LimitsConfiguration) *RateLimiter {
	now := time.Now()

	var windows []*RiotLimit
	for _, window := range []config.LimitWindow{limits.Lower, limits.Higher} {
		// A window without count or interval means no limit.
		if window.Count <= 0 || window.ResetInterval <= 0 {
			continue
		}
		windows = append(windows, &RiotLimit{
			limit:         window.Count,
			resetInterval: window.ResetInterval,
			lastReset:     now,
		})
	}

	return &RateLimiter{windows: windows}
}

// Reset the count.
func (r *RateLimiter) resetCounts(now time.Time) {
	// Loop through each window and verify if can reset.
	for _, window := range r.windows {
		if now.Sub(window.lastReset) >= window.resetInterval {
			window.count = 0
			window.lastReset = now
		}
	}
}

// Check if the window is on it's limits.
func (r *RateLimiter) checkLimits() bool {
	for _, window := range r.windows {
		if window.count >= window.limit {
			return false
		}
	}
	return true
}

// Loop through each window and increment the counter.
func (r *RateLimiter) incrementCounts() {
	for _, window := range r.windows {
		window.count++
	}
}

// Wait until a request slot is available or the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		waitTime, ok := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(waitTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Try to take a slot, returning how long to wait when all slots are used.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.resetCounts(now)

	if r.checkLimits() {
		r.incrementCounts()
		return 0, true
	}

	// See how many time till the slowest limited window resets.
	var waitTime time.Duration
	for _, window := range r.windows {
		// If it's not this window that is limited, just continue.
		if window.count < window.limit {
			continue
		}

		waitTill := window.resetInterval - now.Sub(window.lastReset)
		if waitTill > waitTime {
			waitTime = waitTill
		}
	}

	return waitTime, false
}

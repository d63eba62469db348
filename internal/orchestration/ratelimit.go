package orchestration

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrRateLimitExceeded signals daily quota exhaustion. It is a hard stop,
// not a transient retry condition, and must reach the top of the call
// stack where the orchestrator turns it into a friendly message.
var ErrRateLimitExceeded = errors.New("daily API quota exceeded")

// RateLimiter throttles outbound LLM calls with two sliding windows: a
// one-minute window that blocks the caller until the oldest call expires,
// and a 24-hour window that fails fast instead of waiting.
type RateLimiter struct {
	MaxPerMinute int
	MaxPerDay    int

	mu     sync.Mutex
	minute []time.Time
	day    []time.Time

	// Overridable for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewRateLimiter(maxPerMinute, maxPerDay int) *RateLimiter {
	return &RateLimiter{
		MaxPerMinute: maxPerMinute,
		MaxPerDay:    maxPerDay,
		now:          time.Now,
		sleep:        sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// UsageStats reports current window occupancy.
type UsageStats struct {
	RequestsThisMinute int `json:"requests_this_minute"`
	RequestsToday      int `json:"requests_today"`
	MinuteLimit        int `json:"minute_limit"`
	DayLimit           int `json:"day_limit"`
	MinuteRemaining    int `json:"minute_remaining"`
	DayRemaining       int `json:"day_remaining"`
}

// WaitIfNeeded blocks until a call is admitted, returning how long it
// waited. The block can last up to a full minute window; cancelling the
// context ends it early. The lock is released while sleeping, so other
// goroutines are never stalled behind a throttled caller. Daily
// exhaustion returns ErrRateLimitExceeded without blocking.
func (r *RateLimiter) WaitIfNeeded(ctx context.Context) (time.Duration, error) {
	var waited time.Duration
	for {
		r.mu.Lock()
		now := r.now()
		r.prune(now)

		if len(r.day) >= r.MaxPerDay {
			r.mu.Unlock()
			log.Printf("Daily rate limit reached, refusing LLM call")
			return waited, ErrRateLimitExceeded
		}

		if len(r.minute) < r.MaxPerMinute {
			r.minute = append(r.minute, now)
			r.day = append(r.day, now)
			r.mu.Unlock()
			return waited, nil
		}

		wait := r.minute[0].Add(time.Minute).Sub(now)
		r.mu.Unlock()

		if wait <= 0 {
			continue
		}
		log.Printf("Rate limit: waiting %.1fs (minute limit)", wait.Seconds())
		if err := r.sleep(ctx, wait); err != nil {
			return waited, err
		}
		waited += wait
	}
}

// prune drops timestamps that have left their windows, boundary
// inclusive so a wait computed from the oldest entry always frees a
// slot. Caller holds mu.
func (r *RateLimiter) prune(now time.Time) {
	minuteAgo := now.Add(-time.Minute)
	for len(r.minute) > 0 && !r.minute[0].After(minuteAgo) {
		r.minute = r.minute[1:]
	}
	dayAgo := now.Add(-24 * time.Hour)
	for len(r.day) > 0 && !r.day[0].After(dayAgo) {
		r.day = r.day[1:]
	}
}

// UsageStats returns a snapshot of both windows.
func (r *RateLimiter) UsageStats() UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune(r.now())
	stats := UsageStats{
		RequestsThisMinute: len(r.minute),
		RequestsToday:      len(r.day),
		MinuteLimit:        r.MaxPerMinute,
		DayLimit:           r.MaxPerDay,
	}
	stats.MinuteRemaining = max(0, r.MaxPerMinute-stats.RequestsThisMinute)
	stats.DayRemaining = max(0, r.MaxPerDay-stats.RequestsToday)
	return stats
}

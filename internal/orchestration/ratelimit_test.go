package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically; sleeping advances it.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time { return f.current }

func (f *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.slept = append(f.slept, d)
	f.current = f.current.Add(d)
	return nil
}

func fakeLimiter(maxPerMinute, maxPerDay int) (*RateLimiter, *fakeClock) {
	clock := newFakeClock()
	r := NewRateLimiter(maxPerMinute, maxPerDay)
	r.now = clock.now
	r.sleep = clock.sleep
	return r, clock
}

func TestRateLimiter_UnderMinuteLimit(t *testing.T) {
	r, _ := fakeLimiter(3, 100)

	for i := 0; i < 3; i++ {
		waited, err := r.WaitIfNeeded(context.Background())
		if err != nil {
			t.Fatalf("WaitIfNeeded failed: %v", err)
		}
		if waited != 0 {
			t.Errorf("Call %d waited %v, expected no wait", i+1, waited)
		}
	}

	stats := r.UsageStats()
	if stats.RequestsThisMinute != 3 || stats.MinuteRemaining != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestRateLimiter_BlocksOnMinuteWindow(t *testing.T) {
	r, clock := fakeLimiter(2, 100)

	r.WaitIfNeeded(context.Background())
	clock.current = clock.current.Add(10 * time.Second)
	r.WaitIfNeeded(context.Background())

	// Third call must wait until the first timestamp leaves the window,
	// which is 50 seconds from now.
	waited, err := r.WaitIfNeeded(context.Background())
	if err != nil {
		t.Fatalf("WaitIfNeeded failed: %v", err)
	}
	if waited != 50*time.Second {
		t.Errorf("Expected 50s wait, got %v", waited)
	}
	if len(clock.slept) != 1 {
		t.Errorf("Expected exactly one sleep, got %d", len(clock.slept))
	}
}

func TestRateLimiter_DailyLimitFailsFast(t *testing.T) {
	r, clock := fakeLimiter(10, 2)

	r.WaitIfNeeded(context.Background())
	r.WaitIfNeeded(context.Background())

	_, err := r.WaitIfNeeded(context.Background())
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("Expected ErrRateLimitExceeded, got %v", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("Daily exhaustion must not block, but slept %v", clock.slept)
	}
}

func TestRateLimiter_WindowsExpire(t *testing.T) {
	r, clock := fakeLimiter(1, 100)

	r.WaitIfNeeded(context.Background())
	clock.current = clock.current.Add(2 * time.Minute)

	waited, err := r.WaitIfNeeded(context.Background())
	if err != nil {
		t.Fatalf("WaitIfNeeded failed: %v", err)
	}
	if waited != 0 {
		t.Errorf("Expired window should admit immediately, waited %v", waited)
	}
}

func TestRateLimiter_CancelEndsWait(t *testing.T) {
	// Real sleep path: the cancelled context must win the select without
	// waiting out the window.
	r := NewRateLimiter(1, 100)
	r.WaitIfNeeded(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		_, err := r.WaitIfNeeded(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Cancelled wait did not return promptly")
	}
}

func TestRateLimiter_SleepDoesNotBlockOthers(t *testing.T) {
	// One caller stuck in the minute window must not stall UsageStats.
	r := NewRateLimiter(1, 100)
	r.WaitIfNeeded(context.Background())

	sleeping := make(chan struct{})
	release := make(chan struct{})
	r.sleep = func(ctx context.Context, d time.Duration) error {
		close(sleeping)
		<-release
		return context.Canceled
	}

	go r.WaitIfNeeded(context.Background())
	<-sleeping

	statsDone := make(chan UsageStats, 1)
	go func() { statsDone <- r.UsageStats() }()

	select {
	case stats := <-statsDone:
		if stats.RequestsThisMinute != 1 {
			t.Errorf("Unexpected stats while a caller waits: %+v", stats)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("UsageStats stalled behind a sleeping caller")
	}
	close(release)
}

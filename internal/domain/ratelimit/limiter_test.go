package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/docquery/internal/domain"
)

// fakeClock advances manually.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAdmit_MinuteWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(10, 100).WithClock(clock.Now)

	for i := 0; i < 10; i++ {
		if err := l.Admit(); err != nil {
			t.Fatalf("request %d within quota rejected: %v", i+1, err)
		}
	}

	err := l.Admit()
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	var rlErr *domain.RateLimitError
	if !errors.As(err, &rlErr) || rlErr.Window != "minute" {
		t.Fatalf("expected minute window breach, got %v", err)
	}
}

func TestAdmit_RecoversAfterWindowSlides(t *testing.T) {
	clock := newFakeClock()
	l := New(10, 100).WithClock(clock.Now)

	for i := 0; i < 10; i++ {
		if err := l.Admit(); err != nil {
			t.Fatalf("unexpected rejection: %v", err)
		}
	}
	if err := l.Admit(); err == nil {
		t.Fatal("expected rejection at quota")
	}

	clock.Advance(61 * time.Second)
	if err := l.Admit(); err != nil {
		t.Fatalf("expected admission after window slid: %v", err)
	}
}

func TestAdmit_HourWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(10, 100).WithClock(clock.Now)

	// Fill the hourly quota in bursts spread over the hour so the minute
	// window never trips.
	for burst := 0; burst < 10; burst++ {
		for i := 0; i < 10; i++ {
			if err := l.Admit(); err != nil {
				t.Fatalf("burst %d request %d rejected: %v", burst, i, err)
			}
		}
		clock.Advance(5 * time.Minute)
	}

	err := l.Admit()
	var rlErr *domain.RateLimitError
	if !errors.As(err, &rlErr) || rlErr.Window != "hour" {
		t.Fatalf("expected hour window breach, got %v", err)
	}

	// The oldest burst ages out 1 hour after it was recorded.
	clock.Advance(11 * time.Minute)
	if err := l.Admit(); err != nil {
		t.Fatalf("expected admission after oldest burst expired: %v", err)
	}
}

func TestAdmit_RejectionsAreNotCounted(t *testing.T) {
	clock := newFakeClock()
	l := New(2, 100).WithClock(clock.Now)

	_ = l.Admit()
	_ = l.Admit()
	for i := 0; i < 5; i++ {
		if err := l.Admit(); err == nil {
			t.Fatal("expected rejection")
		}
	}

	// Only the two admitted requests occupy the window.
	clock.Advance(61 * time.Second)
	if err := l.Admit(); err != nil {
		t.Fatalf("rejected requests must not consume quota: %v", err)
	}
}

func TestAdmit_ConcurrentNeverOveradmits(t *testing.T) {
	clock := newFakeClock()
	l := New(10, 100).WithClock(clock.Now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Admit(); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 10 {
		t.Fatalf("expected exactly 10 admissions, got %d", admitted)
	}
}

func TestNew_DefaultQuotas(t *testing.T) {
	l := New(0, -1)
	if l.perMinute != DefaultPerMinute || l.perHour != DefaultPerHour {
		t.Fatalf("expected defaults %d/%d, got %d/%d",
			DefaultPerMinute, DefaultPerHour, l.perMinute, l.perHour)
	}
}

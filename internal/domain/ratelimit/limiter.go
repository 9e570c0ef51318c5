// Package ratelimit enforces sliding-window request quotas, independent of
// query content.
package ratelimit

import (
	"sync"
	"time"

	"github.com/kailas-cloud/docquery/internal/domain"
)

// Default quotas.
const (
	DefaultPerMinute = 10
	DefaultPerHour   = 100
)

// Limiter admits requests under two independent sliding windows: N per
// minute and M per hour. The timestamp window is the only state shared
// across concurrent requests; a mutex guards it against undercounting under
// parallel admission checks.
type Limiter struct {
	mu         sync.Mutex
	perMinute  int
	perHour    int
	timestamps []time.Time
	now        func() time.Time
}

// New creates a limiter with the given quotas. Non-positive values fall back
// to the defaults.
func New(perMinute, perHour int) *Limiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	if perHour <= 0 {
		perHour = DefaultPerHour
	}
	return &Limiter{perMinute: perMinute, perHour: perHour, now: time.Now}
}

// WithClock overrides the time source (tests).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Admit checks both windows and, on success, records the request in one
// critical section so concurrent admissions cannot both pass on the last
// slot. Returns a domain.RateLimitError naming the breached window.
func (l *Limiter) Admit() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	minuteAgo := now.Add(-time.Minute)
	inMinute := 0
	for _, ts := range l.timestamps {
		if ts.After(minuteAgo) {
			inMinute++
		}
	}
	if inMinute >= l.perMinute {
		return domain.NewRateLimitError("minute")
	}
	if len(l.timestamps) >= l.perHour {
		return domain.NewRateLimitError("hour")
	}

	l.timestamps = append(l.timestamps, now)
	return nil
}

// prune lazily drops timestamps older than the 1-hour horizon. Caller holds
// the lock. The kept slice is append-only ordered, so one scan finds the cut.
func (l *Limiter) prune(now time.Time) {
	horizon := now.Add(-time.Hour)
	cut := 0
	for cut < len(l.timestamps) && !l.timestamps[cut].After(horizon) {
		cut++
	}
	if cut > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[cut:]...)
	}
}

// Package audit records one immutable entry per terminal query state.
// Entries go to an in-memory ring buffer plus durable sinks; sink delivery
// is best-effort and never fails the query itself.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRingSize is the in-memory ring buffer capacity.
const DefaultRingSize = 256

// Entry is a single audit record. Created once per request, never updated
// or deleted by the engine.
type Entry struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Query          string        `json:"query"`
	Classification string        `json:"classification,omitempty"`
	GeneratedQuery string        `json:"generated_query,omitempty"`
	ResultCount    int           `json:"result_count"`
	Duration       time.Duration `json:"duration_ms"`
	Success        bool          `json:"success"`
	ErrorDetail    string        `json:"error_detail,omitempty"`
	Suspicious     bool          `json:"suspicious,omitempty"`
	SecurityEvent  bool          `json:"security_event,omitempty"`
}

// NewEntry creates an entry with a fresh ID and timestamp.
func NewEntry(query string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Query:     query,
	}
}

// Sink is an append-only receiver of audit entries.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// Ring is a fixed-capacity in-memory buffer of recent entries.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewRing creates a ring buffer. Non-positive sizes fall back to the default.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{entries: make([]Entry, size)}
}

// Append stores an entry, overwriting the oldest when full.
func (r *Ring) Append(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns entries newest-first, up to limit (0 means all).
func (r *Ring) Recent(limit int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	if r.full {
		count = len(r.entries)
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		out = append(out, r.entries[idx])
	}
	return out
}

// Recorder fans an entry out to the ring, the log, and any durable sinks.
type Recorder struct {
	ring   *Ring
	sinks  []Sink
	logger *zap.Logger
}

// NewRecorder creates a recorder over the given ring and sinks.
func NewRecorder(ring *Ring, logger *zap.Logger, sinks ...Sink) *Recorder {
	return &Recorder{ring: ring, sinks: sinks, logger: logger}
}

// Record appends the entry everywhere. Sink failures are logged and dropped.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	r.ring.Append(e)

	fields := []zap.Field{
		zap.String("audit_id", e.ID),
		zap.String("query", e.Query),
		zap.String("classification", e.Classification),
		zap.Int("result_count", e.ResultCount),
		zap.Duration("duration", e.Duration),
		zap.Bool("success", e.Success),
	}
	if e.ErrorDetail != "" {
		fields = append(fields, zap.String("error_detail", e.ErrorDetail))
	}
	if e.Suspicious {
		fields = append(fields, zap.Bool("suspicious", true))
	}
	if e.SecurityEvent {
		r.logger.Warn("security_audit", fields...)
	} else {
		r.logger.Info("query_audit", fields...)
	}

	for _, sink := range r.sinks {
		if err := sink.Append(ctx, e); err != nil {
			r.logger.Warn("audit sink append failed", zap.String("audit_id", e.ID), zap.Error(err))
		}
	}
}

// RecentEntries exposes the ring for the operator endpoint.
func (r *Recorder) RecentEntries(limit int) []Entry {
	return r.ring.Recent(limit)
}

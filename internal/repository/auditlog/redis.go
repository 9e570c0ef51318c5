// Package auditlog provides a durable audit sink appending entries to a
// Redis Stream. Delivery is best-effort: the recorder drops failed appends
// after logging them.
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docquery/internal/audit"
)

// DefaultStream is the stream key entries are appended to.
const DefaultStream = "docquery:audit"

// Compile-time check: Sink implements audit.Sink.
var _ audit.Sink = (*Sink)(nil)

// Config holds connection parameters for the audit stream.
type Config struct {
	Addrs    []string
	Username string
	Password string
	Stream   string
	MaxLen   int64
}

// Sink appends audit entries to a Redis Stream via rueidis.
type Sink struct {
	client rueidis.Client
	stream string
	maxLen int64
}

// New creates a stream sink.
func New(cfg Config) (*Sink, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = 10000
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Sink{client: client, stream: cfg.Stream, maxLen: cfg.MaxLen}, nil
}

// Append XADDs the entry, trimming the stream approximately to MaxLen.
func (s *Sink) Append(ctx context.Context, e audit.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	cmd := s.client.B().Xadd().Key(s.stream).
		Maxlen().Almost().Threshold(strconv.FormatInt(s.maxLen, 10)).Id("*").
		FieldValue().
		FieldValue("id", e.ID).
		FieldValue("entry", string(payload)).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Sink) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Sink) Close() {
	s.client.Close()
}

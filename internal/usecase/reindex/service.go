// Package reindex re-embeds the document corpus. The job is interruptible,
// reports incremental progress, and upserts one document per transaction so
// it never starves concurrent similarity searches behind an exclusive lock.
package reindex

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/metrics"
	"github.com/kailas-cloud/docquery/internal/repository/documents"
)

// DocumentLister streams the corpus rows needing embedding checks.
type DocumentLister interface {
	ListIDs(ctx context.Context) ([]documents.ReindexRow, error)
}

// VectorStore persists embeddings and reports staleness.
type VectorStore interface {
	NeedsEmbedding(ctx context.Context, docID, text string) (bool, error)
	Upsert(ctx context.Context, docID, text string, vec []float32) error
}

// Embedder vectorizes text.
type Embedder interface {
	Embed(text string) []float32
}

// Progress is a snapshot of the current (or last) run.
type Progress struct {
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Total     int    `json:"total"`
	Running   bool   `json:"running"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}

// Service runs at most one reindex at a time.
type Service struct {
	docs    DocumentLister
	vectors VectorStore
	embed   Embedder
	logger  *zap.Logger

	baseCtx context.Context

	mu       sync.Mutex
	running  bool
	progress Progress
}

// New creates a reindex service. baseCtx bounds background runs — cancel it
// on shutdown and an in-flight run stops at the next document.
func New(baseCtx context.Context, docs DocumentLister, vectors VectorStore, embed Embedder, logger *zap.Logger) *Service {
	return &Service{baseCtx: baseCtx, docs: docs, vectors: vectors, embed: embed, logger: logger}
}

// Start launches a background run. Returns false when one is already
// in flight.
func (s *Service) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.progress = Progress{Running: true}

	go s.run(s.baseCtx)
	return true
}

// Progress returns the current snapshot.
func (s *Service) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Service) run(ctx context.Context) {
	rows, err := s.docs.ListIDs(ctx)
	if err != nil {
		s.finish(0, 0, 0, fmt.Errorf("list documents: %w", err))
		return
	}

	s.mu.Lock()
	s.progress.Total = len(rows)
	s.mu.Unlock()

	var processed, skipped int
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			s.finish(processed, skipped, len(rows), fmt.Errorf("interrupted: %w", err))
			return
		}

		stale, err := s.vectors.NeedsEmbedding(ctx, row.ID, row.Text)
		if err != nil {
			s.finish(processed, skipped, len(rows), fmt.Errorf("check %s: %w", row.ID, err))
			return
		}
		if !stale {
			skipped++
			s.tick(processed, skipped)
			continue
		}

		vec := s.embed.Embed(row.Text)
		if err := s.vectors.Upsert(ctx, row.ID, row.Text, vec); err != nil {
			s.finish(processed, skipped, len(rows), fmt.Errorf("upsert %s: %w", row.ID, err))
			return
		}
		processed++
		s.tick(processed, skipped)
		metrics.ReindexProcessed.Set(float64(processed))
	}

	s.logger.Info("reindex completed",
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.Int("total", len(rows)),
	)
	s.finish(processed, skipped, len(rows), nil)
}

func (s *Service) tick(processed, skipped int) {
	s.mu.Lock()
	s.progress.Processed = processed
	s.progress.Skipped = skipped
	s.mu.Unlock()
}

func (s *Service) finish(processed, skipped, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.progress = Progress{
		Processed: processed,
		Skipped:   skipped,
		Total:     total,
		Done:      err == nil,
	}
	if err != nil {
		s.progress.Error = err.Error()
		s.logger.Error("reindex failed", zap.Error(err))
	}
}

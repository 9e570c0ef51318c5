// Package vectors persists one embedding per document, keyed by a content
// hash, and serves similarity search over the stored vectors.
package vectors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/docquery/internal/db"
	"github.com/kailas-cloud/docquery/internal/domain/embedding"
)

// Default search parameters.
const (
	DefaultTopK          = 10
	DefaultMinSimilarity = 0.1
)

// embedder is the consumer interface for query vectorization.
type embedder interface {
	Embed(text string) []float32
	Dim() int
}

// Match is one similarity hit, ranked descending by similarity.
type Match struct {
	DocumentID string
	Similarity float64
}

// Store owns the embeddings table. The embedding engine is stateless; the
// store is the only writer of embedding rows.
type Store struct {
	db     *db.DB
	engine embedder
}

// New creates a vector store over the given database.
func New(database *db.DB, engine embedder) *Store {
	return &Store{db: database, engine: engine}
}

// Upsert writes the embedding for a document, replacing any previous row.
// One row per document_id; each upsert is its own transaction so a batch
// reindex never starves concurrent searches behind a long exclusive lock.
func (s *Store) Upsert(ctx context.Context, docID, text string, vec []float32) error {
	if len(vec) != s.engine.Dim() {
		return fmt.Errorf("upsert %s: vector has %d dims, want %d", docID, len(vec), s.engine.Dim())
	}

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO embeddings (document_id, vector, content_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (document_id) DO UPDATE SET
			vector = excluded.vector,
			content_hash = excluded.content_hash,
			created_at = excluded.created_at`,
		docID, embedding.Encode(vec), embedding.ContentHash(text), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// NeedsEmbedding reports whether the document has no stored embedding or a
// stale one (stored content hash differs from the hash of the given text).
func (s *Store) NeedsEmbedding(ctx context.Context, docID, text string) (bool, error) {
	var stored string
	err := s.db.Conn().QueryRowContext(ctx,
		"SELECT content_hash FROM embeddings WHERE document_id = ?", docID,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, &db.Error{Op: db.OpGet, Err: err}
	}
	return stored != embedding.ContentHash(text), nil
}

// SearchSimilar embeds the query once and scores it against every stored
// vector. Linear scan: acceptable at the target scale of thousands of
// documents. Results below minSimilarity are dropped; the rest are sorted
// descending and truncated to k.
func (s *Store) SearchSimilar(ctx context.Context, queryText string, k int, minSimilarity float64) ([]Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	queryVec := s.engine.Embed(queryText)

	rows, err := s.db.Conn().QueryContext(ctx,
		"SELECT document_id, vector FROM embeddings ORDER BY document_id")
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var docID string
		var blob []byte
		if err := rows.Scan(&docID, &blob); err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		vec, err := embedding.Decode(blob, s.engine.Dim())
		if err != nil {
			// A malformed row is skipped, not fatal: it will be rewritten
			// on the next reindex.
			continue
		}
		if sim := embedding.Cosine(queryVec, vec); sim >= minSimilarity {
			matches = append(matches, Match{DocumentID: docID, Similarity: sim})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].DocumentID < matches[j].DocumentID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of stored embeddings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM embeddings").Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpScan, Err: err}
	}
	return n, nil
}

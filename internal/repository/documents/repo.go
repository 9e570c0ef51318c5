// Package documents is the read-only execution gateway over the document
// store. It only accepts statements the validator produced, runs them under
// a fixed timeout, and never lets raw storage diagnostics reach a caller.
package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/db"
	"github.com/kailas-cloud/docquery/internal/domain"
	domdoc "github.com/kailas-cloud/docquery/internal/domain/document"
	"github.com/kailas-cloud/docquery/internal/domain/sqlguard"
)

// DefaultTimeout is the execution budget for a single statement.
const DefaultTimeout = 5 * time.Second

// documentColumns is the projection every document query scans.
const documentColumns = "id, title, extracted_text, category, vendor, amount, transaction_date, tags, created_at, updated_at"

// Repo executes validated read-only queries against the documents table.
type Repo struct {
	db      *db.DB
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a document gateway.
func New(database *db.DB, logger *zap.Logger) *Repo {
	return &Repo{db: database, timeout: DefaultTimeout, logger: logger}
}

// WithTimeout overrides the execution budget.
func (r *Repo) WithTimeout(d time.Duration) *Repo {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Execute runs a validated statement with bound parameters under the
// timeout. The original store error is logged server-side; the caller sees
// domain.ErrTimeout or the opaque domain.ErrQueryExecution.
func (r *Repo) Execute(ctx context.Context, stmt sqlguard.SafeSQL, params []any) ([]domdoc.Document, error) {
	if stmt.IsZero() {
		return nil, domain.NewSecurityError("unvalidated_statement", "execute called with zero SafeSQL")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Conn().QueryContext(ctx, stmt.String(), params...)
	if err != nil {
		return nil, r.opaque(ctx, err)
	}
	defer rows.Close()

	docs := make([]domdoc.Document, 0, 16)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, r.opaque(ctx, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.opaque(ctx, err)
	}
	return docs, nil
}

// Get loads one document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.Conn().QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, r.opaque(ctx, err)
	}
	return doc, nil
}

// GetMany loads documents by ID, preserving the requested order. IDs missing
// from the store are skipped, not errors — the invariant is that every
// returned document exists at query time.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]domdoc.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Conn().QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, r.opaque(ctx, err)
	}
	defer rows.Close()

	byID := make(map[string]domdoc.Document, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, r.opaque(ctx, err)
		}
		byID[doc.ID()] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, r.opaque(ctx, err)
	}

	ordered := make([]domdoc.Document, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			ordered = append(ordered, doc)
		}
	}
	return ordered, nil
}

// ListIDs returns all document IDs with the text needed for re-embedding,
// in stable ID order. Used by the corpus reindex job.
func (r *Repo) ListIDs(ctx context.Context) ([]ReindexRow, error) {
	rows, err := r.db.Conn().QueryContext(ctx,
		"SELECT id, title, extracted_text FROM documents ORDER BY id")
	if err != nil {
		return nil, r.opaque(ctx, err)
	}
	defer rows.Close()

	var out []ReindexRow
	for rows.Next() {
		var row ReindexRow
		var title, text sql.NullString
		if err := rows.Scan(&row.ID, &title, &text); err != nil {
			return nil, r.opaque(ctx, err)
		}
		row.Text = title.String + "\n" + text.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.opaque(ctx, err)
	}
	return out, nil
}

// ReindexRow pairs a document ID with its embeddable text.
type ReindexRow struct {
	ID   string
	Text string
}

// opaque logs the real error and returns the caller-safe one.
func (r *Repo) opaque(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.logger.Warn("query timed out", zap.Duration("timeout", r.timeout))
		return fmt.Errorf("%w after %s", domain.ErrTimeout, r.timeout)
	}
	r.logger.Error("store query failed", zap.Error(&db.Error{Op: db.OpQuery, Err: err}))
	return domain.ErrQueryExecution
}

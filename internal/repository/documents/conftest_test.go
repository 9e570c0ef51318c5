package documents

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/db"
)

// openTestStore opens a throwaway SQLite database seeded with the documents
// schema. The engine itself never issues DDL, so tests stand in for the
// external store here.
func openTestStore(t *testing.T) *db.DB {
	t.Helper()

	store, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(store.Close)

	_, err = store.Conn().Exec(`
		CREATE TABLE documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			extracted_text TEXT,
			category TEXT,
			vendor TEXT,
			amount REAL,
			transaction_date TEXT,
			tags TEXT,
			created_at TEXT,
			updated_at TEXT
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return store
}

type seedDoc struct {
	id       string
	title    string
	text     string
	category string
	vendor   string
	amount   any // nil for NULL
	txDate   string
	tags     string
}

func seedDocuments(t *testing.T, store *db.DB, docs ...seedDoc) {
	t.Helper()
	for _, d := range docs {
		_, err := store.Conn().Exec(`
			INSERT INTO documents
				(id, title, extracted_text, category, vendor, amount, transaction_date, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.id, d.title, d.text, d.category, d.vendor, d.amount, d.txDate, d.tags,
			"2025-01-01 00:00:00", "2025-01-01 00:00:00",
		)
		if err != nil {
			t.Fatalf("seed document %s: %v", d.id, err)
		}
	}
}

func testRepo(t *testing.T) (*Repo, *db.DB) {
	t.Helper()
	store := openTestStore(t)
	return New(store, zap.NewNop()), store
}

func testCtx() context.Context { return context.Background() }

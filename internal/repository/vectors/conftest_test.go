package vectors

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/docquery/internal/db"
	"github.com/kailas-cloud/docquery/internal/domain/embedding"
)

// openTestStore opens a throwaway SQLite database with the embeddings schema.
func openTestStore(t *testing.T) *db.DB {
	t.Helper()

	store, err := db.Open(db.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(store.Close)

	_, err = store.Conn().Exec(`
		CREATE TABLE embeddings (
			document_id TEXT PRIMARY KEY,
			vector BLOB NOT NULL,
			content_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return store
}

func testStore(t *testing.T) (*Store, *embedding.Engine) {
	t.Helper()
	engine := embedding.NewEngine()
	return New(openTestStore(t), engine), engine
}

func testCtx() context.Context { return context.Background() }

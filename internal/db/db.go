// Package db opens and supervises the SQLite connection to the external
// document store. The engine has read access to the documents table and
// read-write access to the embeddings table; it never issues DDL — table
// creation is the store's responsibility.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver registration
)

// Config holds connection parameters for the document store.
type Config struct {
	Path string
}

// DB wraps the sql.DB handle for the document store.
type DB struct {
	conn *sql.DB
}

// Open connects to the SQLite database at the configured path.
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	conn, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite serializes writers; one writer connection avoids SQLITE_BUSY
	// churn while readers multiplex freely.
	conn.SetMaxOpenConns(4)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	return &DB{conn: conn}, nil
}

// Conn exposes the underlying handle to the repositories.
func (d *DB) Conn() *sql.DB { return d.conn }

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.conn.PingContext(ctx); err != nil {
		return &Error{Op: OpPing, Err: err}
	}
	return nil
}

// Close shuts down the connection pool.
func (d *DB) Close() {
	_ = d.conn.Close()
}

// WaitForReady polls Ping until the store responds or the timeout expires.
func (d *DB) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := d.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

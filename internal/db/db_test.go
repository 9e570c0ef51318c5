package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestOpenPingClose(t *testing.T) {
	d, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close()

	if err := d.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestWaitForReady(t *testing.T) {
	d, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close()

	if err := d.WaitForReady(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("expected readiness: %v", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("locked")
	err := &Error{Op: OpQuery, Err: inner}

	if err.Error() != "query: locked" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected unwrap to the inner error")
	}
}

package reindex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/repository/documents"
)

// --- Mocks ---

type mockLister struct {
	rows []documents.ReindexRow
	err  error
}

func (m *mockLister) ListIDs(_ context.Context) ([]documents.ReindexRow, error) {
	return m.rows, m.err
}

type mockVectorStore struct {
	mu       sync.Mutex
	fresh    map[string]bool // IDs whose stored hash already matches
	upserted []string
	needsErr error
	upsertErr error
	gate     chan struct{} // when set, Upsert blocks until the gate closes
}

func (m *mockVectorStore) NeedsEmbedding(_ context.Context, docID, _ string) (bool, error) {
	if m.needsErr != nil {
		return false, m.needsErr
	}
	return !m.fresh[docID], nil
}

func (m *mockVectorStore) Upsert(_ context.Context, docID, _ string, _ []float32) error {
	if m.gate != nil {
		<-m.gate
	}
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	m.upserted = append(m.upserted, docID)
	m.mu.Unlock()
	return nil
}

func (m *mockVectorStore) upsertedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.upserted...)
}

type mockEmbedder struct{}

func (mockEmbedder) Embed(_ string) []float32 { return []float32{1, 0} }

// --- Helpers ---

func waitDone(t *testing.T, svc *Service) Progress {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		p := svc.Progress()
		if !p.Running {
			return p
		}
		select {
		case <-deadline:
			t.Fatal("reindex did not finish in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// --- Tests ---

func TestReindex_ProcessesAndSkips(t *testing.T) {
	lister := &mockLister{rows: []documents.ReindexRow{
		{ID: "a", Text: "alpha"},
		{ID: "b", Text: "beta"},
		{ID: "c", Text: "gamma"},
	}}
	store := &mockVectorStore{fresh: map[string]bool{"b": true}}
	svc := New(context.Background(), lister, store, mockEmbedder{}, zap.NewNop())

	if !svc.Start() {
		t.Fatal("expected Start to launch a run")
	}
	p := waitDone(t, svc)

	if !p.Done || p.Error != "" {
		t.Fatalf("expected clean completion, got %+v", p)
	}
	if p.Processed != 2 || p.Skipped != 1 || p.Total != 3 {
		t.Errorf("unexpected progress: %+v", p)
	}
	ids := store.upsertedIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Errorf("expected fresh document skipped, upserted %v", ids)
	}
}

func TestReindex_SingleFlight(t *testing.T) {
	gate := make(chan struct{})
	lister := &mockLister{rows: []documents.ReindexRow{{ID: "a", Text: "alpha"}}}
	store := &mockVectorStore{fresh: map[string]bool{}, gate: gate}
	svc := New(context.Background(), lister, store, mockEmbedder{}, zap.NewNop())

	if !svc.Start() {
		t.Fatal("first Start must succeed")
	}
	if svc.Start() {
		t.Error("second Start must be refused while a run is in flight")
	}

	close(gate)
	waitDone(t, svc)

	if !svc.Start() {
		t.Error("Start must succeed again after the run finished")
	}
	waitDone(t, svc)
}

func TestReindex_InterruptedByShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rows := make([]documents.ReindexRow, 100)
	for i := range rows {
		rows[i] = documents.ReindexRow{ID: string(rune('a' + i%26)), Text: "text"}
	}
	gate := make(chan struct{})
	lister := &mockLister{rows: rows}
	store := &mockVectorStore{fresh: map[string]bool{}, gate: gate}
	svc := New(ctx, lister, store, mockEmbedder{}, zap.NewNop())

	svc.Start()
	cancel()
	close(gate)

	p := waitDone(t, svc)
	if p.Done {
		t.Error("interrupted run must not report Done")
	}
	if p.Error == "" {
		t.Error("interrupted run must record the interruption")
	}
	if p.Processed >= len(rows) {
		t.Error("run should have stopped before completing the corpus")
	}
}

func TestReindex_ListFailure(t *testing.T) {
	lister := &mockLister{err: errors.New("store offline")}
	svc := New(context.Background(), lister, &mockVectorStore{}, mockEmbedder{}, zap.NewNop())

	svc.Start()
	p := waitDone(t, svc)
	if p.Done || p.Error == "" {
		t.Fatalf("expected recorded failure, got %+v", p)
	}
}

func TestReindex_UpsertFailureStopsRun(t *testing.T) {
	lister := &mockLister{rows: []documents.ReindexRow{
		{ID: "a", Text: "alpha"}, {ID: "b", Text: "beta"},
	}}
	store := &mockVectorStore{fresh: map[string]bool{}, upsertErr: errors.New("disk full")}
	svc := New(context.Background(), lister, store, mockEmbedder{}, zap.NewNop())

	svc.Start()
	p := waitDone(t, svc)
	if p.Done {
		t.Error("failed run must not report Done")
	}
	if p.Error == "" {
		t.Error("failure must be recorded in progress")
	}
	if p.Processed != 0 {
		t.Errorf("expected no processed documents, got %d", p.Processed)
	}
}

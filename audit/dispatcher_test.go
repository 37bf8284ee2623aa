package audit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type countingStore struct {
	count atomic.Int64
}

func (s *countingStore) Create(context.Context, Entry) error {
	s.count.Add(1)
	return nil
}

// gateStore blocks every write until the gate is released, to hold the
// dispatcher's buffer full.
type gateStore struct {
	gate chan struct{}
}

func newGateStore() *gateStore {
	return &gateStore{gate: make(chan struct{})}
}

func (s *gateStore) Create(context.Context, Entry) error {
	<-s.gate
	return nil
}

func TestDispatcherDeliversToStore(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(store, DispatcherConfig{BufferSize: 8}, testLogger())

	for i := 0; i < 5; i++ {
		_ = d.Create(context.Background(), Entry{ID: "e", Action: ActionLogin, Outcome: OutcomeSuccess})
	}
	d.Close()

	if store.Len() != 5 {
		t.Fatalf("expected 5 delivered entries, got %d", store.Len())
	}
}

func TestDispatcherDropIfFullDoesNotBlock(t *testing.T) {
	store := newGateStore()
	d := NewDispatcher(store, DispatcherConfig{BufferSize: 1, DropIfFull: true}, testLogger())
	defer func() {
		close(store.gate)
		d.Close()
	}()

	_ = d.Create(context.Background(), Entry{ID: "e1"})
	_ = d.Create(context.Background(), Entry{ID: "e2"})

	start := time.Now()
	_ = d.Create(context.Background(), Entry{ID: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking create when DropIfFull is set")
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when buffer is full")
	}
}

func TestDispatcherBlocksUntilSpaceWithoutDropIfFull(t *testing.T) {
	store := newGateStore()
	d := NewDispatcher(store, DispatcherConfig{BufferSize: 1}, testLogger())
	defer func() {
		close(store.gate)
		d.Close()
	}()

	_ = d.Create(context.Background(), Entry{ID: "e1"})
	_ = d.Create(context.Background(), Entry{ID: "e2"})

	done := make(chan struct{})
	go func() {
		_ = d.Create(context.Background(), Entry{ID: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected create to block while the buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	store.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked create to proceed once space frees up")
	}
}

func TestDispatcherCloseIdempotentAndCreateAfterCloseSafe(t *testing.T) {
	store := &countingStore{}
	d := NewDispatcher(store, DispatcherConfig{BufferSize: 4, DropIfFull: true}, testLogger())

	_ = d.Create(context.Background(), Entry{ID: "e1"})
	d.Close()
	d.Close()
	_ = d.Create(context.Background(), Entry{ID: "e2"})

	if store.count.Load() != 1 {
		t.Fatalf("expected one delivered entry, got %d", store.count.Load())
	}
}

func TestDispatcherCountsFailedWrites(t *testing.T) {
	d := NewDispatcher(&failingStore{}, DispatcherConfig{BufferSize: 4}, testLogger())

	_ = d.Create(context.Background(), Entry{ID: "e1"})
	d.Close()

	if d.Failed() != 1 {
		t.Fatalf("expected one failed write, got %d", d.Failed())
	}
}

func TestRecorderOverDispatcherIsFireAndForget(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(store, DispatcherConfig{BufferSize: 16, DropIfFull: true}, testLogger())
	r := NewRecorder(d, Config{Policy: PolicyFailOpen}, testLogger())

	if _, err := r.LogLoginAttempt(context.Background(), Record{ActorID: "u1", Outcome: OutcomeSuccess}); err != nil {
		t.Fatalf("log over dispatcher failed: %v", err)
	}
	d.Close()

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry after drain, got %d", len(entries))
	}
	if entries[0].Action != ActionLogin {
		t.Fatalf("unexpected action %q", entries[0].Action)
	}
}

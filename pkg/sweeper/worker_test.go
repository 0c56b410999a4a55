package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/klazomenai/landing-service/pkg/storage"
	"github.com/klazomenai/landing-service/pkg/view"
)

// Test helper: setup worker over a miniredis-backed store
func setupTestWorker(t *testing.T) (*Worker, *storage.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	store, err := storage.NewRedisStore(mr.Addr(), "", 0)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create Redis store: %v", err)
	}

	worker := NewWorker(&WorkerConfig{CheckInterval: time.Second}, store)

	return worker, store, mr
}

func TestNewWorker(t *testing.T) {
	worker, _, mr := setupTestWorker(t)
	defer mr.Close()

	if worker == nil {
		t.Fatal("Expected worker to be created")
	}

	if worker.config.CheckInterval != time.Second {
		t.Errorf("Expected check interval 1s, got %v", worker.config.CheckInterval)
	}
}

func TestWorkerStartStop(t *testing.T) {
	worker, _, mr := setupTestWorker(t)
	defer mr.Close()

	done := make(chan bool)
	go func() {
		worker.Start()
		done <- true
	}()

	time.Sleep(100 * time.Millisecond)

	worker.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop within timeout")
	}
}

func TestSweep_NoViews(t *testing.T) {
	worker, _, mr := setupTestWorker(t)
	defer mr.Close()

	if purged := worker.sweep(); purged != 0 {
		t.Errorf("Expected nothing to purge, got %d", purged)
	}
}

func TestSweep_RedisExpiredViews(t *testing.T) {
	worker, store, mr := setupTestWorker(t)
	defer mr.Close()

	ctx := context.Background()
	store.SaveView(ctx, view.Mount("expiring").Snapshot(), time.Second)
	store.SaveView(ctx, view.Mount("fresh").Snapshot(), time.Hour)

	mr.FastForward(2 * time.Second)

	if purged := worker.sweep(); purged != 1 {
		t.Errorf("Expected 1 purged view, got %d", purged)
	}

	count, _ := store.ActiveViews(ctx)
	if count != 1 {
		t.Errorf("Expected 1 active view, got %d", count)
	}
}

func TestSweep_MemoryStore(t *testing.T) {
	store := storage.NewMemoryStore()
	worker := NewWorker(&WorkerConfig{CheckInterval: time.Second}, store)

	ctx := context.Background()
	store.SaveView(ctx, view.Mount("gone").Snapshot(), -time.Second)
	store.SaveView(ctx, view.Mount("kept").Snapshot(), time.Hour)

	if purged := worker.sweep(); purged != 1 {
		t.Errorf("Expected 1 purged view, got %d", purged)
	}

	if got, _ := store.GetView(ctx, "kept"); got == nil {
		t.Error("Expected unexpired view to remain")
	}
}

func TestSweep_StoreFailure(t *testing.T) {
	worker, _, mr := setupTestWorker(t)
	mr.Close()

	// Errors are logged, never fatal
	if purged := worker.sweep(); purged != 0 {
		t.Errorf("Expected 0 purged on failure, got %d", purged)
	}
}

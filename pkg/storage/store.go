// Package storage keeps mounted views between the initial render and the
// client-capable pass. Entries live only for the view TTL.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/klazomenai/landing-service/pkg/view"
)

// Store is implemented by RedisStore and MemoryStore
type Store interface {
	SaveView(ctx context.Context, snap view.Snapshot, ttl time.Duration) error
	GetView(ctx context.Context, id string) (*view.Snapshot, error)
	DeleteView(ctx context.Context, id string) error
	ActiveViews(ctx context.Context) (int, error)
	PurgeExpired(ctx context.Context) (int, error)
	Health(ctx context.Context) error
	Close() error
}

type memoryEntry struct {
	snap      view.Snapshot
	expiresAt time.Time
}

// MemoryStore is an in-process Store used when no Redis address is configured
type MemoryStore struct {
	mu    sync.Mutex
	views map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		views: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

// SaveView stores a snapshot until ttl elapses
func (s *MemoryStore) SaveView(_ context.Context, snap view.Snapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.views[snap.ID] = memoryEntry{snap: snap, expiresAt: s.now().Add(ttl)}
	return nil
}

// GetView returns nil for unknown or expired views
func (s *MemoryStore) GetView(_ context.Context, id string) (*view.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.views[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, nil
	}
	snap := entry.snap
	return &snap, nil
}

// DeleteView removes a view if present
func (s *MemoryStore) DeleteView(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.views, id)
	return nil
}

// ActiveViews counts stored views, including expired ones not yet purged
func (s *MemoryStore) ActiveViews(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.views), nil
}

// PurgeExpired evicts every view whose TTL has elapsed
func (s *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for id, entry := range s.views {
		if !now.Before(entry.expiresAt) {
			delete(s.views, id)
			purged++
		}
	}
	return purged, nil
}

// Health always succeeds for the in-process store
func (s *MemoryStore) Health(context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

package store

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/adrecon/internal/model"
)

type memEntry struct {
	snap      *model.Snapshot
	expiresAt time.Time
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an empty MemoryStore.
func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		ttl:     ttlOrDefault(ttl),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memEntry{snap: snap, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[sessionID]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return e.snap, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	orderID   uuid.UUID
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a process local Store. Records expire after ttl.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := orderCreateKey(key)
	entry, ok := s.entries[k]
	if !ok {
		return uuid.Nil, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, k)
		return uuid.Nil, false, nil
	}
	return entry.orderID, true, nil
}

func (s *memoryStore) Put(_ context.Context, key string, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := orderCreateKey(key)
	now := s.now()
	if entry, ok := s.entries[k]; ok && now.Before(entry.expiresAt) {
		return nil
	}
	s.entries[k] = memoryEntry{orderID: orderID, expiresAt: now.Add(s.ttl)}
	return nil
}

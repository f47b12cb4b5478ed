package registration

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps pending registrations in a mutex-guarded map. It is the default
// backing when Redis is not configured and the store used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Pending
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Pending)}
}

func (s *MemoryStore) Put(ctx context.Context, p Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[normalizeEmail(p.Email)] = p
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, email string) (Pending, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[normalizeEmail(email)]
	return entry, ok, nil
}

func (s *MemoryStore) Take(ctx context.Context, email string) (Pending, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	entry, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return entry, ok, nil
}

func (s *MemoryStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, normalizeEmail(email))
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package authcodes

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	userID  int64
	expires time.Time
}

// implements Store in process memory; used when REDIS_URL is unset and in tests
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Issue(_ context.Context, userID int64) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.entries[code] = memoryEntry{userID: userID, expires: s.now().Add(s.ttl)}

	return code, nil
}

func (s *MemoryStore) Redeem(_ context.Context, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[code]
	if !ok {
		return 0, ErrInvalidCode
	}

	delete(s.entries, code)

	if !s.now().Before(entry.expires) {
		return 0, ErrInvalidCode
	}

	return entry.userID, nil
}

// drops expired entries; caller holds the lock
func (s *MemoryStore) sweep() {
	now := s.now()
	for code, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, code)
		}
	}
}

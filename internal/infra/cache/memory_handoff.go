package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/davronx1/leadgate/internal/handoff"
)

const sweepInterval = 5 * time.Minute

type handoffEntry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryHandoffStore is the single-process handoff store: a guarded map with
// TTL enforcement on read and a periodic sweep for entries nobody ever takes.
type MemoryHandoffStore struct {
	mu      sync.Mutex
	entries map[string]handoffEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryHandoffStore() *MemoryHandoffStore {
	s := &MemoryHandoffStore{
		entries: make(map[string]handoffEntry),
		ttl:     handoff.TTL,
		now:     time.Now,
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryHandoffStore) Put(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = handoffEntry{payload: payload, storedAt: s.now()}
	return nil
}

func (s *MemoryHandoffStore) Take(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	// deleted unconditionally: one-time use, expired or not
	delete(s.entries, key)

	if s.now().Sub(entry.storedAt) > s.ttl {
		return nil, false, nil
	}
	return entry.payload, true, nil
}

func (s *MemoryHandoffStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.sweep()
	}
}

func (s *MemoryHandoffStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if now.Sub(entry.storedAt) > s.ttl {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[handoff] swept %d expired session(s)", removed)
	}
}

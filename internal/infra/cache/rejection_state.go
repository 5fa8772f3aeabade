package cache

import "sync"

// RejectionStateStore remembers which lead a reviewer is still owing a
// free-text rejection reason for. Entries have no expiry; a newer decision
// attempt simply overwrites the old one.
type RejectionStateStore struct {
	mu      sync.Mutex
	pending map[string]string // deciderID -> leadID
}

func NewRejectionStateStore() *RejectionStateStore {
	return &RejectionStateStore{pending: make(map[string]string)}
}

func (s *RejectionStateStore) Set(deciderID, leadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[deciderID] = leadID
}

func (s *RejectionStateStore) Get(deciderID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	leadID, ok := s.pending[deciderID]
	return leadID, ok
}

func (s *RejectionStateStore) Clear(deciderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, deciderID)
}

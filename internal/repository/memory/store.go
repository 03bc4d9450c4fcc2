package memory

import (
	"context"
	"sync"
)

// Store keeps slots in process memory. It backs tests and ephemeral runs.
type Store struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{slots: make(map[string][]byte)}
}

// Load returns a copy of the payload stored under slot.
func (s *Store) Load(_ context.Context, slot string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.slots[slot]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

// Save overwrites the slot with a copy of payload.
func (s *Store) Save(_ context.Context, slot string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[slot] = append([]byte(nil), payload...)
	return nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

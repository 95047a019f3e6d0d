package identity

import "sync"

// memoryStore keeps the device id in memory only. Used in tests and as the
// explicit "ephemeral for this session" fallback when durable storage is
// unavailable.
type memoryStore struct {
	mu  sync.RWMutex
	id  string
	set bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return "", ErrNotFound
	}
	return s.id, nil
}

func (s *memoryStore) Save(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = id
	s.set = true
	return nil
}

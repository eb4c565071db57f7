package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the cached session in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load retrieves the cached session.
func (s *MemoryStore) Load(ctx context.Context) (*Session, error) {
	s.mu.RLock()
	sess := s.sess
	s.mu.RUnlock()

	if sess == nil || sess.IsExpired() {
		return nil, nil
	}
	return sess, nil
}

// Save replaces the cached session.
func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
	return nil
}

// Clear removes the cached session.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.sess = nil
	s.mu.Unlock()
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

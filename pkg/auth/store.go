package auth

import (
	"context"
	"sync"
	"time"
)

// Store persists principals by session ID.
type Store interface {
	// Get returns the principal for sessionID, ErrNoSession when there is
	// none, or ErrSessionExpired when it has expired.
	Get(ctx context.Context, sessionID string) (Principal, error)

	// Put stores p for sessionID until p expires.
	Put(ctx context.Context, sessionID string, p Principal) error

	// Delete removes sessionID.
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process Store for single-server deployments.
type MemoryStore struct {
	mu         sync.RWMutex
	principals map[string]Principal
	now        func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		principals: make(map[string]Principal),
		now:        time.Now,
	}
}

// Get implements Store. Expired principals are removed.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (Principal, error) {
	s.mu.RLock()
	p, ok := s.principals[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Principal{}, ErrNoSession
	}
	if p.Expired(s.now()) {
		s.mu.Lock()
		delete(s.principals, sessionID)
		s.mu.Unlock()
		return Principal{}, ErrSessionExpired
	}
	return p, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, sessionID string, p Principal) error {
	s.mu.Lock()
	s.principals[sessionID] = p
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.principals, sessionID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.principals)
}

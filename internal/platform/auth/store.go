package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore tracks which token ids are live. A token that verifies but is
// not in the store has been signed out.
type SessionStore interface {
	Put(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	Active(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeAllForUser(ctx context.Context, userID string) (int, error)
}

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore is a process-local SessionStore used in development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	userJTIs map[string]map[string]struct{}
	now      func() time.Time
	done     chan struct{}
}

// NewMemoryStore starts a goroutine that drops expired sessions every
// interval. Call Close to stop it.
func NewMemoryStore(interval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]memoryEntry),
		userJTIs: make(map[string]map[string]struct{}),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if interval > 0 {
		go s.cleanupLoop(interval)
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, tokenID, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tokenID] = memoryEntry{userID: userID, expiresAt: expiresAt}
	if s.userJTIs[userID] == nil {
		s.userJTIs[userID] = make(map[string]struct{})
	}
	s.userJTIs[userID][tokenID] = struct{}{}
	return nil
}

func (s *MemoryStore) Active(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[tokenID]
	return ok && s.now().Before(e.expiresAt), nil
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(tokenID)
	return nil
}

func (s *MemoryStore) RevokeAllForUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for jti := range s.userJTIs[userID] {
		s.remove(jti)
		n++
	}
	return n, nil
}

// Count returns the number of tracked sessions, expired or not.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// remove must be called with mu held.
func (s *MemoryStore) remove(tokenID string) {
	e, ok := s.entries[tokenID]
	if !ok {
		return
	}
	delete(s.entries, tokenID)
	if jtis := s.userJTIs[e.userID]; jtis != nil {
		delete(jtis, tokenID)
		if len(jtis) == 0 {
			delete(s.userJTIs, e.userID)
		}
	}
}

func (s *MemoryStore) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryStore) cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, e := range s.entries {
		if now.After(e.expiresAt) {
			s.remove(jti)
		}
	}
}

package credential

import (
	"context"
	"sync"
	"time"
)

// SessionStore remembers whether a browser session has picked a key. Only
// the flag is stored, never the key itself.
type SessionStore interface {
	Ready(ctx context.Context, sessionID string) (bool, error)
	MarkReady(ctx context.Context, sessionID string) error
	Invalidate(ctx context.Context, sessionID string) error
}

// MemoryStore is a SessionStore held in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Ready(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expires[sessionID]
	if !ok {
		return false, nil
	}
	if s.ttl > 0 && !s.now().Before(exp) {
		delete(s.expires, sessionID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) MarkReady(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)
	s.expires[sessionID] = now.Add(s.ttl)
	return nil
}

// prune drops expired sessions. The caller holds s.mu.
func (s *MemoryStore) prune(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, id)
		}
	}
}

func (s *MemoryStore) Invalidate(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.expires, sessionID)
	return nil
}

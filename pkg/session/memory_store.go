package session

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]Session),
		stopCh:   make(chan struct{}),
	}

	go store.cleanup(cleanupInterval)

	return store
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.Expired(time.Now()) {
		return nil, ErrNotFound
	}

	return cloneSession(&sess), nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = *cloneSession(sess)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, sess := range s.sessions {
				if sess.Expired(now) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func cloneSession(sess *Session) *Session {
	c := *sess
	if sess.User != nil {
		u := *sess.User
		c.User = &u
	}
	if sess.Flashes != nil {
		c.Flashes = make(map[string][]string, len(sess.Flashes))
		for kind, msgs := range sess.Flashes {
			c.Flashes[kind] = append([]string(nil), msgs...)
		}
	}
	return &c
}

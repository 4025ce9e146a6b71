package sessionstore

import (
	"context"
	"sync"

	"github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
)

// Store is an in-memory implementation of sessionstore.Store.
// Expired sessions are returned as-is; the auth service decides what expiry means.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[string]sessionstore.Session
}

func NewStore() *Store {
	return &Store{m: make(map[string]sessionstore.Session)}
}

func (s *Store) Put(ctx context.Context, sess sessionstore.Session) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.TokenHash] = sess
	return nil
}

func (s *Store) Get(ctx context.Context, tokenHash string) (sessionstore.Session, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[tokenHash]
	if !ok {
		return sessionstore.Session{}, sessionstore.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, tokenHash string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, tokenHash)
	return nil
}

// Len reports the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

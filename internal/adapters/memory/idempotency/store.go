package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
)

// Store keeps idempotency records in a map. Bodies are copied in both directions.
type Store struct {
	mu      sync.RWMutex
	records map[idempotency.Fingerprint]idempotency.Record
}

func NewStore() *Store {
	return &Store{records: map[idempotency.Fingerprint]idempotency.Record{}}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	rec.Body = append([]byte(nil), rec.Body...)
	s.mu.Lock()
	s.records[fp] = rec
	s.mu.Unlock()
	return nil
}

func (s *Store) Purge(ctx context.Context, before time.Time) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for fp, rec := range s.records {
		if rec.CreatedAt.Before(before) {
			delete(s.records, fp)
			n++
		}
	}
	return n, nil
}

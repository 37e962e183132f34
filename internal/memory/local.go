package memory

import (
	"context"
	"sync"
	"time"
)

// LocalStore keeps records in process memory. It is lost on restart.
type LocalStore struct {
	mu      sync.RWMutex
	records map[string][]Record
	now     func() time.Time
}

// NewLocalStore creates an empty in-process store.
func NewLocalStore() *LocalStore {
	return &LocalStore{
		records: make(map[string][]Record),
		now:     time.Now,
	}
}

// Write appends rec to its user's records.
func (s *LocalStore) Write(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	rec = prepare(rec, s.now)

	s.mu.Lock()
	s.records[rec.UserID] = append(s.records[rec.UserID], rec)
	s.mu.Unlock()
	return nil
}

// Recall ranks the user's records against q.Text.
func (s *LocalStore) Recall(ctx context.Context, q Query) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.UserID == "" {
		return nil, ErrEmptyUser
	}

	s.mu.RLock()
	records := s.records[q.UserID]
	s.mu.RUnlock()

	return rank(records, q), nil
}

// Len returns the number of records held for userID.
func (s *LocalStore) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[userID])
}

func (s *LocalStore) Close() error { return nil }

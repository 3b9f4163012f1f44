package store

import (
	"context"
	"sync"

	"github.com/soyeahso/botline/internal/directline"
)

// MemorySessionStore implements directline.SessionStore in memory. Useful
// for tests and for callers that do not want a session to survive restarts.
type MemorySessionStore struct {
	mu  sync.Mutex
	rec *directline.SessionRecord
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Load returns the held record, or (nil, nil) when absent.
func (s *MemorySessionStore) Load(ctx context.Context) (*directline.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	rec := *s.rec
	return &rec, nil
}

// Save replaces the held record.
func (s *MemorySessionStore) Save(ctx context.Context, rec directline.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}

// Clear drops the held record.
func (s *MemorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}

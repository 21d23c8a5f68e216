package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.SavedStateMap
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.SavedStateMap),
	}
}

// Save keeps a deep copy of saved, similar to serialization.
func (s *Store) Save(ctx context.Context, sessionID string, saved domain.SavedStateMap) error {
	copied := saved.Clone()
	if copied == nil {
		copied = domain.SavedStateMap{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load returns a copy so the caller can't mutate the stored map.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.SavedStateMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return saved.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored sessions in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}

package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// mapStore is the smallest SnapshotStore that satisfies the contract.
type mapStore struct {
	mu   sync.Mutex
	data map[string]domain.SavedStateMap
}

func (m *mapStore) Save(_ context.Context, sessionID string, saved domain.SavedStateMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]domain.SavedStateMap)
	}
	m.data[sessionID] = saved.Clone()
	return nil
}

func (m *mapStore) Load(_ context.Context, sessionID string) (domain.SavedStateMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return saved.Clone(), nil
}

func (m *mapStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

func (m *mapStore) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestSnapshotStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, &mapStore{})
}

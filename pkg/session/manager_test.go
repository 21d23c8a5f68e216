package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates latency to provoke race conditions if locking is missing.
type slowStore struct {
	mu       sync.Mutex
	data     map[string]domain.SavedStateMap
	inFlight int32
	overlap  int32
}

func (s *slowStore) enter() func() {
	if atomic.AddInt32(&s.inFlight, 1) > 1 {
		atomic.StoreInt32(&s.overlap, 1)
	}
	time.Sleep(5 * time.Millisecond)
	return func() { atomic.AddInt32(&s.inFlight, -1) }
}

func (s *slowStore) Save(ctx context.Context, sessionID string, saved domain.SavedStateMap) error {
	defer s.enter()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]domain.SavedStateMap)
	}
	s.data[sessionID] = saved.Clone()
	return nil
}

func (s *slowStore) Load(ctx context.Context, sessionID string) (domain.SavedStateMap, error) {
	defer s.enter()()
	s.mu.Lock()
	defer s.mu.Unlock()
	if saved, ok := s.data[sessionID]; ok {
		return saved.Clone(), nil
	}
	return nil, domain.ErrSnapshotNotFound
}

func (s *slowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *slowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_SerializesSameSession(t *testing.T) {
	store := &slowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.Save(ctx, "race-test", domain.SavedStateMap{}))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(0), atomic.LoadInt32(&store.overlap), "saves of one session must not overlap")
}

func TestManager_ReadModifyWrite(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	id := "counter"
	require.NoError(t, manager.Save(ctx, id, domain.SavedStateMap{"n": json.RawMessage(`0`)}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				saved, err := manager.Store().Load(ctx, id)
				if err != nil {
					return err
				}
				var n int
				if _, err := saved.Get("n", &n); err != nil {
					return err
				}
				if err := saved.Put("n", n+1); err != nil {
					return err
				}
				return manager.Store().Save(ctx, id, saved)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	saved, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `20`, string(saved["n"]))
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &slowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var created int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, isNew, err := manager.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, saved)
			if isNew {
				atomic.AddInt32(&created, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created)
	saved, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestManager_LoadMissing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, err := manager.Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrSnapshotNotFound))
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := redis.NewLocker(client, "waypoint:", redis.WithRetryInterval(10*time.Millisecond))
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	err := manager.WithLock(ctx, "dist", func(ctx context.Context) error {
		assert.True(t, mr.Exists("waypoint:lock:dist"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("waypoint:lock:dist"))
}

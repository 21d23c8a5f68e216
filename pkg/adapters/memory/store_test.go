package memory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_SaveIsolatesCaller(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	saved := domain.SavedStateMap{"slot": json.RawMessage(`[1]`)}

	require.NoError(t, store.Save(ctx, "s", saved))
	saved["slot"][1] = '9'

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(loaded["slot"]))
}

func TestMemoryStore_ListSorted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, id := range []string{"b", "c", "a"} {
		require.NoError(t, store.Save(ctx, id, nil))
	}
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

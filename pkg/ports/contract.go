package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	sample := func() domain.SavedStateMap {
		return domain.SavedStateMap{
			"waypoint.backstack": json.RawMessage(`[{"target":"home","id":1,"from_state":"ON_SCREEN","target_state":"ON_SCREEN"}]`),
			"waypoint.cards":     json.RawMessage(`{"queued":[],"liked":[],"passed":[]}`),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		saved := sample()
		require.NoError(t, store.Save(ctx, sessionID, saved), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded, len(saved))
		for slot, raw := range saved {
			assert.JSONEq(t, string(raw), string(loaded[slot]), "slot %s", slot)
		}
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, sample()))
		replacement := domain.SavedStateMap{"only": json.RawMessage(`{"n":1}`)}
		require.NoError(t, store.Save(ctx, sessionID, replacement))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.JSONEq(t, `{"n":1}`, string(loaded["only"]))
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, sample()))
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded["mutated"] = json.RawMessage(`true`)

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotContains(t, again, "mutated")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, sample()))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete of a missing session is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, sample()))
		require.NoError(t, store.Save(ctx, id2, sample()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

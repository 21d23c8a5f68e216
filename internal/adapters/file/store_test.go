package file_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/waypoint/internal/adapters/file"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunSnapshotStoreContract(t, store)
}

func TestFileStore_WritesReadableJSON(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.New(dir)

	saved := domain.SavedStateMap{"waypoint.backstack": json.RawMessage(`[]`)}
	require.NoError(t, store.Save(ctx, "abc", saved))

	data, err := os.ReadFile(filepath.Join(dir, "abc.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"waypoint.backstack":[]}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	store := file.New(t.TempDir())

	assert.Error(t, store.Save(ctx, "../escape", domain.SavedStateMap{}))
	assert.Error(t, store.Save(ctx, "", domain.SavedStateMap{}))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	_, err := store.Load(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

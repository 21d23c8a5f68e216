package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func secretSnapshot() domain.SavedStateMap {
	return domain.SavedStateMap{
		"waypoint.backstack": json.RawMessage(`[{"target":"my-secret-sauce","id":1,"from_state":"ON_SCREEN","target_state":"ON_SCREEN"}]`),
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSnapshotStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw(underlying)

	require.NoError(t, secure.Save(ctx, "s", secretSnapshot()))

	stored, err := underlying.Load(ctx, "s")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Contains(t, stored, middleware.EnvelopeSlot)
	assert.NotContains(t, string(stored[middleware.EnvelopeSlot]), "my-secret-sauce")

	loaded, err := secure.Load(ctx, "s")
	require.NoError(t, err)
	assert.JSONEq(t, string(secretSnapshot()["waypoint.backstack"]), string(loaded["waypoint.backstack"]))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, "s", secretSnapshot()))

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)
	loaded, err := rotated.Load(ctx, "s")
	require.NoError(t, err)
	assert.Contains(t, loaded, "waypoint.backstack")

	strict := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlying)
	_, err = strict.Load(ctx, "s")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainSnapshot(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "plain", secretSnapshot()))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}

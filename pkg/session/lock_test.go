package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.SavedStateMap{})
		_ = mgr.Delete(ctx, sid)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}

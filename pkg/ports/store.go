package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// SnapshotStore persists the saved-state map of a session so that a navigator can be
// torn down and rebuilt with the same stack.
type SnapshotStore interface {
	// Save persists the saved-state map for a session ID, replacing any previous one.
	Save(ctx context.Context, sessionID string, saved domain.SavedStateMap) error

	// Load retrieves the saved-state map for a session ID.
	// Returns domain.ErrSnapshotNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (domain.SavedStateMap, error)

	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}

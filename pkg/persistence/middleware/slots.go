package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

type ephemeralMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewEphemeralSlotsMiddleware creates a middleware that never persists slots whose key
// matches one of the patterns. Models in those slots start fresh after a restore.
func NewEphemeralSlotsMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &ephemeralMiddleware{next: next, patterns: patterns}
	}
}

func (m *ephemeralMiddleware) Save(ctx context.Context, sessionID string, saved domain.SavedStateMap) error {
	kept := make(domain.SavedStateMap, len(saved))
	for slot, raw := range saved {
		if !m.matches(slot) {
			kept[slot] = raw
		}
	}
	return m.next.Save(ctx, sessionID, kept)
}

func (m *ephemeralMiddleware) Load(ctx context.Context, sessionID string) (domain.SavedStateMap, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *ephemeralMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *ephemeralMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *ephemeralMiddleware) matches(slot string) bool {
	for _, p := range m.patterns {
		if p.MatchString(slot) {
			return true
		}
	}
	return false
}

package cards_test

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/cards"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targets[T any](elements []domain.KeyedElement[T]) []T {
	out := make([]T, 0, len(elements))
	for _, el := range elements {
		out = append(out, el.Target)
	}
	return out
}

func TestVote_NotApplicableOnEmptyQueue(t *testing.T) {
	var empty cards.State[string]
	assert.False(t, cards.VoteLike[string]{}.IsApplicable(empty))
	assert.False(t, cards.VotePass[string]{}.IsApplicable(empty))
}

func TestVoteLike_MovesTopToLiked(t *testing.T) {
	state := cards.NewState(domain.NewIDGenerator(), "child1", "child2")

	next, err := cards.VoteLike[string]{}.Invoke(state, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"child1"}, targets(next.Liked))
	assert.Equal(t, []string{"child2"}, targets(next.Queued))
	assert.Empty(t, next.Passed)
	assert.Len(t, state.Queued, 2, "input state must not change")
}

func TestVotePass_MovesTopToPassed(t *testing.T) {
	state := cards.NewState(domain.NewIDGenerator(), "child1", "child2")

	next, err := cards.VotePass[string]{}.Invoke(state, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"child1"}, targets(next.Passed))
	assert.Equal(t, []string{"child2"}, targets(next.Queued))
	assert.Empty(t, next.Liked)
}

func TestCards_VotingAnimatesAndStops(t *testing.T) {
	ctx := context.Background()
	deck := cards.New([]string{"a", "b"})

	top, ok := deck.State().Top()
	require.True(t, ok)
	assert.Equal(t, domain.ID(1), top.ID)

	applied, err := deck.Like(ctx, domain.ModeKeyframe)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, deck.Animating())

	applied, err = deck.Pass(ctx, domain.ModeImmediate)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.False(t, deck.Animating())

	applied, err = deck.Like(ctx, domain.ModeKeyframe)
	require.NoError(t, err)
	assert.False(t, applied, "queue is empty")

	state := deck.State()
	assert.Equal(t, []string{"a"}, targets(state.Liked))
	assert.Equal(t, []string{"b"}, targets(state.Passed))
	assert.Equal(t, state, deck.Frame().TargetState)
}

func TestCards_SaveAndRestore(t *testing.T) {
	ctx := context.Background()
	deck := cards.New([]string{"a", "b", "c"})
	_, err := deck.Pass(ctx, domain.ModeImmediate)
	require.NoError(t, err)

	saved := domain.SavedStateMap{}
	require.NoError(t, deck.SaveInstanceState(saved))

	other := cards.New([]string{"x"})
	found, err := other.Restore(saved)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, deck.State(), other.State())
	assert.Equal(t, other.State(), other.Frame().TargetState)

	found, err = other.Restore(domain.SavedStateMap{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCards_RestoreRejectsExhaustedIDs(t *testing.T) {
	saved := domain.SavedStateMap{}
	require.NoError(t, saved.Put(cards.Slot, cards.State[string]{
		Queued: []domain.KeyedElement[string]{{Target: "a", ID: domain.MaxID}},
	}))

	deck := cards.New([]string{"x"})
	found, err := deck.Restore(saved)
	require.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"x"}, targets(deck.State().Queued))
}

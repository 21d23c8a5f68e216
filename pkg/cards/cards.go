// Package cards is a swipe-to-vote model: destinations wait in a queue and each vote
// moves the top card to the liked or passed pile.
package cards

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/interaction"
)

// Slot is the saved-state key a card deck persists under.
const Slot = "waypoint.cards"

// State is the whole deck. Queued[0] is the top card.
type State[T any] struct {
	Queued []domain.KeyedElement[T] `json:"queued"`
	Liked  []domain.KeyedElement[T] `json:"liked"`
	Passed []domain.KeyedElement[T] `json:"passed"`
}

// NewState queues targets in order.
func NewState[T any](ids *domain.IDGenerator, targets ...T) State[T] {
	queued := make([]domain.KeyedElement[T], 0, len(targets))
	for _, target := range targets {
		queued = append(queued, domain.NewKeyedElement(target, ids))
	}
	return State[T]{Queued: queued}
}

// Top returns the card on top of the queue.
func (s State[T]) Top() (domain.KeyedElement[T], bool) {
	if len(s.Queued) == 0 {
		return domain.KeyedElement[T]{}, false
	}
	return s.Queued[0], true
}

func (s State[T]) maxID() domain.ID {
	var max domain.ID
	for _, pile := range [][]domain.KeyedElement[T]{s.Queued, s.Liked, s.Passed} {
		for _, el := range pile {
			if el.ID > max {
				max = el.ID
			}
		}
	}
	return max
}

// vote moves the top card onto a pile. The input state is never modified.
func vote[T any](s State[T], like bool) State[T] {
	top := s.Queued[0]
	next := State[T]{
		Queued: append([]domain.KeyedElement[T](nil), s.Queued[1:]...),
		Liked:  append([]domain.KeyedElement[T](nil), s.Liked...),
		Passed: append([]domain.KeyedElement[T](nil), s.Passed...),
	}
	if like {
		next.Liked = append(next.Liked, top)
	} else {
		next.Passed = append(next.Passed, top)
	}
	return next
}

// VoteLike moves the top card to the liked pile.
type VoteLike[T any] struct{}

func (VoteLike[T]) Name() string                 { return "vote_like" }
func (VoteLike[T]) IsApplicable(s State[T]) bool { return len(s.Queued) > 0 }
func (VoteLike[T]) Invoke(s State[T], _ *domain.IDGenerator) (State[T], error) {
	return vote(s, true), nil
}

// VotePass moves the top card to the passed pile.
type VotePass[T any] struct{}

func (VotePass[T]) Name() string                 { return "vote_pass" }
func (VotePass[T]) IsApplicable(s State[T]) bool { return len(s.Queued) > 0 }
func (VotePass[T]) Invoke(s State[T], _ *domain.IDGenerator) (State[T], error) {
	return vote(s, false), nil
}

// Cards is an animated deck.
type Cards[T any] struct {
	*interaction.Component[State[T]]
	source *interaction.Plain[State[T]]
}

// New creates a deck with targets queued in order. Options configure the underlying
// source and component.
func New[T any](targets []T, opts ...interaction.Option) *Cards[T] {
	ids := domain.NewIDGenerator()
	opts = append([]interaction.Option{interaction.WithName("cards")}, opts...)
	opts = append(opts, interaction.WithIDGenerator(ids))

	source := interaction.NewPlain(NewState(ids, targets...), opts...)
	return &Cards[T]{
		Component: interaction.NewComponent[State[T]](source, opts...),
		source:    source,
	}
}

// Like votes the top card up. It reports false on an empty queue.
func (c *Cards[T]) Like(ctx context.Context, mode domain.Mode) (bool, error) {
	return c.Operate(ctx, VoteLike[T]{}, mode)
}

// Pass votes the top card down. It reports false on an empty queue.
func (c *Cards[T]) Pass(ctx context.Context, mode domain.Mode) (bool, error) {
	return c.Operate(ctx, VotePass[T]{}, mode)
}

// State returns the canonical deck.
func (c *Cards[T]) State() State[T] {
	return c.source.State()
}

// SaveInstanceState writes the deck under Slot.
func (c *Cards[T]) SaveInstanceState(saved domain.SavedStateMap) error {
	if err := saved.Put(Slot, c.source.State()); err != nil {
		return fmt.Errorf("failed to save cards: %w", err)
	}
	return nil
}

// Restore replaces the deck with the one saved under Slot. It reports false when the
// map holds no deck. Any running animation is discarded.
func (c *Cards[T]) Restore(saved domain.SavedStateMap) (bool, error) {
	var state State[T]
	found, err := saved.Get(Slot, &state)
	if err != nil || !found {
		return false, err
	}
	if err := c.source.IDs().SeedAfter(state.maxID()); err != nil {
		return false, fmt.Errorf("%w: slot %q: %v", domain.ErrInvalidSnapshot, Slot, err)
	}
	c.Reset(state)
	return true, nil
}

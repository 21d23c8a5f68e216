package backstack

import (
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navmodel"
)

// Operation names, recorded on the elements they move.
const (
	OpPush    = "push"
	OpPop     = "pop"
	OpReplace = "replace"
	OpNewRoot = "new_root"
	OpRemove  = "remove"
)

// Push stashes the active element and puts Target on screen.
//
//	[A] + Push(B) = [B, A]
type Push[T any] struct {
	Target T
}

func (Push[T]) Name() string                  { return OpPush }
func (Push[T]) IsApplicable(Elements[T]) bool { return true }

func (op Push[T]) Invoke(elements Elements[T], ids *domain.IDGenerator) (Elements[T], error) {
	active := ActiveIndex(elements)
	next := elements.Map(func(i int, el Element[T]) Element[T] {
		if i == active {
			return el.TransitionTo(Stashed, OpPush)
		}
		return el
	})
	return prepend(next, op.Target, ids, OpPush), nil
}

// Pop destroys the active element and brings back the most recently stashed one.
//
//	[B, A] + Pop = [A]
type Pop[T any] struct{}

func (Pop[T]) Name() string { return OpPop }

func (Pop[T]) IsApplicable(elements Elements[T]) bool {
	return HasStashed(elements)
}

func (Pop[T]) Invoke(elements Elements[T], _ *domain.IDGenerator) (Elements[T], error) {
	active := ActiveIndex(elements)
	unstash := StashedIndex(elements, active)
	if unstash < 0 {
		return nil, domain.NewPreconditionError(OpPop, "nothing to restore from the back stack, state=%v", elements)
	}
	return elements.Map(func(i int, el Element[T]) Element[T] {
		switch i {
		case active:
			return el.TransitionTo(Destroyed, OpPop)
		case unstash:
			return el.TransitionTo(OnScreen, OpPop)
		default:
			return el
		}
	}), nil
}

// Replace destroys the active element and puts Target on screen in its place.
// Stashed elements are untouched.
//
//	[B, A] + Replace(C) = [C, A]
type Replace[T any] struct {
	Target T
}

func (Replace[T]) Name() string                  { return OpReplace }
func (Replace[T]) IsApplicable(Elements[T]) bool { return true }

func (op Replace[T]) Invoke(elements Elements[T], ids *domain.IDGenerator) (Elements[T], error) {
	active := ActiveIndex(elements)
	next := elements.Map(func(i int, el Element[T]) Element[T] {
		if i == active {
			return el.TransitionTo(Destroyed, OpReplace)
		}
		return el
	})
	return prepend(next, op.Target, ids, OpReplace), nil
}

// NewRoot destroys every element and puts Target on screen.
//
//	[B, A] + NewRoot(C) = [C]
type NewRoot[T any] struct {
	Target T
}

func (NewRoot[T]) Name() string                  { return OpNewRoot }
func (NewRoot[T]) IsApplicable(Elements[T]) bool { return true }

func (op NewRoot[T]) Invoke(elements Elements[T], ids *domain.IDGenerator) (Elements[T], error) {
	next := elements.Map(func(_ int, el Element[T]) Element[T] {
		if el.TargetState == Destroyed {
			return el
		}
		return el.TransitionTo(Destroyed, OpNewRoot)
	})
	return prepend(next, op.Target, ids, OpNewRoot), nil
}

// Remove takes the element with Key out of the stack.
//
// Removing the active element destroys it and brings back the most recently stashed
// element in the same edit, so observers never see a stack without an active element.
// Removing a stashed element deletes it outright, since it is not on screen.
//
//	[C, B, A] + Remove(B) = [C, A]
type Remove[T any] struct {
	Key domain.ElementKey
}

func (Remove[T]) Name() string { return OpRemove }

func (op Remove[T]) IsApplicable(elements Elements[T]) bool {
	return op.index(elements) >= 0
}

func (op Remove[T]) Invoke(elements Elements[T], _ *domain.IDGenerator) (Elements[T], error) {
	target := op.index(elements)
	if target < 0 {
		return elements, nil
	}
	if target != ActiveIndex(elements) {
		return elements.Without(target), nil
	}

	unstash := StashedIndex(elements, target)
	if unstash < 0 {
		return nil, domain.NewPreconditionError(OpRemove, "nothing to restore from the back stack when removing %s, state=%v", op.Key, elements)
	}
	return elements.Map(func(i int, el Element[T]) Element[T] {
		switch i {
		case target:
			return el.TransitionTo(Destroyed, OpRemove)
		case unstash:
			return el.TransitionTo(OnScreen, OpRemove)
		default:
			return el
		}
	}), nil
}

// index finds the live element with the key.
func (op Remove[T]) index(elements Elements[T]) int {
	return elements.IndexFunc(func(el Element[T]) bool {
		return el.Key.Key() == op.Key && el.TargetState != Destroyed
	})
}

func prepend[T any](elements Elements[T], target T, ids *domain.IDGenerator, op string) Elements[T] {
	el := navmodel.NewElement(domain.NewKeyedElement(target, ids), Created, OnScreen, op)
	return append(Elements[T]{el}, elements...)
}

package navmodel

import "github.com/aretw0/waypoint/pkg/domain"

// Element is one record of the canonical collection.
type Element[T any, S comparable] struct {
	Key         domain.KeyedElement[T] `json:"key"`
	FromState   S                      `json:"from_state"`
	TargetState S                      `json:"target_state"`
	// Operation names the operation that started the current transition.
	Operation string `json:"operation,omitempty"`
}

// NewElement creates an element entering the collection with a transition from -> target.
func NewElement[T any, S comparable](key domain.KeyedElement[T], from, target S, operation string) Element[T, S] {
	return Element[T, S]{Key: key, FromState: from, TargetState: target, Operation: operation}
}

// NewIdleElement creates an element resting at state.
func NewIdleElement[T any, S comparable](key domain.KeyedElement[T], state S) Element[T, S] {
	return Element[T, S]{Key: key, FromState: state, TargetState: state}
}

// IsIdle reports whether the element is not transitioning.
func (e Element[T, S]) IsIdle() bool {
	return e.FromState == e.TargetState
}

// TransitionTo starts a transition from the current target towards target.
func (e Element[T, S]) TransitionTo(target S, operation string) Element[T, S] {
	return Element[T, S]{
		Key:         e.Key,
		FromState:   e.TargetState,
		TargetState: target,
		Operation:   operation,
	}
}

// Finish makes the element idle at its target state.
func (e Element[T, S]) Finish() Element[T, S] {
	return Element[T, S]{Key: e.Key, FromState: e.TargetState, TargetState: e.TargetState}
}

// Elements is an ordered collection, most recent first.
type Elements[T any, S comparable] []Element[T, S]

// Clone returns a copy that can be modified without affecting e.
func (e Elements[T, S]) Clone() Elements[T, S] {
	if e == nil {
		return nil
	}
	return append(Elements[T, S](nil), e...)
}

// IndexOf returns the position of the element with key, or -1.
func (e Elements[T, S]) IndexOf(key domain.ElementKey) int {
	for i, el := range e {
		if el.Key.Key() == key {
			return i
		}
	}
	return -1
}

// IndexFunc returns the first position matching fn, or -1.
func (e Elements[T, S]) IndexFunc(fn func(Element[T, S]) bool) int {
	for i, el := range e {
		if fn(el) {
			return i
		}
	}
	return -1
}

// Any reports whether any element matches fn.
func (e Elements[T, S]) Any(fn func(Element[T, S]) bool) bool {
	return e.IndexFunc(fn) >= 0
}

// Filter returns the elements matching fn, never nil.
func (e Elements[T, S]) Filter(fn func(Element[T, S]) bool) Elements[T, S] {
	out := Elements[T, S]{}
	for _, el := range e {
		if fn(el) {
			out = append(out, el)
		}
	}
	return out
}

// Without returns a copy with the element at index removed.
func (e Elements[T, S]) Without(index int) Elements[T, S] {
	out := make(Elements[T, S], 0, len(e))
	out = append(out, e[:index]...)
	return append(out, e[index+1:]...)
}

// Map returns a copy with fn applied to every element.
func (e Elements[T, S]) Map(fn func(int, Element[T, S]) Element[T, S]) Elements[T, S] {
	out := make(Elements[T, S], len(e))
	for i, el := range e {
		out[i] = fn(i, el)
	}
	return out
}

// InTransition reports whether any element is transitioning.
func (e Elements[T, S]) InTransition() bool {
	return e.Any(func(el Element[T, S]) bool { return !el.IsIdle() })
}

// MaxID returns the largest ID in the collection, or 0 when empty.
func (e Elements[T, S]) MaxID() domain.ID {
	var max domain.ID
	for _, el := range e {
		if el.Key.ID > max {
			max = el.Key.ID
		}
	}
	return max
}

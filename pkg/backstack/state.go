package backstack

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/navmodel"
)

// State is the lifecycle state of a back stack element.
type State int

const (
	Created State = iota
	OnScreen
	Stashed
	Destroyed
)

var stateNames = map[State]string{
	Created:   "CREATED",
	OnScreen:  "ON_SCREEN",
	Stashed:   "STASHED_IN_BACK_STACK",
	Destroyed: "DESTROYED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown back stack state %d", int(s))
	}
	return []byte(name), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown back stack state %q", string(text))
}

type resolver struct{}

func (resolver) IsOnScreen(s State) bool { return s == OnScreen }
func (resolver) IsFinal(s State) bool    { return s == Destroyed }

// Normalize resolves the transient states: CREATED settles ON_SCREEN and
// DESTROYED elements are never persisted.
func (resolver) Normalize(s State) (State, bool) {
	switch s {
	case Created:
		return OnScreen, true
	case Destroyed:
		return s, false
	default:
		return s, true
	}
}

// Resolver returns the back stack lifecycle resolver.
func Resolver() navmodel.Resolver[State] {
	return resolver{}
}

type (
	Element[T any]   = navmodel.Element[T, State]
	Elements[T any]  = navmodel.Elements[T, State]
	Operation[T any] = navmodel.Operation[T, State]
)

// ActiveIndex returns the index of the first element not heading to DESTROYED, or -1.
func ActiveIndex[T any](elements Elements[T]) int {
	return elements.IndexFunc(func(el Element[T]) bool {
		return el.TargetState != Destroyed
	})
}

// StashedIndex returns the most recently stashed element other than skip, or -1.
func StashedIndex[T any](elements Elements[T], skip int) int {
	for i, el := range elements {
		if i != skip && el.TargetState == Stashed {
			return i
		}
	}
	return -1
}

// HasStashed reports whether any element is heading to or resting in the back stack.
func HasStashed[T any](elements Elements[T]) bool {
	return elements.Any(func(el Element[T]) bool { return el.TargetState == Stashed })
}

package navmodel

// Resolver describes the lifecycle states of a concrete model.
type Resolver[S comparable] interface {
	// IsOnScreen reports whether an element resting in state is visible.
	IsOnScreen(state S) bool
	// IsFinal reports whether reaching state removes the element from the collection.
	IsFinal(state S) bool
	// Normalize maps the state an element was heading to at save time to the idle state it
	// is restored in. It reports false when the element must not be persisted.
	Normalize(state S) (S, bool)
}

// IsOnScreen reports whether either end of the element's transition is visible.
func IsOnScreen[T any, S comparable](r Resolver[S], el Element[T, S]) bool {
	return r.IsOnScreen(el.FromState) || r.IsOnScreen(el.TargetState)
}

package domain

// KeyedElement wraps a destination with the identity the engine tracks it by.
// Two elements are "the same" destination only if their IDs match; the Target
// payload is never compared structurally for identity.
type KeyedElement[T any] struct {
	Target T  `json:"target"`
	ID     ID `json:"id"`
}

// NewKeyedElement assigns a fresh ID from ids.
func NewKeyedElement[T any](target T, ids *IDGenerator) KeyedElement[T] {
	return KeyedElement[T]{Target: target, ID: ids.Next()}
}

// Key returns the identity of the element.
func (e KeyedElement[T]) Key() ElementKey {
	return ElementKey{ID: e.ID}
}

// ElementKey is the comparable identity of a KeyedElement.
type ElementKey struct {
	ID ID `json:"id"`
}

func (k ElementKey) String() string {
	return k.ID.String()
}

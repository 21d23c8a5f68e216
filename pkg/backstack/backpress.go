package backstack

// BackPressHandler decides what a system back press does to the stack.
type BackPressHandler[T any] interface {
	// CanHandle reports whether a back press would be consumed in the given state.
	CanHandle(elements Elements[T]) bool
	// Operation returns the operation a consumed back press performs.
	Operation() Operation[T]
}

// PopBackPress pops the stack while there is anything stashed. It is the default handler.
type PopBackPress[T any] struct{}

func (PopBackPress[T]) CanHandle(elements Elements[T]) bool { return HasStashed(elements) }
func (PopBackPress[T]) Operation() Operation[T]             { return Pop[T]{} }

// IgnoreBackPress never consumes a back press, leaving it to the host.
type IgnoreBackPress[T any] struct{}

func (IgnoreBackPress[T]) CanHandle(Elements[T]) bool { return false }
func (IgnoreBackPress[T]) Operation() Operation[T]    { return nil }

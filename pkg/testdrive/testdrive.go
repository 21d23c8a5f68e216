// Package testdrive moves a single element around four corners. It exists to exercise
// renderers and gestures with the smallest possible model.
package testdrive

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/interaction"
)

// Position is a corner of the test drive track, visited A, B, C, D and back to A.
type Position int

const (
	A Position = iota
	B
	C
	D
)

func (p Position) String() string {
	switch p {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	case D:
		return "D"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// Next returns the following corner.
func (p Position) Next() Position {
	return (p + 1) % 4
}

// State is the element and where it is.
type State[T any] struct {
	Element  domain.KeyedElement[T] `json:"element"`
	Position Position               `json:"position"`
}

// Next moves the element to the following corner. It is always applicable.
type Next[T any] struct{}

func (Next[T]) Name() string               { return "next" }
func (Next[T]) IsApplicable(State[T]) bool { return true }
func (Next[T]) Invoke(s State[T], _ *domain.IDGenerator) (State[T], error) {
	s.Position = s.Position.Next()
	return s, nil
}

// TestDrive is an animated single element model.
type TestDrive[T any] struct {
	*interaction.Component[State[T]]
}

// New puts target on corner A.
func New[T any](target T, opts ...interaction.Option) *TestDrive[T] {
	ids := domain.NewIDGenerator()
	opts = append([]interaction.Option{interaction.WithName("testdrive")}, opts...)
	opts = append(opts, interaction.WithIDGenerator(ids))

	state := State[T]{Element: domain.NewKeyedElement(target, ids), Position: A}
	source := interaction.NewPlain(state, opts...)
	return &TestDrive[T]{Component: interaction.NewComponent[State[T]](source, opts...)}
}

// Next moves to the following corner.
func (d *TestDrive[T]) Next(ctx context.Context, mode domain.Mode) error {
	_, err := d.Operate(ctx, Next[T]{}, mode)
	return err
}

// Position returns the corner the element is heading to.
func (d *TestDrive[T]) Position() Position {
	return d.Source().State().Position
}

package domain

import "fmt"

// Operation transforms a model state of type S.
//
// IsApplicable must be pure. When it returns false the caller leaves the state
// untouched; this is normal control flow, not an error. Invoke returns the new
// state and must not mutate its input. An error from Invoke is a precondition
// violation and the caller discards the result.
type Operation[S any] interface {
	Name() string
	IsApplicable(state S) bool
	Invoke(state S, ids *IDGenerator) (S, error)
}

// OperationFunc adapts a pair of functions to the Operation interface.
type OperationFunc[S any] struct {
	OpName     string
	Applicable func(S) bool
	Apply      func(S, *IDGenerator) (S, error)
}

func (f OperationFunc[S]) Name() string { return f.OpName }

func (f OperationFunc[S]) IsApplicable(state S) bool {
	if f.Applicable == nil {
		return true
	}
	return f.Applicable(state)
}

func (f OperationFunc[S]) Invoke(state S, ids *IDGenerator) (S, error) {
	return f.Apply(state, ids)
}

// Mode selects how an applied operation reaches the output timeline.
type Mode int

const (
	// ModeKeyframe appends a segment so the change is animated by progress.
	ModeKeyframe Mode = iota
	// ModeImmediate replaces the output with a one-shot update.
	ModeImmediate
)

func (m Mode) String() string {
	switch m {
	case ModeKeyframe:
		return "keyframe"
	case ModeImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the values produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "keyframe":
		return ModeKeyframe, nil
	case "immediate":
		return ModeImmediate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

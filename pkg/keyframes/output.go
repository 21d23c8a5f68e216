package keyframes

import (
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
)

// Output is what a model exposes to its renderer: either a timeline of Keyframes
// or a single immediate Update.
type Output[M any] interface {
	// CurrentTargetState is the state the renderer is heading to right now.
	CurrentTargetState() M
	// LastTargetState is the state at the end of everything queued.
	LastTargetState() M
	// DeriveKeyframes layers a new transition on top of the current output.
	DeriveKeyframes(t Transition[M]) *Keyframes[M]
	// DeriveUpdate folds the current output and t into an immediate Update.
	DeriveUpdate(t Transition[M]) *Update[M]
	// Replace pins the whole output to state.
	Replace(state M) Output[M]
}

// Update is a non-animated replacement of the rendered state.
// History holds previous-from, previous-target and new-from so that a renderer can
// snap to the new target without an intermediate repaint.
type Update[M any] struct {
	History     []M `json:"history"`
	TargetState M   `json:"target_state"`

	logger *slog.Logger
}

// NewUpdate creates an Update that sits at state. Keyframes derived from it inherit
// its options.
func NewUpdate[M any](state M, opts ...Option) *Update[M] {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Update[M]{History: []M{state}, TargetState: state, logger: o.logger}
}

func (u *Update[M]) options() []Option {
	if u.logger == nil {
		return nil
	}
	return []Option{WithLogger(u.logger)}
}

func (u *Update[M]) CurrentTargetState() M { return u.TargetState }
func (u *Update[M]) LastTargetState() M    { return u.TargetState }

// DeriveKeyframes starts a fresh timeline from t.
func (u *Update[M]) DeriveKeyframes(t Transition[M]) *Keyframes[M] {
	return NewWithOptions([]Segment[M]{NewSegment(t)}, 0, u.options()...)
}

func (u *Update[M]) DeriveUpdate(t Transition[M]) *Update[M] {
	return &Update[M]{
		History:     []M{u.TargetState, t.FromState},
		TargetState: t.TargetState,
		logger:      u.logger,
	}
}

func (u *Update[M]) Replace(state M) Output[M] {
	return NewUpdate(state, u.options()...)
}

package keyframes

// Transition describes one change of a whole model state.
type Transition[M any] struct {
	FromState   M `json:"from_state"`
	TargetState M `json:"target_state"`
}

// Segment is one unit of the keyframe queue.
type Segment[M any] struct {
	Transition Transition[M] `json:"transition"`
	// InitialProgress is the overall progress at the moment the segment was queued.
	InitialProgress float64 `json:"initial_progress"`
}

// NewSegment wraps a transition.
func NewSegment[M any](t Transition[M]) Segment[M] {
	return Segment[M]{Transition: t}
}

func (s Segment[M]) FromState() M   { return s.Transition.FromState }
func (s Segment[M]) TargetState() M { return s.Transition.TargetState }

// replace pins both ends of the segment to state.
func (s Segment[M]) replace(state M) Segment[M] {
	return Segment[M]{
		Transition:      Transition[M]{FromState: state, TargetState: state},
		InitialProgress: s.InitialProgress,
	}
}

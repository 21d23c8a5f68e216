package interaction

import (
	"math"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Offset is a drag delta in renderer units.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GestureMapper turns drags into operations and progress.
type GestureMapper[M any] interface {
	// Gesture returns the operation a drag starting with delta triggers, if any.
	Gesture(delta Offset, state M) (domain.Operation[M], bool)
	// Progress converts delta into a progress increment.
	Progress(delta Offset) float64
}

// Axis selects which component of a drag a DirectionalGesture reads.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// DirectionalGesture maps a drag along one axis to Forward (positive) or Backward
// (negative). Distance is the drag length that plays one full segment.
type DirectionalGesture[M any] struct {
	Axis     Axis
	Distance float64
	Forward  domain.Operation[M]
	Backward domain.Operation[M]
}

func (g DirectionalGesture[M]) Gesture(delta Offset, _ M) (domain.Operation[M], bool) {
	v := g.component(delta)
	switch {
	case v > 0 && g.Forward != nil:
		return g.Forward, true
	case v < 0 && g.Backward != nil:
		return g.Backward, true
	default:
		return nil, false
	}
}

func (g DirectionalGesture[M]) Progress(delta Offset) float64 {
	if g.Distance <= 0 {
		return 0
	}
	return math.Abs(g.component(delta)) / g.Distance
}

func (g DirectionalGesture[M]) component(delta Offset) float64 {
	if g.Axis == Vertical {
		return delta.Y
	}
	return delta.X
}

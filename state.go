package waypoint

import (
	"github.com/aretw0/waypoint/pkg/backstack"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navmodel"
)

// State is a read-only view of a navigator, shaped for transports.
type State struct {
	SessionID     string    `json:"session_id,omitempty"`
	Elements      []Element `json:"elements"`
	Active        *Element  `json:"active,omitempty"`
	CanHandleBack bool      `json:"can_handle_back"`
	Frame         Frame     `json:"frame"`
}

// Element is one back stack record.
type Element struct {
	ID          domain.ID       `json:"id"`
	Target      string          `json:"target"`
	FromState   backstack.State `json:"from_state"`
	TargetState backstack.State `json:"target_state"`
	Operation   string          `json:"operation,omitempty"`
	OnScreen    bool            `json:"on_screen"`
}

// Frame describes the transition being played.
type Frame struct {
	Index           int     `json:"index"`
	Segments        int     `json:"segments"`
	SegmentProgress float64 `json:"segment_progress"`
	Progress        float64 `json:"progress"`
	Animating       bool    `json:"animating"`
}

func (n *Navigator) snapshot() State {
	elements := n.stack.Snapshot()
	resolver := n.stack.Resolver()

	st := State{
		SessionID:     n.sessionID,
		Elements:      make([]Element, 0, len(elements)),
		CanHandleBack: n.stack.BackPressHandler().CanHandle(elements),
	}
	for _, el := range elements {
		st.Elements = append(st.Elements, Element{
			ID:          el.Key.ID,
			Target:      el.Key.Target,
			FromState:   el.FromState,
			TargetState: el.TargetState,
			Operation:   el.Operation,
			OnScreen:    navmodel.IsOnScreen(resolver, el),
		})
	}
	if idx := backstack.ActiveIndex(elements); idx >= 0 {
		active := st.Elements[idx]
		st.Active = &active
	}

	frame := n.component.Frame()
	st.Frame = Frame{
		Index:           frame.Index,
		Segments:        frame.Segments,
		SegmentProgress: frame.SegmentProgress,
		Progress:        frame.Progress,
		Animating:       frame.Animating,
	}
	return st
}

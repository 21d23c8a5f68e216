package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventOperationApplied  EventType = "operation_applied"
	EventOperationRejected EventType = "operation_rejected"
	EventTransitionDone    EventType = "transition_finished"
	EventSegmentDone       EventType = "segment_finished"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Model     string    `json:"model"`
}

// OperationEvent is emitted when an operation is applied, skipped or rejected.
type OperationEvent struct {
	EventBase
	Operation string `json:"operation"`
	// Applied is false when the operation was not applicable.
	Applied bool  `json:"applied"`
	Err     error `json:"-"`
}

// TransitionEvent is emitted when an element finishes its transition.
type TransitionEvent struct {
	EventBase
	Element ElementKey `json:"element"`
	// Pruned is true when the element reached its final state and left the collection.
	Pruned bool `json:"pruned"`
}

// SegmentEvent is emitted when progress crosses a segment boundary.
type SegmentEvent struct {
	EventBase
	Index int `json:"index"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnOperation          func(context.Context, *OperationEvent)
	OnRejected           func(context.Context, *OperationEvent)
	OnTransitionFinished func(context.Context, *TransitionEvent)
	OnSegmentFinished    func(context.Context, *SegmentEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnOperation:          chain(h.OnOperation, other.OnOperation),
		OnRejected:           chain(h.OnRejected, other.OnRejected),
		OnTransitionFinished: chain(h.OnTransitionFinished, other.OnTransitionFinished),
		OnSegmentFinished:    chain(h.OnSegmentFinished, other.OnSegmentFinished),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// NewEventBase stamps an event with the current time.
func NewEventBase(t EventType, model string) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, Model: model}
}

package interaction

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/keyframes"
	"github.com/aretw0/waypoint/pkg/navmodel"
)

// Source owns the canonical state a Component animates.
type Source[M any] interface {
	// State returns the current canonical state.
	State() M
	// Apply runs op and returns the transition it caused. It reports false when op was
	// not applicable; an error leaves the state unchanged.
	Apply(ctx context.Context, op domain.Operation[M]) (keyframes.Transition[M], bool, error)
	// Settle is called once for every segment whose playback completed. later holds the
	// segments still queued after it.
	Settle(ctx context.Context, segment keyframes.Segment[M], later []keyframes.Segment[M])
	// Reset replaces the canonical state.
	Reset(state M)
	// Rewind moves the canonical state back to state when a timeline is retargeted.
	Rewind(state M)
}

// ModelSource adapts an element state machine to a Source.
// Settling a segment finishes the element transitions it started.
type ModelSource[T any, S comparable] struct {
	model *navmodel.Model[T, S]
}

// FromModel wraps model.
func FromModel[T any, S comparable](model *navmodel.Model[T, S]) *ModelSource[T, S] {
	return &ModelSource[T, S]{model: model}
}

func (s *ModelSource[T, S]) State() navmodel.Elements[T, S] {
	return s.model.Snapshot()
}

func (s *ModelSource[T, S]) Apply(ctx context.Context, op domain.Operation[navmodel.Elements[T, S]]) (keyframes.Transition[navmodel.Elements[T, S]], bool, error) {
	before, after, applied, err := s.model.Accept(ctx, op)
	return keyframes.Transition[navmodel.Elements[T, S]]{FromState: before, TargetState: after}, applied, err
}

func (s *ModelSource[T, S]) Settle(ctx context.Context, segment keyframes.Segment[navmodel.Elements[T, S]], later []keyframes.Segment[navmodel.Elements[T, S]]) {
	pending := make([]navmodel.Elements[T, S], 0, len(later))
	for _, seg := range later {
		pending = append(pending, seg.TargetState())
	}
	s.model.Settle(ctx, segment.TargetState(), pending...)
}

func (s *ModelSource[T, S]) Reset(state navmodel.Elements[T, S]) {
	s.model.Reset(state)
}

// Rewind never brings back elements that already left the model.
func (s *ModelSource[T, S]) Rewind(state navmodel.Elements[T, S]) {
	s.model.Rewind(state)
}

// Plain is a Source over an arbitrary state value, for models whose state is not an
// element collection.
type Plain[M any] struct {
	name   string
	ids    *domain.IDGenerator
	hooks  domain.LifecycleHooks
	logger *slog.Logger

	mu    sync.Mutex
	state M
}

// NewPlain creates a Plain source holding state.
func NewPlain[M any](state M, opts ...Option) *Plain[M] {
	o := newOptions("plain", opts)
	return &Plain[M]{
		name:   o.name,
		ids:    o.ids,
		hooks:  o.hooks,
		logger: o.logger,
		state:  state,
	}
}

// IDs returns the generator operations draw new IDs from.
func (p *Plain[M]) IDs() *domain.IDGenerator { return p.ids }

func (p *Plain[M]) State() M {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Plain[M]) Apply(ctx context.Context, op domain.Operation[M]) (keyframes.Transition[M], bool, error) {
	p.mu.Lock()
	before := p.state
	if !op.IsApplicable(before) {
		p.mu.Unlock()
		p.logger.Debug("operation not applicable", "operation", op.Name())
		p.emit(ctx, op.Name(), false, nil)
		return keyframes.Transition[M]{FromState: before, TargetState: before}, false, nil
	}
	after, err := op.Invoke(before, p.ids)
	if err != nil {
		p.mu.Unlock()
		p.logger.Warn("operation rejected", "operation", op.Name(), "err", err)
		p.emit(ctx, op.Name(), false, err)
		return keyframes.Transition[M]{FromState: before, TargetState: before}, false, err
	}
	p.state = after
	p.mu.Unlock()

	p.logger.Debug("operation applied", "operation", op.Name())
	p.emit(ctx, op.Name(), true, nil)
	return keyframes.Transition[M]{FromState: before, TargetState: after}, true, nil
}

// Settle is a no-op: a plain state has no per-element lifecycle.
func (p *Plain[M]) Settle(context.Context, keyframes.Segment[M], []keyframes.Segment[M]) {}

func (p *Plain[M]) Reset(state M) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

func (p *Plain[M]) Rewind(state M) { p.Reset(state) }

func (p *Plain[M]) emit(ctx context.Context, name string, applied bool, err error) {
	evType := domain.EventOperationApplied
	hook := p.hooks.OnOperation
	if err != nil {
		evType = domain.EventOperationRejected
		hook = p.hooks.OnRejected
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.OperationEvent{
		EventBase: domain.NewEventBase(evType, p.name),
		Operation: name,
		Applied:   applied,
		Err:       err,
	})
}

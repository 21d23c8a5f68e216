package navmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/stream"
)

// Operation is an operation over a collection of elements.
type Operation[T any, S comparable] = domain.Operation[Elements[T, S]]

// Model is the single-writer owner of a canonical element collection.
// Every mutation is serialized by an internal mutex; the read views are replay-latest
// streams that receive each committed collection in commit order.
type Model[T any, S comparable] struct {
	name     string
	slot     string
	resolver Resolver[S]
	ids      *domain.IDGenerator
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	saved    domain.SavedStateMap

	mu        sync.Mutex
	elements  Elements[T, S]
	observers []func(Elements[T, S])

	all       *stream.Value[Elements[T, S]]
	onScreen  *stream.Value[Elements[T, S]]
	offScreen *stream.Value[Elements[T, S]]
}

// Option configures a Model.
type Option[T any, S comparable] func(*Model[T, S])

// WithLogger sets a custom structured logger for the model.
func WithLogger[T any, S comparable](logger *slog.Logger) Option[T, S] {
	return func(m *Model[T, S]) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks[T any, S comparable](hooks domain.LifecycleHooks) Option[T, S] {
	return func(m *Model[T, S]) {
		m.hooks = hooks
	}
}

// WithName labels the model in logs and events.
func WithName[T any, S comparable](name string) Option[T, S] {
	return func(m *Model[T, S]) {
		m.name = name
	}
}

// WithSlot sets the key the model is saved under.
func WithSlot[T any, S comparable](slot string) Option[T, S] {
	return func(m *Model[T, S]) {
		m.slot = slot
	}
}

// WithSavedState restores the model from a previously saved map.
// A map without the model's slot falls back to the initial elements.
func WithSavedState[T any, S comparable](saved domain.SavedStateMap) Option[T, S] {
	return func(m *Model[T, S]) {
		m.saved = saved
	}
}

// WithIDGenerator shares an ID generator with other models.
func WithIDGenerator[T any, S comparable](ids *domain.IDGenerator) Option[T, S] {
	return func(m *Model[T, S]) {
		m.ids = ids
	}
}

// New creates a Model. When no saved state is restored, initial is called with the
// model's ID generator to build the first collection.
func New[T any, S comparable](
	resolver Resolver[S],
	initial func(ids *domain.IDGenerator) Elements[T, S],
	opts ...Option[T, S],
) (*Model[T, S], error) {
	m := &Model[T, S]{
		name:     "navmodel",
		slot:     "waypoint.navmodel",
		resolver: resolver,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ids == nil {
		m.ids = domain.NewIDGenerator()
	}
	m.logger = m.logger.With("model", m.name)

	elements, restored, err := restore[T, S](m.saved, m.slot, resolver)
	if err != nil {
		return nil, err
	}
	if restored {
		if err := m.ids.SeedAfter(elements.MaxID()); err != nil {
			return nil, fmt.Errorf("%w: slot %q: %v", domain.ErrInvalidSnapshot, m.slot, err)
		}
		m.logger.Debug("model restored", "elements", len(elements), "next_id", m.ids.Peek())
	} else {
		elements = initial(m.ids)
		if elements == nil {
			elements = Elements[T, S]{}
		}
	}

	m.elements = elements
	m.all = stream.New(elements.Clone())
	m.onScreen = stream.New(m.filterOnScreen(elements, true))
	m.offScreen = stream.New(m.filterOnScreen(elements, false))
	return m, nil
}

// Name returns the label given with WithName.
func (m *Model[T, S]) Name() string { return m.name }

// Slot returns the saved-state key.
func (m *Model[T, S]) Slot() string { return m.slot }

// IDs returns the model's ID generator.
func (m *Model[T, S]) IDs() *domain.IDGenerator { return m.ids }

// Resolver returns the lifecycle resolver.
func (m *Model[T, S]) Resolver() Resolver[S] { return m.resolver }

// Observe registers fn to be called with every committed collection, starting with the
// current one. fn runs while the model is locked and must not call back into the model.
func (m *Model[T, S]) Observe(fn func(Elements[T, S])) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
	fn(m.elements.Clone())
}

// Snapshot returns a copy of the canonical collection.
func (m *Model[T, S]) Snapshot() Elements[T, S] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elements.Clone()
}

// All returns the full ordered collection.
func (m *Model[T, S]) All() Elements[T, S] { return m.all.Latest() }

// OnScreen returns the elements with at least one visible end of their transition.
func (m *Model[T, S]) OnScreen() Elements[T, S] { return m.onScreen.Latest() }

// OffScreen returns the elements that are not visible at either end of their transition.
func (m *Model[T, S]) OffScreen() Elements[T, S] { return m.offScreen.Latest() }

// AllStream exposes the replay-latest stream behind All.
func (m *Model[T, S]) AllStream() stream.Observable[Elements[T, S]] { return m.all }

// OnScreenStream exposes the replay-latest stream behind OnScreen.
func (m *Model[T, S]) OnScreenStream() stream.Observable[Elements[T, S]] { return m.onScreen }

// OffScreenStream exposes the replay-latest stream behind OffScreen.
func (m *Model[T, S]) OffScreenStream() stream.Observable[Elements[T, S]] { return m.offScreen }

// IsOnScreen reports whether the element with key is currently visible.
func (m *Model[T, S]) IsOnScreen(key domain.ElementKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.elements.IndexOf(key)
	return idx >= 0 && IsOnScreen(m.resolver, m.elements[idx])
}

// Accept applies op to the collection.
// It returns the collections before and after, and whether anything changed.
// An inapplicable operation is a no-op; an error means a precondition was violated and the
// collection is unchanged.
func (m *Model[T, S]) Accept(ctx context.Context, op Operation[T, S]) (before, after Elements[T, S], applied bool, err error) {
	m.mu.Lock()
	before = m.elements.Clone()

	if !op.IsApplicable(before) {
		m.mu.Unlock()
		m.logger.Debug("operation not applicable", "operation", op.Name())
		m.emitOperation(ctx, op.Name(), false, nil)
		return before, before, false, nil
	}

	after, err = op.Invoke(before.Clone(), m.ids)
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("operation rejected", "operation", op.Name(), "err", err)
		m.emitOperation(ctx, op.Name(), false, err)
		return before, before, false, err
	}

	m.commit(after)
	m.mu.Unlock()

	m.logger.Debug("operation applied", "operation", op.Name(), "elements", len(after))
	m.emitOperation(ctx, op.Name(), true, nil)
	return before, after.Clone(), true, nil
}

// OnTransitionFinished reports that the element with key finished animating.
// Elements heading to a final state are pruned; others become idle. It returns false
// when no element has key, which is expected when a superseding operation already pruned it.
func (m *Model[T, S]) OnTransitionFinished(ctx context.Context, key domain.ElementKey) bool {
	m.mu.Lock()
	next, pruned, ok := m.finish(m.elements, key)
	if !ok {
		m.mu.Unlock()
		m.logger.Debug("transition finished for unknown element", "element", key)
		return false
	}
	m.commit(next)
	m.mu.Unlock()

	m.emitTransition(ctx, key, pruned)
	return true
}

// Settle finishes every element that was transitioning in snapshot and is still heading
// to the same target in the canonical collection. Elements retargeted since the snapshot
// was taken are left alone, as are elements that a pending collection moves again: those
// finish with the last collection that touches them. It returns the number of elements
// finished.
func (m *Model[T, S]) Settle(ctx context.Context, snapshot Elements[T, S], pending ...Elements[T, S]) int {
	type done struct {
		key    domain.ElementKey
		pruned bool
	}
	var finished []done
	m.mu.Lock()
	next := m.elements
	for _, el := range snapshot {
		if el.IsIdle() || movedLater(el, pending) {
			continue
		}
		idx := next.IndexOf(el.Key.Key())
		if idx < 0 || next[idx].IsIdle() || next[idx].TargetState != el.TargetState {
			continue
		}
		var pruned bool
		next, pruned, _ = m.finish(next, el.Key.Key())
		finished = append(finished, done{key: el.Key.Key(), pruned: pruned})
	}
	if len(finished) > 0 {
		m.commit(next)
	}
	m.mu.Unlock()

	for _, d := range finished {
		m.emitTransition(ctx, d.key, d.pruned)
	}
	return len(finished)
}

// movedLater reports whether a pending collection holds el with a different transition.
func movedLater[T any, S comparable](el Element[T, S], pending []Elements[T, S]) bool {
	for _, p := range pending {
		idx := p.IndexOf(el.Key.Key())
		if idx < 0 {
			continue
		}
		later := p[idx]
		if later.FromState != el.FromState || later.TargetState != el.TargetState || later.Operation != el.Operation {
			return true
		}
	}
	return false
}

// Rewind moves the collection back to snapshot without bringing back what has already
// left it. Elements absent from the canonical collection stay out, and elements that are
// idle in it keep their canonical record. The ID generator is never moved backwards.
func (m *Model[T, S]) Rewind(snapshot Elements[T, S]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make(Elements[T, S], 0, len(snapshot))
	for _, el := range snapshot {
		idx := m.elements.IndexOf(el.Key.Key())
		if idx < 0 {
			continue
		}
		if live := m.elements[idx]; live.IsIdle() {
			el = live
		}
		next = append(next, el)
	}
	m.commit(next)
	m.logger.Debug("model rewound", "elements", len(next), "dropped", len(snapshot)-len(next))
}

// Reset replaces the collection wholesale. The ID generator is never moved backwards.
func (m *Model[T, S]) Reset(elements Elements[T, S]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ids.SeedAfter(elements.MaxID()); err != nil {
		m.logger.Warn("model reset past the id space", "err", err)
	}
	m.commit(elements.Clone())
	m.logger.Debug("model reset", "elements", len(elements))
}

// finish returns elements with the transition of key completed.
func (m *Model[T, S]) finish(elements Elements[T, S], key domain.ElementKey) (Elements[T, S], bool, bool) {
	idx := elements.IndexOf(key)
	if idx < 0 {
		return elements, false, false
	}
	el := elements[idx]
	if m.resolver.IsFinal(el.TargetState) {
		m.logger.Debug("element pruned", "element", key)
		return elements.Without(idx), true, true
	}
	next := elements.Clone()
	next[idx] = el.Finish()
	return next, false, true
}

// commit must be called with m.mu held.
func (m *Model[T, S]) commit(elements Elements[T, S]) {
	if elements == nil {
		elements = Elements[T, S]{}
	}
	m.elements = elements
	m.all.Publish(elements.Clone())
	m.onScreen.Publish(m.filterOnScreen(elements, true))
	m.offScreen.Publish(m.filterOnScreen(elements, false))
	for _, fn := range m.observers {
		fn(elements.Clone())
	}
}

func (m *Model[T, S]) filterOnScreen(elements Elements[T, S], visible bool) Elements[T, S] {
	return elements.Filter(func(el Element[T, S]) bool {
		return IsOnScreen(m.resolver, el) == visible
	})
}

func (m *Model[T, S]) emitOperation(ctx context.Context, name string, applied bool, err error) {
	evType := domain.EventOperationApplied
	hook := m.hooks.OnOperation
	if err != nil {
		evType = domain.EventOperationRejected
		hook = m.hooks.OnRejected
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.OperationEvent{
		EventBase: domain.NewEventBase(evType, m.name),
		Operation: name,
		Applied:   applied,
		Err:       err,
	})
}

func (m *Model[T, S]) emitTransition(ctx context.Context, key domain.ElementKey, pruned bool) {
	if m.hooks.OnTransitionFinished == nil {
		return
	}
	m.hooks.OnTransitionFinished(ctx, &domain.TransitionEvent{
		EventBase: domain.NewEventBase(domain.EventTransitionDone, m.name),
		Element:   key,
		Pruned:    pruned,
	})
}

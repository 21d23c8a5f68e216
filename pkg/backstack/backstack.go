package backstack

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navmodel"
	"github.com/aretw0/waypoint/pkg/stream"
)

// Slot is the saved-state key a back stack persists under.
const Slot = "waypoint.backstack"

// BackStack is a navigation model with a single on-screen element and a stack of
// stashed ones behind it.
type BackStack[T any] struct {
	*navmodel.Model[T, State]

	backPress     BackPressHandler[T]
	canHandleBack *stream.Value[bool]
}

type config[T any] struct {
	model     []navmodel.Option[T, State]
	backPress BackPressHandler[T]
}

// Option configures a BackStack.
type Option[T any] func(*config[T])

// WithLogger sets a custom structured logger.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *config[T]) {
		c.model = append(c.model, navmodel.WithLogger[T, State](logger))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks[T any](hooks domain.LifecycleHooks) Option[T] {
	return func(c *config[T]) {
		c.model = append(c.model, navmodel.WithLifecycleHooks[T, State](hooks))
	}
}

// WithSavedState restores the stack from a saved map. The initial target is ignored when
// the map holds a back stack.
func WithSavedState[T any](saved domain.SavedStateMap) Option[T] {
	return func(c *config[T]) {
		c.model = append(c.model, navmodel.WithSavedState[T, State](saved))
	}
}

// WithIDGenerator shares an ID generator with other models.
func WithIDGenerator[T any](ids *domain.IDGenerator) Option[T] {
	return func(c *config[T]) {
		c.model = append(c.model, navmodel.WithIDGenerator[T, State](ids))
	}
}

// WithBackPressHandler replaces the default pop-on-back behaviour.
func WithBackPressHandler[T any](handler BackPressHandler[T]) Option[T] {
	return func(c *config[T]) {
		c.backPress = handler
	}
}

// New creates a back stack holding initial, idle and on screen.
func New[T any](initial T, opts ...Option[T]) (*BackStack[T], error) {
	cfg := &config[T]{backPress: PopBackPress[T]{}}
	for _, opt := range opts {
		opt(cfg)
	}

	modelOpts := append([]navmodel.Option[T, State]{
		navmodel.WithName[T, State]("backstack"),
		navmodel.WithSlot[T, State](Slot),
	}, cfg.model...)

	model, err := navmodel.New(Resolver(), func(ids *domain.IDGenerator) Elements[T] {
		return Elements[T]{navmodel.NewIdleElement(domain.NewKeyedElement(initial, ids), OnScreen)}
	}, modelOpts...)
	if err != nil {
		return nil, err
	}

	b := &BackStack[T]{
		Model:         model,
		backPress:     cfg.backPress,
		canHandleBack: stream.New(false),
	}
	model.Observe(func(elements Elements[T]) {
		b.canHandleBack.Publish(b.backPress.CanHandle(elements))
	})
	return b, nil
}

// Push stashes the active element and shows target.
func (b *BackStack[T]) Push(ctx context.Context, target T) error {
	_, _, _, err := b.Accept(ctx, Push[T]{Target: target})
	return err
}

// Pop destroys the active element and restores the most recently stashed one.
// It reports false when there is nothing to pop.
func (b *BackStack[T]) Pop(ctx context.Context) (bool, error) {
	_, _, applied, err := b.Accept(ctx, Pop[T]{})
	return applied, err
}

// Replace destroys the active element and shows target in its place.
func (b *BackStack[T]) Replace(ctx context.Context, target T) error {
	_, _, _, err := b.Accept(ctx, Replace[T]{Target: target})
	return err
}

// NewRoot destroys every element and shows target.
func (b *BackStack[T]) NewRoot(ctx context.Context, target T) error {
	_, _, _, err := b.Accept(ctx, NewRoot[T]{Target: target})
	return err
}

// Remove takes the element with key out of the stack. It reports false when no live
// element has key.
func (b *BackStack[T]) Remove(ctx context.Context, key domain.ElementKey) (bool, error) {
	_, _, applied, err := b.Accept(ctx, Remove[T]{Key: key})
	return applied, err
}

// OnBackPressed lets the back press handler consume a back press.
// It reports false when the press was not handled and should propagate to the host.
func (b *BackStack[T]) OnBackPressed(ctx context.Context) (bool, error) {
	if !b.backPress.CanHandle(b.Snapshot()) {
		return false, nil
	}
	_, _, applied, err := b.Accept(ctx, b.backPress.Operation())
	return applied, err
}

// CanHandleBackPress reports whether a back press would currently be consumed.
func (b *BackStack[T]) CanHandleBackPress() bool {
	return b.canHandleBack.Latest()
}

// CanHandleBackPressStream exposes the replay-latest stream behind CanHandleBackPress.
func (b *BackStack[T]) CanHandleBackPressStream() stream.Observable[bool] {
	return b.canHandleBack
}

// BackPressHandler returns the handler in use.
func (b *BackStack[T]) BackPressHandler() BackPressHandler[T] {
	return b.backPress
}

// Active returns the element that is or will be on screen.
func (b *BackStack[T]) Active() (Element[T], bool) {
	elements := b.Snapshot()
	idx := ActiveIndex(elements)
	if idx < 0 {
		return Element[T]{}, false
	}
	return elements[idx], true
}

package waypoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/backstack"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/interaction"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/aretw0/waypoint/pkg/stream"
)

// ErrNoSession is returned by Save when the navigator was not opened from a session.
var ErrNoSession = errors.New("navigator has no session")

// Navigator is the high-level entry point: a back stack of string destinations played
// through a keyframe component, optionally bound to a persisted session.
type Navigator struct {
	stack     *backstack.BackStack[string]
	component *interaction.Component[backstack.Elements[string]]
	sessions  *session.Manager
	sessionID string
	mode      domain.Mode
	logger    *slog.Logger

	mu      sync.Mutex
	updates *stream.Value[State]
}

type config struct {
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
	metrics         *observability.Metrics
	sessions        *session.Manager
	mode            domain.Mode
	segmentDuration time.Duration
	backPress       backstack.BackPressHandler[string]
}

// Option defines a functional option for configuring a Navigator.
type Option func(*config)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithMetrics records operations, transitions and stack size into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithSessionManager enables Open and Save.
func WithSessionManager(m *session.Manager) Option {
	return func(c *config) {
		c.sessions = m
	}
}

// WithMode sets how operations are played (default: ModeKeyframe).
func WithMode(mode domain.Mode) Option {
	return func(c *config) {
		c.mode = mode
	}
}

// WithSegmentDuration sets the render time one segment takes under Tick.
func WithSegmentDuration(d time.Duration) Option {
	return func(c *config) {
		c.segmentDuration = d
	}
}

// WithBackPressHandler replaces the default pop-on-back behaviour.
func WithBackPressHandler(h backstack.BackPressHandler[string]) Option {
	return func(c *config) {
		c.backPress = h
	}
}

// New creates a navigator showing root.
func New(root string, opts ...Option) (*Navigator, error) {
	return build("", root, nil, opts)
}

// Open restores the navigator of sessionID from the configured session manager, or
// starts a fresh one at root when the session does not exist yet.
func Open(ctx context.Context, sessionID, root string, opts ...Option) (*Navigator, error) {
	cfg := newConfig(opts)
	if cfg.sessions == nil {
		return nil, fmt.Errorf("open %q: %w", sessionID, ErrNoSession)
	}
	saved, created, err := cfg.sessions.LoadOrStart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session %q: %w", sessionID, err)
	}
	n, err := build(sessionID, root, saved, opts)
	if err != nil {
		return nil, err
	}
	n.logger.Debug("session opened", "session_id", sessionID, "created", created)
	return n, nil
}

func newConfig(opts []Option) *config {
	cfg := &config{mode: domain.ModeKeyframe}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	return cfg
}

func build(sessionID, root string, saved domain.SavedStateMap, opts []Option) (*Navigator, error) {
	cfg := newConfig(opts)
	logger := cfg.logger
	if sessionID != "" {
		logger = logger.With("session_id", sessionID)
	}

	hooks := cfg.hooks
	if cfg.metrics != nil {
		hooks = hooks.Merge(cfg.metrics.Hooks())
	}

	stackOpts := []backstack.Option[string]{
		backstack.WithLogger[string](logger),
		backstack.WithLifecycleHooks[string](hooks),
	}
	if saved != nil {
		stackOpts = append(stackOpts, backstack.WithSavedState[string](saved))
	}
	if cfg.backPress != nil {
		stackOpts = append(stackOpts, backstack.WithBackPressHandler(cfg.backPress))
	}
	stack, err := backstack.New(root, stackOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build back stack: %w", err)
	}

	componentOpts := []interaction.Option{
		interaction.WithName(stack.Name()),
		interaction.WithLogger(logger),
		interaction.WithLifecycleHooks(hooks),
	}
	if cfg.segmentDuration > 0 {
		componentOpts = append(componentOpts, interaction.WithSegmentDuration(cfg.segmentDuration))
	}

	n := &Navigator{
		stack:     stack,
		component: interaction.NewComponent[backstack.Elements[string]](interaction.FromModel(stack.Model), componentOpts...),
		sessions:  cfg.sessions,
		sessionID: sessionID,
		mode:      cfg.mode,
		logger:    logger,
	}
	if cfg.metrics != nil {
		stack.Observe(func(elements backstack.Elements[string]) {
			cfg.metrics.SetElements(stack.Name(), len(elements))
		})
	}
	n.updates = stream.New(n.snapshot())
	return n, nil
}

// SessionID returns the session the navigator was opened from, or "".
func (n *Navigator) SessionID() string { return n.sessionID }

// BackStack exposes the underlying model.
func (n *Navigator) BackStack() *backstack.BackStack[string] { return n.stack }

// Component exposes the underlying transition player.
func (n *Navigator) Component() *interaction.Component[backstack.Elements[string]] {
	return n.component
}

// Push shows target on top of the stack. Targets pass through SanitizeTarget.
func (n *Navigator) Push(ctx context.Context, target string) error {
	target, err := SanitizeTarget(target)
	if err != nil {
		return err
	}
	_, err = n.operate(ctx, backstack.Push[string]{Target: target})
	return err
}

// Pop returns to the previous destination. It reports false when there is none.
func (n *Navigator) Pop(ctx context.Context) (bool, error) {
	return n.operate(ctx, backstack.Pop[string]{})
}

// Replace swaps the active destination for target.
func (n *Navigator) Replace(ctx context.Context, target string) error {
	target, err := SanitizeTarget(target)
	if err != nil {
		return err
	}
	_, err = n.operate(ctx, backstack.Replace[string]{Target: target})
	return err
}

// NewRoot clears the stack and shows target.
func (n *Navigator) NewRoot(ctx context.Context, target string) error {
	target, err := SanitizeTarget(target)
	if err != nil {
		return err
	}
	_, err = n.operate(ctx, backstack.NewRoot[string]{Target: target})
	return err
}

// Remove takes the element with id out of the stack. It reports false when no live
// element has that id.
func (n *Navigator) Remove(ctx context.Context, id domain.ID) (bool, error) {
	return n.operate(ctx, backstack.Remove[string]{Key: domain.ElementKey{ID: id}})
}

// Back handles a back press. It reports false when the press should propagate to
// the host.
func (n *Navigator) Back(ctx context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	handler := n.stack.BackPressHandler()
	if !handler.CanHandle(n.stack.Snapshot()) {
		return false, nil
	}
	return n.operateLocked(ctx, handler.Operation())
}

// SetProgress moves the transition cursor.
func (n *Navigator) SetProgress(ctx context.Context, p float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.component.SetProgress(ctx, p)
	n.updates.Publish(n.snapshot())
}

// Settle plays every pending transition to its end.
func (n *Navigator) Settle(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.component.SetProgress(ctx, float64(n.component.Frame().Segments))
	n.updates.Publish(n.snapshot())
}

// Tick advances the transitions by dt of render time and reports whether they are
// still playing.
func (n *Navigator) Tick(ctx context.Context, dt time.Duration) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	animating := n.component.Tick(ctx, dt)
	n.updates.Publish(n.snapshot())
	return animating
}

func (n *Navigator) operate(ctx context.Context, op backstack.Operation[string]) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.operateLocked(ctx, op)
}

func (n *Navigator) operateLocked(ctx context.Context, op backstack.Operation[string]) (bool, error) {
	applied, err := n.component.Operate(ctx, op, n.mode)
	if err != nil {
		return false, err
	}
	if applied {
		n.updates.Publish(n.snapshot())
	}
	return applied, nil
}

// Snapshot returns a read-only view of the navigator.
func (n *Navigator) Snapshot() State {
	return n.updates.Latest()
}

// Updates replays the latest snapshot and then every later one, in commit order.
func (n *Navigator) Updates() stream.Observable[State] {
	return n.updates
}

// SaveInstanceState writes the back stack into saved.
func (n *Navigator) SaveInstanceState(saved domain.SavedStateMap) error {
	return n.stack.SaveInstanceState(saved)
}

// Save persists the navigator under its session.
func (n *Navigator) Save(ctx context.Context) error {
	if n.sessions == nil || n.sessionID == "" {
		return ErrNoSession
	}
	saved := domain.SavedStateMap{}
	if err := n.stack.SaveInstanceState(saved); err != nil {
		return fmt.Errorf("failed to save back stack: %w", err)
	}
	if err := n.sessions.Save(ctx, n.sessionID, saved); err != nil {
		return fmt.Errorf("failed to save session %q: %w", n.sessionID, err)
	}
	n.logger.Debug("session saved", "elements", len(n.stack.Snapshot()))
	return nil
}

// Close releases the update stream's subscribers.
func (n *Navigator) Close() {
	n.updates.Close()
}

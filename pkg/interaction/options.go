package interaction

import (
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// DefaultSegmentDuration is how long Tick takes to play one segment.
const DefaultSegmentDuration = 500 * time.Millisecond

// Option configures a Component or a Plain source.
type Option func(*options)

type options struct {
	name            string
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
	ids             *domain.IDGenerator
	segmentDuration time.Duration
	gestures        any
}

func newOptions(name string, opts []Option) options {
	o := options{
		name:            name,
		logger:          logging.NewNop(),
		segmentDuration: DefaultSegmentDuration,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = domain.NewIDGenerator()
	}
	o.logger = o.logger.With("model", o.name)
	return o
}

// WithName labels logs and events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithIDGenerator sets the ID generator of a Plain source.
func WithIDGenerator(ids *domain.IDGenerator) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// WithSegmentDuration sets how long Tick takes to play one segment.
func WithSegmentDuration(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.segmentDuration = d
		}
	}
}

// WithGestureMapper enables Drag. The mapper must match the component's state type.
func WithGestureMapper[M any](g GestureMapper[M]) Option {
	return func(o *options) {
		o.gestures = g
	}
}

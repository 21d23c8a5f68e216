package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Ignored operations and finished transitions
// are logged at Debug, rejections at Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOperation: func(ctx context.Context, e *domain.OperationEvent) {
			level := slog.LevelInfo
			if !e.Applied {
				level = slog.LevelDebug
			}
			logger.Log(ctx, level, "operation",
				"model", e.Model,
				"operation", e.Operation,
				"applied", e.Applied,
			)
		},
		OnRejected: func(ctx context.Context, e *domain.OperationEvent) {
			logger.WarnContext(ctx, "operation_rejected",
				"model", e.Model,
				"operation", e.Operation,
				"err", e.Err,
			)
		},
		OnTransitionFinished: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition_finished",
				"model", e.Model,
				"element", e.Element.String(),
				"pruned", e.Pruned,
			)
		},
		OnSegmentFinished: func(ctx context.Context, e *domain.SegmentEvent) {
			logger.DebugContext(ctx, "segment_finished",
				"model", e.Model,
				"index", e.Index,
			)
		},
	}
}

package interaction

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/keyframes"
	"github.com/aretw0/waypoint/pkg/stream"
)

// Frame is what a renderer draws: the segment being played and how far into it.
// A settled component reports FromState == TargetState and SegmentProgress 1.
type Frame[M any] struct {
	FromState       M       `json:"from_state"`
	TargetState     M       `json:"target_state"`
	Index           int     `json:"index"`
	Segments        int     `json:"segments"`
	SegmentProgress float64 `json:"segment_progress"`
	Progress        float64 `json:"progress"`
	Animating       bool    `json:"animating"`
}

// Component plays the transitions of a Source.
// Hooks run after the component is unlocked, except the source's own operation hooks,
// which must not call back into the component.
type Component[M any] struct {
	source          Source[M]
	name            string
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	segmentDuration time.Duration
	gestures        GestureMapper[M]

	mu     sync.Mutex
	output keyframes.Output[M]
	frames *stream.Value[Frame[M]]
}

// NewComponent creates a settled component over source.
func NewComponent[M any](source Source[M], opts ...Option) *Component[M] {
	o := newOptions("component", opts)
	c := &Component[M]{
		source:          source,
		name:            o.name,
		hooks:           o.hooks,
		logger:          o.logger,
		segmentDuration: o.segmentDuration,
	}
	c.output = c.settled()
	if g, ok := o.gestures.(GestureMapper[M]); ok {
		c.gestures = g
	}
	c.frames = stream.New(frameOf(c.output))
	return c
}

// Source returns the underlying source.
func (c *Component[M]) Source() Source[M] { return c.source }

// Operate applies op and queues its transition according to mode.
// ModeKeyframe appends a segment to the running timeline. ModeImmediate settles every
// pending transition and replaces the output with an update at the new state.
// It reports false when op was not applicable.
func (c *Component[M]) Operate(ctx context.Context, op domain.Operation[M], mode domain.Mode) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.operate(ctx, op, mode)
}

func (c *Component[M]) operate(ctx context.Context, op domain.Operation[M], mode domain.Mode) (bool, error) {
	t, applied, err := c.source.Apply(ctx, op)
	if err != nil || !applied {
		return false, err
	}

	switch mode {
	case domain.ModeImmediate:
		update := c.output.DeriveUpdate(t)
		c.source.Settle(ctx, keyframes.NewSegment(keyframes.Transition[M]{
			FromState:   t.FromState,
			TargetState: c.source.State(),
		}), nil)
		update.TargetState = c.source.State()
		c.output = update
	default:
		c.output = c.output.DeriveKeyframes(t)
	}
	c.logger.Debug("operation queued", "operation", op.Name(), "mode", mode.String())
	c.publish()
	return true, nil
}

// Retarget redirects a running timeline. Segments after the one being played are
// dropped, the source is rewound to the target of the current segment, and op is
// applied from there as a new segment. Without a running timeline it behaves like
// Operate in keyframe mode.
func (c *Component[M]) Retarget(ctx context.Context, op domain.Operation[M]) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kf, ok := c.output.(*keyframes.Keyframes[M])
	if !ok {
		return c.operate(ctx, op, domain.ModeKeyframe)
	}

	index := kf.CurrentIndex()
	queue := kf.Queue()
	previous := c.source.State()

	c.source.Rewind(queue[index].TargetState())
	for i, played := range queue[:index] {
		c.source.Settle(ctx, played, queue[i+1:index+1])
	}

	t, applied, err := c.source.Apply(ctx, op)
	if err != nil || !applied {
		c.source.Reset(previous)
		return false, err
	}

	c.output = kf.DropAfter(index).DeriveKeyframes(t)
	c.logger.Debug("timeline retargeted", "operation", op.Name(), "dropped", len(queue)-index-1)
	c.publish()
	return true, nil
}

// SetProgress moves the timeline cursor. Every segment completed on the way is settled
// on the source in order. Once the whole timeline has played the component settles
// into an update at the source state.
func (c *Component[M]) SetProgress(ctx context.Context, p float64) {
	c.mu.Lock()
	first, n := c.setProgress(ctx, p)
	c.mu.Unlock()

	c.emitSegments(ctx, first, n)
}

// setProgress must be called with c.mu held. It returns the index of the first segment
// completed and how many were.
func (c *Component[M]) setProgress(ctx context.Context, p float64) (int, int) {
	kf, ok := c.output.(*keyframes.Keyframes[M])
	if !ok {
		return 0, 0
	}

	first := int(math.Floor(kf.Progress()))
	var done []keyframes.Segment[M]
	kf.SetProgress(p, func(seg keyframes.Segment[M]) {
		done = append(done, seg)
	})
	queue := kf.Queue()
	for i, seg := range done {
		c.source.Settle(ctx, seg, queue[first+i+1:])
	}
	if kf.Progress() >= kf.MaxProgress() {
		c.output = c.settled()
		c.logger.Debug("timeline settled", "segments", kf.Len())
	}
	c.publish()
	return first, len(done)
}

// Reset discards the timeline and replaces the source state.
func (c *Component[M]) Reset(state M) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source.Reset(state)
	c.output = c.settled()
	c.publish()
}

// Progress returns the cursor of the running timeline, or 0 when settled.
func (c *Component[M]) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress()
}

func (c *Component[M]) progress() float64 {
	if kf, ok := c.output.(*keyframes.Keyframes[M]); ok {
		return kf.Progress()
	}
	return 0
}

// Animating reports whether a timeline is still playing.
func (c *Component[M]) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return frameOf(c.output).Animating
}

// Tick advances the timeline by dt of render time and reports whether it is still
// playing afterwards.
func (c *Component[M]) Tick(ctx context.Context, dt time.Duration) bool {
	c.mu.Lock()
	if _, ok := c.output.(*keyframes.Keyframes[M]); !ok {
		c.mu.Unlock()
		return false
	}
	first, n := c.setProgress(ctx, c.progress()+dt.Seconds()/c.segmentDuration.Seconds())
	animating := frameOf(c.output).Animating
	c.mu.Unlock()

	c.emitSegments(ctx, first, n)
	return animating
}

// Drag feeds a gesture delta. A drag on a settled component starts the operation the
// gesture mapper picks; every drag then advances progress. Starting the operation and
// advancing happen in one step, so concurrent drags never start two operations. It
// reports false when no gesture mapper is set or the drag did not start anything.
func (c *Component[M]) Drag(ctx context.Context, delta Offset) (bool, error) {
	if c.gestures == nil {
		return false, nil
	}
	c.mu.Lock()
	if !frameOf(c.output).Animating {
		op, ok := c.gestures.Gesture(delta, c.source.State())
		if !ok {
			c.mu.Unlock()
			return false, nil
		}
		applied, err := c.operate(ctx, op, domain.ModeKeyframe)
		if err != nil || !applied {
			c.mu.Unlock()
			return false, err
		}
	}
	first, n := c.setProgress(ctx, c.progress()+c.gestures.Progress(delta))
	c.mu.Unlock()

	c.emitSegments(ctx, first, n)
	return true, nil
}

// DragEnd completes the segment a drag left half played.
func (c *Component[M]) DragEnd(ctx context.Context) {
	c.mu.Lock()
	var first, n int
	if p := c.progress(); p != math.Trunc(p) {
		first, n = c.setProgress(ctx, math.Ceil(p))
	}
	c.mu.Unlock()

	c.emitSegments(ctx, first, n)
}

// Timeline returns the current renderer output.
func (c *Component[M]) Timeline() keyframes.Output[M] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// Frame returns the frame a renderer should draw now.
func (c *Component[M]) Frame() Frame[M] {
	return c.frames.Latest()
}

// Output exposes every frame, replaying the latest to new subscribers.
func (c *Component[M]) Output() stream.Observable[Frame[M]] {
	return c.frames
}

// settled returns an update resting at the source state.
func (c *Component[M]) settled() keyframes.Output[M] {
	return keyframes.NewUpdate(c.source.State(), keyframes.WithLogger(c.logger))
}

// publish must be called with c.mu held.
func (c *Component[M]) publish() {
	c.frames.Publish(frameOf(c.output))
}

func (c *Component[M]) emitSegments(ctx context.Context, first, n int) {
	if c.hooks.OnSegmentFinished == nil {
		return
	}
	for i := 0; i < n; i++ {
		c.hooks.OnSegmentFinished(ctx, &domain.SegmentEvent{
			EventBase: domain.NewEventBase(domain.EventSegmentDone, c.name),
			Index:     first + i,
		})
	}
}

func frameOf[M any](output keyframes.Output[M]) Frame[M] {
	switch o := output.(type) {
	case *keyframes.Keyframes[M]:
		seg := o.CurrentSegment()
		return Frame[M]{
			FromState:       seg.FromState(),
			TargetState:     seg.TargetState(),
			Index:           o.CurrentIndex(),
			Segments:        o.Len(),
			SegmentProgress: o.SegmentProgress(),
			Progress:        o.Progress(),
			Animating:       o.Progress() < o.MaxProgress(),
		}
	default:
		state := output.CurrentTargetState()
		return Frame[M]{FromState: state, TargetState: state, SegmentProgress: 1}
	}
}

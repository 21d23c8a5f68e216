package keyframes

import (
	"log/slog"
	"math"
	"sync"

	"github.com/aretw0/waypoint/internal/logging"
)

// Keyframes is a queue of segments plus a progress cursor.
// Safe for concurrent use; SetProgress is linearized with the queue derivations.
type Keyframes[M any] struct {
	mu              sync.RWMutex
	queue           []Segment[M]
	progress        float64
	initialProgress float64
	logger          *slog.Logger
}

// Option configures Keyframes.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the structured logger used for progress diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates keyframes seeded with at least one segment.
// It panics on an empty queue; use Idle to seed a no-op segment.
func New[M any](first Segment[M], rest ...Segment[M]) *Keyframes[M] {
	return NewWithOptions(append([]Segment[M]{first}, rest...), 0)
}

// Idle creates keyframes holding a single no-op segment at state.
func Idle[M any](state M, opts ...Option) *Keyframes[M] {
	seg := NewSegment(Transition[M]{FromState: state, TargetState: state})
	return NewWithOptions([]Segment[M]{seg}, 0, opts...)
}

// NewWithOptions creates keyframes over queue starting at progress.
func NewWithOptions[M any](queue []Segment[M], progress float64, opts ...Option) *Keyframes[M] {
	if len(queue) == 0 {
		panic("keyframes: queue must not be empty")
	}
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	k := &Keyframes[M]{
		queue:  append([]Segment[M](nil), queue...),
		logger: o.logger,
	}
	k.progress = k.clamp(progress)
	k.initialProgress = k.progress
	return k
}

// Queue returns a copy of the segment queue.
func (k *Keyframes[M]) Queue() []Segment[M] {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]Segment[M](nil), k.queue...)
}

// Len returns the number of segments.
func (k *Keyframes[M]) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.queue)
}

// Progress returns the current progress cursor.
func (k *Keyframes[M]) Progress() float64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.progress
}

// InitialProgress is the progress at the moment this timeline was derived.
func (k *Keyframes[M]) InitialProgress() float64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.initialProgress
}

// MaxProgress is the length of the queue.
func (k *Keyframes[M]) MaxProgress() float64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return float64(len(k.queue))
}

// CurrentIndex is floor(progress), except that progress == MaxProgress maps to the last segment.
func (k *Keyframes[M]) CurrentIndex() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.indexOf(k.progress)
}

// SegmentProgress is progress - CurrentIndex, in [0,1) except 1 at the very end.
func (k *Keyframes[M]) SegmentProgress() float64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.progress - float64(k.indexOf(k.progress))
}

// CurrentSegment returns the segment selected by CurrentIndex.
func (k *Keyframes[M]) CurrentSegment() Segment[M] {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.queue[k.indexOf(k.progress)]
}

// CurrentTargetState is the target of the current segment.
func (k *Keyframes[M]) CurrentTargetState() M {
	return k.CurrentSegment().TargetState()
}

// LastTargetState is the target of the last queued segment.
func (k *Keyframes[M]) LastTargetState() M {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.queue[len(k.queue)-1].TargetState()
}

// DeriveKeyframes appends a segment for t. The new timeline starts at the current
// progress so that motion continues from wherever it is now.
func (k *Keyframes[M]) DeriveKeyframes(t Transition[M]) *Keyframes[M] {
	k.mu.RLock()
	defer k.mu.RUnlock()
	queue := make([]Segment[M], 0, len(k.queue)+1)
	queue = append(queue, k.queue...)
	seg := NewSegment(t)
	seg.InitialProgress = k.progress
	queue = append(queue, seg)
	return &Keyframes[M]{
		queue:           queue,
		progress:        k.progress,
		initialProgress: k.progress,
		logger:          k.logger,
	}
}

// DeriveUpdate folds the current segment and t into an immediate Update.
func (k *Keyframes[M]) DeriveUpdate(t Transition[M]) *Update[M] {
	seg := k.CurrentSegment()
	return &Update[M]{
		History:     []M{seg.FromState(), seg.TargetState(), t.FromState},
		TargetState: t.TargetState,
		logger:      k.logger,
	}
}

// Replace pins every segment to state, keeping progress.
func (k *Keyframes[M]) Replace(state M) Output[M] {
	k.mu.RLock()
	defer k.mu.RUnlock()
	queue := make([]Segment[M], len(k.queue))
	for i, seg := range k.queue {
		queue[i] = seg.replace(state)
	}
	return &Keyframes[M]{
		queue:           queue,
		progress:        k.progress,
		initialProgress: k.initialProgress,
		logger:          k.logger,
	}
}

// DropAfter keeps segments [0, index] and discards the rest.
// An index at or beyond the tail leaves the queue unchanged.
func (k *Keyframes[M]) DropAfter(index int) *Keyframes[M] {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if index < 0 {
		index = 0
	}
	queue := k.queue
	if index < len(k.queue)-1 {
		queue = k.queue[:index+1]
	}
	next := &Keyframes[M]{
		queue:           append([]Segment[M](nil), queue...),
		initialProgress: k.initialProgress,
		logger:          k.logger,
	}
	next.progress = next.clamp(k.progress)
	return next
}

// SetProgress moves the cursor to p, clamped to [0, MaxProgress].
// For every integer boundary crossed on the way up, onFinished is called once with the
// segment that just completed, in queue order.
func (k *Keyframes[M]) SetProgress(p float64, onFinished func(Segment[M])) {
	k.mu.Lock()
	clamped := k.clamp(p)
	if clamped != p {
		k.logger.Debug("progress clamped", "requested", p, "clamped", clamped)
	}
	var finished []Segment[M]
	from := int(math.Floor(k.progress))
	to := int(math.Floor(clamped))
	for i := from; i < to && i < len(k.queue); i++ {
		finished = append(finished, k.queue[i])
	}
	k.progress = clamped
	k.mu.Unlock()

	for i, seg := range finished {
		k.logger.Debug("segment finished", "index", from+i, "progress", clamped)
		if onFinished != nil {
			onFinished(seg)
		}
	}
}

func (k *Keyframes[M]) clamp(p float64) float64 {
	max := float64(len(k.queue))
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > max {
		return max
	}
	return p
}

func (k *Keyframes[M]) indexOf(p float64) int {
	max := float64(len(k.queue))
	if p >= max {
		return len(k.queue) - 1
	}
	idx := int(math.Floor(p))
	if idx < 0 {
		return 0
	}
	return idx
}

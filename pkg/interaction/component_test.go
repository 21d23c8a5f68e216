package interaction_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/backstack"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/interaction"
	"github.com/aretw0/waypoint/pkg/keyframes"
	"github.com/aretw0/waypoint/pkg/navmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stackElements = navmodel.Elements[string, backstack.State]

func newStack(t *testing.T, opts ...interaction.Option) (*backstack.BackStack[string], *interaction.Component[stackElements]) {
	t.Helper()
	b, err := backstack.New("X")
	require.NoError(t, err)
	return b, interaction.NewComponent[stackElements](interaction.FromModel(b.Model), opts...)
}

func idle(t *testing.T, elements stackElements) {
	t.Helper()
	for _, el := range elements {
		assert.True(t, el.IsIdle(), "element %s still transitioning", el.Key.Key())
	}
}

func TestComponent_KeyframePlaysAndSettles(t *testing.T) {
	ctx := context.Background()
	var segments []int
	b, c := newStack(t, interaction.WithLifecycleHooks(domain.LifecycleHooks{
		OnSegmentFinished: func(_ context.Context, ev *domain.SegmentEvent) { segments = append(segments, ev.Index) },
	}))

	assert.False(t, c.Animating())

	applied, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeKeyframe)
	require.NoError(t, err)
	require.True(t, applied)

	frame := c.Frame()
	assert.True(t, frame.Animating)
	assert.Equal(t, 0, frame.Index)
	assert.Equal(t, 1, frame.Segments)
	assert.Len(t, frame.FromState, 1)
	assert.Len(t, frame.TargetState, 2)

	c.SetProgress(ctx, 0.5)
	assert.InDelta(t, 0.5, c.Frame().SegmentProgress, 1e-9)
	assert.True(t, b.All().InTransition())

	c.SetProgress(ctx, 1)
	assert.False(t, c.Animating())
	assert.Equal(t, []int{0}, segments)
	idle(t, b.All())
	assert.Equal(t, backstack.OnScreen, b.All()[0].TargetState)
	assert.Equal(t, backstack.Stashed, b.All()[1].TargetState)
}

func TestComponent_LayeredOperations(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t)

	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeKeyframe)
	require.NoError(t, err)
	c.SetProgress(ctx, 0.4)
	_, err = c.Operate(ctx, backstack.Push[string]{Target: "Z"}, domain.ModeKeyframe)
	require.NoError(t, err)

	kf, ok := c.Timeline().(*keyframes.Keyframes[stackElements])
	require.True(t, ok)
	queue := kf.Queue()
	require.Len(t, queue, 2)
	assert.Equal(t, 0.4, queue[1].InitialProgress)
	assert.Equal(t, 0.4, c.Progress())

	c.SetProgress(ctx, 1.0)
	assert.Equal(t, 1, c.Frame().Index)
	assert.True(t, c.Animating())
	// Only X was settled: Y was retargeted to STASHED by the second push.
	all := b.All()
	assert.True(t, all[2].IsIdle())
	assert.False(t, all[1].IsIdle())

	c.SetProgress(ctx, 2.0)
	assert.False(t, c.Animating())
	all = b.All()
	require.Len(t, all, 3)
	idle(t, all)
	assert.Equal(t, []backstack.State{backstack.OnScreen, backstack.Stashed, backstack.Stashed},
		[]backstack.State{all[0].TargetState, all[1].TargetState, all[2].TargetState})
}

func TestComponent_ImmediateSettlesEverything(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t)

	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeKeyframe)
	require.NoError(t, err)
	_, err = c.Operate(ctx, backstack.Pop[string]{}, domain.ModeImmediate)
	require.NoError(t, err)

	assert.False(t, c.Animating())
	update, ok := c.Timeline().(*keyframes.Update[stackElements])
	require.True(t, ok)
	assert.Len(t, update.History, 3)

	all := b.All()
	require.Len(t, all, 1)
	assert.Equal(t, "X", all[0].Key.Target)
	idle(t, all)
	assert.Equal(t, all, c.Frame().TargetState)
}

func TestComponent_RetargetDropsQueuedSegments(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t)

	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeKeyframe)
	require.NoError(t, err)
	c.SetProgress(ctx, 0.5)
	_, err = c.Operate(ctx, backstack.Push[string]{Target: "Z"}, domain.ModeKeyframe)
	require.NoError(t, err)

	applied, err := c.Retarget(ctx, backstack.Pop[string]{})
	require.NoError(t, err)
	require.True(t, applied)

	kf, ok := c.Timeline().(*keyframes.Keyframes[stackElements])
	require.True(t, ok)
	assert.Equal(t, 2, kf.Len())
	for _, el := range b.All() {
		assert.NotEqual(t, "Z", el.Key.Target)
	}

	c.SetProgress(ctx, kf.MaxProgress())
	all := b.All()
	require.Len(t, all, 1)
	assert.Equal(t, "X", all[0].Key.Target)
	idle(t, all)

	// IDs handed out to dropped segments are never reused.
	require.NoError(t, b.Push(ctx, "W"))
	assert.Equal(t, domain.ID(4), b.All()[0].Key.ID)
}

func TestComponent_RetargetFailureRestoresSource(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t)

	_, err := c.Operate(ctx, backstack.Replace[string]{Target: "Z"}, domain.ModeKeyframe)
	require.NoError(t, err)
	c.SetProgress(ctx, 0.5)
	before := b.All()
	frame := c.Frame()

	// Z is active and nothing is stashed behind it.
	applied, err := c.Retarget(ctx, backstack.Remove[string]{Key: domain.ElementKey{ID: 2}})
	require.Error(t, err)
	assert.False(t, applied)
	assert.True(t, errors.Is(err, domain.ErrPrecondition))
	assert.Equal(t, before, b.All())
	assert.Equal(t, frame, c.Frame())
}

func TestComponent_PreconditionErrorLeavesTimeline(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t)
	before := c.Frame()

	applied, err := c.Operate(ctx, backstack.Remove[string]{Key: domain.ElementKey{ID: 1}}, domain.ModeKeyframe)
	require.Error(t, err)
	assert.False(t, applied)
	assert.Equal(t, before, c.Frame())
	assert.Len(t, b.All(), 1)
}

func TestComponent_InapplicableIsNoOp(t *testing.T) {
	ctx := context.Background()
	_, c := newStack(t)

	applied, err := c.Operate(ctx, backstack.Pop[string]{}, domain.ModeKeyframe)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, c.Animating())
}

func TestComponent_Tick(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t, interaction.WithSegmentDuration(100*time.Millisecond))

	assert.False(t, c.Tick(ctx, time.Second), "settled component does not animate")

	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeKeyframe)
	require.NoError(t, err)

	assert.True(t, c.Tick(ctx, 60*time.Millisecond))
	assert.InDelta(t, 0.6, c.Progress(), 1e-9)
	assert.False(t, c.Tick(ctx, 60*time.Millisecond))
	idle(t, b.All())
}

func TestComponent_Drag(t *testing.T) {
	ctx := context.Background()
	gesture := interaction.DirectionalGesture[stackElements]{
		Axis:     interaction.Horizontal,
		Distance: 100,
		Forward:  backstack.Push[string]{Target: "dragged"},
		Backward: backstack.Pop[string]{},
	}
	b, c := newStack(t, interaction.WithGestureMapper[stackElements](gesture))

	started, err := c.Drag(ctx, interaction.Offset{X: -10})
	require.NoError(t, err)
	assert.False(t, started, "nothing to pop")

	started, err = c.Drag(ctx, interaction.Offset{X: 30})
	require.NoError(t, err)
	assert.True(t, started)
	assert.InDelta(t, 0.3, c.Progress(), 1e-9)

	_, err = c.Drag(ctx, interaction.Offset{X: 30})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, c.Progress(), 1e-9)
	assert.Len(t, b.All(), 2)

	c.DragEnd(ctx)
	assert.False(t, c.Animating())
	assert.Equal(t, "dragged", b.All()[0].Key.Target)
	idle(t, b.All())
}

func TestComponent_DragWithoutMapper(t *testing.T) {
	_, c := newStack(t)
	started, err := c.Drag(context.Background(), interaction.Offset{X: 50})
	require.NoError(t, err)
	assert.False(t, started)
}

func TestComponent_OutputStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, c := newStack(t)

	frames := c.Output().Subscribe(ctx)
	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeKeyframe)
	require.NoError(t, err)
	c.SetProgress(ctx, 1)

	var got []bool
	for i := 0; i < 3; i++ {
		select {
		case f := <-frames:
			got = append(got, f.Animating)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}
	assert.Equal(t, []bool{false, true, false}, got)
}

func TestPlain_Counter(t *testing.T) {
	ctx := context.Background()
	var ops []string
	source := interaction.NewPlain(0, interaction.WithLifecycleHooks(domain.LifecycleHooks{
		OnOperation: func(_ context.Context, ev *domain.OperationEvent) {
			if ev.Applied {
				ops = append(ops, ev.Operation)
			}
		},
	}))
	c := interaction.NewComponent[int](source)

	inc := domain.OperationFunc[int]{
		OpName:     "inc",
		Applicable: func(n int) bool { return n < 2 },
		Apply:      func(n int, _ *domain.IDGenerator) (int, error) { return n + 1, nil },
	}
	for i := 0; i < 3; i++ {
		_, err := c.Operate(ctx, inc, domain.ModeKeyframe)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, source.State())
	assert.Equal(t, []string{"inc", "inc"}, ops)

	frame := c.Frame()
	assert.Equal(t, 0, frame.FromState)
	assert.Equal(t, 1, frame.TargetState)
	assert.Equal(t, 2, frame.Segments)

	c.SetProgress(ctx, 1.5)
	frame = c.Frame()
	assert.Equal(t, 1, frame.FromState)
	assert.Equal(t, 2, frame.TargetState)
	assert.InDelta(t, 0.5, frame.SegmentProgress, 1e-9)
}

func TestComponent_RetargetKeepsPrunedElementsOut(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t)

	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeImmediate)
	require.NoError(t, err)
	_, err = c.Operate(ctx, backstack.Pop[string]{}, domain.ModeKeyframe)
	require.NoError(t, err)
	c.SetProgress(ctx, 0.5)

	// The renderer finishes every transition ahead of the timeline.
	for _, el := range b.Snapshot() {
		b.OnTransitionFinished(ctx, el.Key.Key())
	}
	require.Len(t, b.All(), 1)

	applied, err := c.Retarget(ctx, backstack.Push[string]{Target: "Z"})
	require.NoError(t, err)
	require.True(t, applied)

	all := b.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Z", all[0].Key.Target)
	assert.Equal(t, domain.ID(3), all[0].Key.ID)
	assert.Equal(t, "X", all[1].Key.Target)
	assert.Equal(t, backstack.OnScreen, all[1].FromState)
	assert.Equal(t, backstack.Stashed, all[1].TargetState)
}

func TestComponent_SettleWaitsForLastSegmentTouchingElement(t *testing.T) {
	ctx := context.Background()
	b, c := newStack(t)

	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeImmediate)
	require.NoError(t, err)

	// X goes STASHED->ON_SCREEN, ON_SCREEN->STASHED, STASHED->ON_SCREEN.
	_, err = c.Operate(ctx, backstack.Pop[string]{}, domain.ModeKeyframe)
	require.NoError(t, err)
	_, err = c.Operate(ctx, backstack.Push[string]{Target: "Z"}, domain.ModeKeyframe)
	require.NoError(t, err)
	_, err = c.Operate(ctx, backstack.Pop[string]{}, domain.ModeKeyframe)
	require.NoError(t, err)

	c.SetProgress(ctx, 1)
	x := b.All()[b.All().IndexOf(domain.ElementKey{ID: 1})]
	assert.False(t, x.IsIdle(), "X is still animated by later segments")
	assert.Equal(t, -1, b.All().IndexOf(domain.ElementKey{ID: 2}), "Y finished leaving")

	c.SetProgress(ctx, 3)
	all := b.All()
	require.Len(t, all, 1)
	assert.Equal(t, "X", all[0].Key.Target)
	assert.Equal(t, backstack.OnScreen, all[0].TargetState)
	idle(t, all)
}

func TestComponent_ConcurrentDragsStartOneOperation(t *testing.T) {
	ctx := context.Background()
	inc := domain.OperationFunc[int]{
		OpName: "inc",
		Apply:  func(n int, _ *domain.IDGenerator) (int, error) { return n + 1, nil },
	}
	gesture := interaction.DirectionalGesture[int]{Axis: interaction.Horizontal, Distance: 100, Forward: inc}

	for i := 0; i < 50; i++ {
		source := interaction.NewPlain(0)
		c := interaction.NewComponent[int](source, interaction.WithGestureMapper[int](gesture))

		start := make(chan struct{})
		var wg sync.WaitGroup
		for g := 0; g < 2; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := c.Drag(ctx, interaction.Offset{X: 50})
				assert.NoError(t, err)
			}()
		}
		close(start)
		wg.Wait()

		require.Equal(t, 1, source.State(), "two half drags play one operation")
		assert.False(t, c.Animating())
	}
}

func TestComponent_LoggerSurvivesSettle(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, c := newStack(t, interaction.WithLogger(logger))

	_, err := c.Operate(ctx, backstack.Push[string]{Target: "Y"}, domain.ModeKeyframe)
	require.NoError(t, err)
	c.SetProgress(ctx, 1)
	require.False(t, c.Animating())

	buf.Reset()
	_, err = c.Operate(ctx, backstack.Push[string]{Target: "Z"}, domain.ModeKeyframe)
	require.NoError(t, err)
	c.SetProgress(ctx, 7)
	assert.Contains(t, buf.String(), "progress clamped")
}

package stream_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestValue_LateSubscriberGetsLatest(t *testing.T) {
	v := stream.New(1)
	v.Publish(2)
	v.Publish(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := v.Subscribe(ctx)
	assert.Equal(t, 3, receive(t, ch))

	v.Publish(4)
	assert.Equal(t, 4, receive(t, ch))
	assert.Equal(t, 4, v.Latest())
}

func TestValue_NoDropsInOrder(t *testing.T) {
	v := stream.New(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := v.Subscribe(ctx)

	// Publish faster than the reader consumes.
	for i := 1; i <= 100; i++ {
		v.Publish(i)
	}

	for want := 0; want <= 100; want++ {
		assert.Equal(t, want, receive(t, ch))
	}
}

func TestValue_ConcurrentSubscribersSeeSameOrder(t *testing.T) {
	v := stream.New(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const subs = 5
	chans := make([]<-chan int, subs)
	for i := range chans {
		chans[i] = v.Subscribe(ctx)
	}

	var wg sync.WaitGroup
	results := make([][]int, subs)
	for i := range chans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j <= 20; j++ {
				results[i] = append(results[i], <-chans[i])
			}
		}(i)
	}

	for i := 1; i <= 20; i++ {
		v.Publish(i)
	}
	wg.Wait()

	for i := 1; i < subs; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestValue_CancelClosesChannel(t *testing.T) {
	v := stream.New("a")
	ctx, cancel := context.WithCancel(context.Background())

	ch := v.Subscribe(ctx)
	assert.Equal(t, "a", receive(t, ch))

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return v.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestValue_SubscribeAfterClose(t *testing.T) {
	v := stream.New(1)
	v.Close()

	_, ok := <-v.Subscribe(context.Background())
	assert.False(t, ok)
}

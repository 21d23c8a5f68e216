// Package stream provides a replay-latest broadcast value.
//
// A Value always holds the most recently published item. Subscribers that attach
// late receive that item first and then every subsequent publish, in publish order,
// without drops. Each subscriber has its own unbounded buffer so a slow reader never
// blocks the writer or other readers.
package stream

import (
	"context"
	"sync"
)

// Value is a multi-subscriber, replay-latest broadcast of T.
type Value[T any] struct {
	mu     sync.Mutex
	latest T
	subs   map[uint64]*subscriber[T]
	nextID uint64
	closed bool
}

// New creates a Value seeded with initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		latest: initial,
		subs:   make(map[uint64]*subscriber[T]),
	}
}

// Latest returns the most recently published item.
func (v *Value[T]) Latest() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest
}

// Publish stores item as the latest value and queues it for every subscriber.
// Publishing after Close only updates Latest.
func (v *Value[T]) Publish(item T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.latest = item
	for _, s := range v.subs {
		s.push(item)
	}
}

// Subscribe returns a channel that yields the latest value followed by every later publish.
// The channel is closed when ctx is done or the Value is closed.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	s := &subscriber[T]{
		notify: make(chan struct{}, 1),
		out:    make(chan T),
		done:   make(chan struct{}),
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		close(s.out)
		return s.out
	}
	id := v.nextID
	v.nextID++
	s.push(v.latest)
	v.subs[id] = s
	v.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			v.unsubscribe(id)
		case <-s.done:
		}
	}()
	go s.pump()

	return s.out
}

// Subscribers returns the number of attached subscribers.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Close detaches every subscriber, closing their channels once drained or abandoned.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, s := range v.subs {
		delete(v.subs, id)
		s.stop()
	}
}

func (v *Value[T]) unsubscribe(id uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.subs[id]; ok {
		delete(v.subs, id)
		s.stop()
	}
}

type subscriber[T any] struct {
	mu     sync.Mutex
	queue  []T
	notify chan struct{}
	out    chan T
	done   chan struct{}
	once   sync.Once
}

func (s *subscriber[T]) push(item T) {
	s.mu.Lock()
	s.queue = append(s.queue, item)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber[T]) pop() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if len(s.queue) == 0 {
		return zero, false
	}
	item := s.queue[0]
	s.queue[0] = zero
	s.queue = s.queue[1:]
	return item, true
}

func (s *subscriber[T]) pump() {
	defer close(s.out)
	for {
		item, ok := s.pop()
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- item:
		case <-s.done:
			return
		}
	}
}

// Observable is the read side of a Value.
type Observable[T any] interface {
	Latest() T
	Subscribe(ctx context.Context) <-chan T
}

var _ Observable[int] = (*Value[int])(nil)

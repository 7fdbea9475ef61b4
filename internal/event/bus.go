package event

import (
	"context"
	"sync"
)

// Publisher is the write side of the bus. Services and background tasks hold
// this narrow interface instead of the full bus.
type Publisher interface {
	Publish(ev *Event)
	PublishApp(ev AppEvent)
}

// Bus is an unbounded, ordered event queue. Publish never blocks the caller;
// events are delivered strictly in arrival order. Events published while one
// is being dispatched are appended and handled on a later call, which bounds
// recursion and keeps ordering deterministic.
type Bus struct {
	mu    sync.Mutex
	queue []*Event
	// notify wakes a blocked Next. Capacity 1: a single pending wakeup is
	// enough because Next re-checks the queue under the lock.
	notify chan struct{}
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{notify: make(chan struct{}, 1)}
}

// Publish enqueues an event. Safe for concurrent use.
func (b *Bus) Publish(ev *Event) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// PublishApp enqueues an application event.
func (b *Bus) PublishApp(ev AppEvent) {
	b.Publish(App(ev))
}

// Next removes and returns the oldest event, blocking until one is available
// or the context is cancelled.
func (b *Bus) Next(ctx context.Context) (*Event, error) {
	for {
		if ev, ok := b.TryNext(); ok {
			return ev, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.notify:
		}
	}
}

// TryNext removes and returns the oldest event without blocking.
func (b *Bus) TryNext() (*Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, false
	}
	ev := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return ev, true
}

// Len reports the number of queued events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

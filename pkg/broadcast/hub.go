// Package broadcast provides a small in-process change-notification hub.
//
// Handlers are invoked on a single dispatch goroutine in publish order, so a
// handler that itself triggers further work never re-enters another handler.
package broadcast

import (
	"sync"
)

// defaultQueueSize bounds the pending-event queue; publishers drop events
// rather than block when subscribers fall behind.
const defaultQueueSize = 64

// Hub fans out values of type T to subscribed handlers.
type Hub[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[uint64]func(T)
	queue    chan T
	stop     chan struct{}
	done     chan struct{}
	closed   bool
}

// NewHub creates a hub and starts its dispatch goroutine.
func NewHub[T any]() *Hub[T] {
	h := &Hub[T]{
		handlers: make(map[uint64]func(T)),
		queue:    make(chan T, defaultQueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.dispatch()
	return h
}

// Subscribe registers fn for future events and returns an unsubscribe
// function. Unsubscribing is idempotent.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || fn == nil {
		return func() {}
	}

	h.nextID++
	id := h.nextID
	h.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
		})
	}
}

// Publish queues v for delivery to all current subscribers.
// Events are dropped when the queue is full or the hub is closed.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	select {
	case h.queue <- v:
	default:
	}
}

// Close stops dispatching and releases the goroutine. Pending events are
// delivered before Close returns.
func (h *Hub[T]) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	close(h.stop)
	<-h.done
	return nil
}

func (h *Hub[T]) dispatch() {
	defer close(h.done)
	for {
		select {
		case v := <-h.queue:
			h.deliver(v)
		case <-h.stop:
			// Drain what was queued before Close.
			for {
				select {
				case v := <-h.queue:
					h.deliver(v)
				default:
					return
				}
			}
		}
	}
}

func (h *Hub[T]) deliver(v T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.handlers))
	for _, fn := range h.handlers {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Package broadcast fans values out to subscriber channels without ever
// blocking the publisher. A subscriber whose buffer is full misses the value
// and the miss is counted in its stats.
package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrClosed             = errors.New("broadcast: hub closed")
	ErrSubscriberExists   = errors.New("broadcast: subscriber already exists")
	ErrSubscriberNotFound = errors.New("broadcast: subscriber not found")
)

type Stats struct {
	Sent    uint64
	Dropped uint64
}

type subscriber[T any] struct {
	ch      chan T
	sent    uint64
	dropped uint64
}

type Hub[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber[T]
	latest      *T
	published   uint64
	closed      bool
}

func New[T any]() *Hub[T] {
	return &Hub[T]{
		subscribers: make(map[string]*subscriber[T]),
	}
}

// Subscribe registers id and returns its receive channel. The channel is
// closed by Unsubscribe or Close.
func (h *Hub[T]) Subscribe(id string, buffer int) (<-chan T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}
	if _, exists := h.subscribers[id]; exists {
		return nil, ErrSubscriberExists
	}
	if buffer < 1 {
		buffer = 1
	}

	sub := &subscriber[T]{ch: make(chan T, buffer)}
	h.subscribers[id] = sub
	return sub.ch, nil
}

func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.latest = &v
	atomic.AddUint64(&h.published, 1)

	for _, sub := range h.subscribers {
		select {
		case sub.ch <- v:
			atomic.AddUint64(&sub.sent, 1)
		default:
			atomic.AddUint64(&sub.dropped, 1)
		}
	}
}

// Latest returns the most recently published value.
func (h *Hub[T]) Latest() (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var zero T
	if h.latest == nil {
		return zero, false
	}
	return *h.latest, true
}

func (h *Hub[T]) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, exists := h.subscribers[id]
	if !exists {
		return ErrSubscriberNotFound
	}

	close(sub.ch)
	delete(h.subscribers, id)
	return nil
}

func (h *Hub[T]) Stats(id string) (Stats, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sub, exists := h.subscribers[id]
	if !exists {
		return Stats{}, ErrSubscriberNotFound
	}

	return Stats{
		Sent:    atomic.LoadUint64(&sub.sent),
		Dropped: atomic.LoadUint64(&sub.dropped),
	}, nil
}

func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub[T]) Published() uint64 {
	return atomic.LoadUint64(&h.published)
}

func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, sub := range h.subscribers {
		close(sub.ch)
		delete(h.subscribers, id)
	}
}

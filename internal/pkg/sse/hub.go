// Package sse fans events out to the live streams of each user.
package sse

import (
	"sync"
	"sync/atomic"
)

// Event is one message pushed to a user's streams.
type Event[T any] struct {
	UserID string
	Event  string
	Data   T
}

// Hub keeps the open subscriber channels per user. A slow subscriber misses
// events instead of blocking publishers.
type Hub[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event[T]]struct{}
	buffer      int
	closed      bool
	dropped     atomic.Int64
}

func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = 10
	}
	return &Hub[T]{
		subscribers: make(map[string]map[chan Event[T]]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a stream for userID. The cleanup func is safe to call
// more than once and after Close.
func (h *Hub[T]) Subscribe(userID string) (<-chan Event[T], func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event[T], h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event[T]]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[userID][ch]; !ok {
				return
			}
			delete(h.subscribers[userID], ch)
			close(ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a specific user
func (h *Hub[T]) Publish(userID string, event Event[T]) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// Close ends every stream. Later subscriptions get a closed channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userID, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, userID)
	}
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub[T]) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// TotalSubscribers returns the total number of active subscribers across all users
func (h *Hub[T]) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// Dropped counts events skipped because a subscriber buffer was full.
func (h *Hub[T]) Dropped() int64 {
	return h.dropped.Load()
}

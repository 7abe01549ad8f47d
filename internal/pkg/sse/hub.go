package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	RecipientID string
	Event       string
	Data        interface{}
}

// PublishResult reports how a publish fanned out over a recipient's live connections
type PublishResult struct {
	Subscribers int
	Delivered   int
}

// Dropped reports whether the recipient had live connections but none accepted the event
func (r PublishResult) Dropped() bool {
	return r.Subscribers > 0 && r.Delivered == 0
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	bufferSize  int
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return NewHubWithBuffer(10)
}

// NewHubWithBuffer creates a hub whose subscriber channels hold size events
func NewHubWithBuffer(size int) *Hub {
	if size < 0 {
		size = 0
	}
	return &Hub{
		bufferSize:  size,
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a recipient and returns the event channel and cleanup function
func (h *Hub) Subscribe(recipientID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)

	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan Event]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[recipientID], ch)
			close(ch)
			if len(h.subscribers[recipientID]) == 0 {
				delete(h.subscribers, recipientID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a recipient without blocking.
// Subscribers with a full buffer miss the event.
func (h *Hub) Publish(recipientID string, event Event) PublishResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.subscribers[recipientID]
	result := PublishResult{Subscribers: len(subs)}
	for ch := range subs {
		select {
		case ch <- event:
			result.Delivered++
		default:
		}
	}
	return result
}

// SubscriberCount returns the number of active subscribers for a recipient
func (h *Hub) SubscriberCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[recipientID])
}

// TotalSubscribers returns the total number of active subscribers across all recipients
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

package publisher

import (
	"sync"

	audit "msgbarrier/pkg/platform/audit"
)

// RingBuffer is a bounded, thread-safe queue of pending audit events.
// When full, the oldest event is overwritten so emitters never block.
type RingBuffer struct {
	mu      sync.Mutex
	events  []audit.Event
	head    int // next write position
	tail    int // next read position
	count   int
	dropped int64
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &RingBuffer{events: make([]audit.Event, capacity)}
}

// Enqueue adds an event and reports whether an older one was overwritten.
func (b *RingBuffer) Enqueue(event audit.Event) (overwrote bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.events)
	if b.count == capacity {
		b.tail = (b.tail + 1) % capacity
		b.count--
		b.dropped++
		overwrote = true
	}
	b.events[b.head] = event
	b.head = (b.head + 1) % capacity
	b.count++
	return overwrote
}

// DequeueBatch removes up to n events, oldest first.
func (b *RingBuffer) DequeueBatch(n int) []audit.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 || n <= 0 {
		return nil
	}
	n = min(n, b.count)

	out := make([]audit.Event, n)
	capacity := len(b.events)
	for i := range out {
		out[i] = b.events[b.tail]
		b.events[b.tail] = audit.Event{}
		b.tail = (b.tail + 1) % capacity
	}
	b.count -= n
	return out
}

// Len returns the current number of events in the buffer.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of overwritten events.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

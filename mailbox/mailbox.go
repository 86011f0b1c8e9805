// Package mailbox provides a bounded, non-blocking handoff between a producer goroutine and a
// consumer that drains at its own cadence. When full, the oldest undelivered value is dropped.
package mailbox

import (
	"sync"
	"sync/atomic"
)

// Mailbox is a fixed-capacity FIFO. All methods are safe for concurrent use.
type Mailbox[T any] struct {
	mu      sync.Mutex
	buf     []T
	head    int
	count   int
	dropped atomic.Uint64
}

// New creates a mailbox holding at most capacity values. Capacities below one are raised to one.
func New[T any](capacity int) *Mailbox[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Mailbox[T]{buf: make([]T, capacity)}
}

// Put stores v without blocking. It reports whether an older value was evicted to make room.
func (m *Mailbox[T]) Put(v T) (dropped bool) {
	m.mu.Lock()
	idx := (m.head + m.count) % len(m.buf)
	m.buf[idx] = v
	if m.count == len(m.buf) {
		m.head = (m.head + 1) % len(m.buf)
		dropped = true
	} else {
		m.count++
	}
	m.mu.Unlock()

	if dropped {
		m.dropped.Add(1)
	}
	return dropped
}

// Drain removes and returns every pending value, oldest first.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.count == 0 {
		return nil
	}

	var zero T
	out := make([]T, m.count)
	for i := 0; i < m.count; i++ {
		idx := (m.head + i) % len(m.buf)
		out[i] = m.buf[idx]
		m.buf[idx] = zero
	}
	m.head, m.count = 0, 0
	return out
}

// Len returns the number of pending values.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Dropped returns how many values were evicted unread since creation.
func (m *Mailbox[T]) Dropped() uint64 {
	return m.dropped.Load()
}

package lifecycle

import (
	"context"
	"sync"
)

// DefaultBusBuffer is the event buffer of a Bus.
const DefaultBusBuffer = 64

// Bus is an in-memory Source. The host bridge publishes platform signals
// on it; tests use it to simulate them.
type Bus struct {
	ch   chan Event
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a Bus with the default buffer.
func NewBus() *Bus {
	return &Bus{
		ch:   make(chan Event, DefaultBusBuffer),
		done: make(chan struct{}),
	}
}

// Publish delivers ev, blocking while the buffer is full.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	select {
	case b.ch <- ev:
		return nil
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events implements Source. The channel is never closed.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close stops further publishing.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	return nil
}

// Package events provides a synchronous, generic publish/subscribe bus.
package events

import (
	"sync"

	"github.com/brettbedarf/vshell/internal/util"
)

// Subscription identifies a registered handler
type Subscription uint64

type subscriber[T any] struct {
	id Subscription
	fn func(T)
}

// Bus fans each published value out to every subscriber, synchronously and
// in registration order. Nothing is retained after Publish returns.
type Bus[T any] struct {
	mu          sync.RWMutex
	subscribers []subscriber[T]
	nextID      Subscription
}

// NewBus creates an empty bus
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers fn and returns a handle for Unsubscribe
func (b *Bus[T]) Subscribe(fn func(T)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subscribers = append(b.subscribers, subscriber[T]{id: b.nextID, fn: fn})
	return b.nextID
}

// Unsubscribe removes the handler registered under s. It reports whether
// anything was removed.
func (b *Bus[T]) Unsubscribe(s Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub.id == s {
			// copy-on-write so in-flight publishes keep their snapshot intact
			next := make([]subscriber[T], 0, len(b.subscribers)-1)
			next = append(next, b.subscribers[:i]...)
			b.subscribers = append(next, b.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// Publish invokes every current subscriber with v. Handlers added or removed
// while publishing only affect later calls.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	snapshot := b.subscribers
	b.mu.RUnlock()

	if len(snapshot) == 0 {
		return
	}
	for _, sub := range snapshot {
		b.deliver(sub, v)
	}
}

// deliver isolates a panicking handler so the remaining subscribers still run
func (b *Bus[T]) deliver(sub subscriber[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			logger := util.GetLogger("Bus.Publish")
			logger.Error().Interface("panic", r).Uint64("subscription", uint64(sub.id)).Msg("Subscriber panicked")
		}
	}()
	sub.fn(v)
}

// Count returns the number of subscribers
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

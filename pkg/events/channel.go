package events

import (
	"sync"
	"sync/atomic"
)

type Handler[E any] func(event E)

type subscription[E any] struct {
	handler Handler[E]
	active  atomic.Bool
}

// Channel is a typed publish/subscribe channel.
// Handlers run synchronously on the emitting goroutine, in subscription order.
type Channel[E any] struct {
	lock          sync.Mutex
	subscriptions []*subscription[E]
}

func NewChannel[E any]() *Channel[E] {
	return &Channel[E]{}
}

// Subscribe registers a handler and returns a function that removes it.
// The returned function is safe to call more than once and from inside a handler.
func (c *Channel[E]) Subscribe(handler Handler[E]) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}
	sub := &subscription[E]{handler: handler}
	sub.active.Store(true)

	c.lock.Lock()
	c.subscriptions = append(c.subscriptions, sub)
	c.lock.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		c.lock.Lock()
		defer c.lock.Unlock()
		for i, s := range c.subscriptions {
			if s == sub {
				c.subscriptions = append(c.subscriptions[:i:i], c.subscriptions[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers event to the handlers subscribed when Emit was called.
// A handler removed by an earlier handler during the same Emit is skipped.
func (c *Channel[E]) Emit(event E) {
	c.lock.Lock()
	snapshot := make([]*subscription[E], len(c.subscriptions))
	copy(snapshot, c.subscriptions)
	c.lock.Unlock()

	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		sub.handler(event)
	}
}

// Len returns the number of active subscriptions.
func (c *Channel[E]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.subscriptions)
}

package stoplight

import (
	"context"
	"sync"
)

// A Handoff is a single-value buffer shared by one or more producers and
// consumers. A producer calls Send to make a value available, and a consumer
// calls Recv, or receives from the channel returned by Ready, to take it.
//
// Sending a value to the handoff does not block: If a value is already
// buffered, it is discarded and replaced by the new one. Only the most
// recently-sent value is ever delivered.
//
// Each buffered value is delivered to exactly one consumer. Once a value has
// been consumed, the buffer is empty until the next Send.
type Handoff[T any] struct {
	μ  sync.Mutex // serializes senders
	ch chan T
}

// NewHandoff constructs a new empty handoff.
func NewHandoff[T any]() *Handoff[T] { return &Handoff[T]{ch: make(chan T, 1)} }

// Send buffers v, replacing any value that was buffered but not yet received,
// and reports whether such a value was discarded (true) or the buffer was
// empty (false). Send does not block.
func (h *Handoff[T]) Send(v T) bool {
	h.μ.Lock()
	defer h.μ.Unlock()

	var dropped bool
	select {
	case <-h.ch:
		dropped = true
	default:
	}

	// N.B. Only senders put values into ch, and they hold μ, so after the drain
	// above the buffer has room regardless of what receivers do.
	h.ch <- v
	return dropped
}

// Ready returns a channel that delivers a value when one is available. Once a
// value is received, further reads on the channel block until another value
// is sent.
func (h *Handoff[T]) Ready() <-chan T { return h.ch }

// Recv blocks until a value is available or ctx ends. It returns the value, or
// a zero value and the error that ended ctx.
func (h *Handoff[T]) Recv(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case v := <-h.ch:
		return v, nil
	}
}

package stoplight

import (
	"context"
	"sync"
)

// A Value is a mutable container for a single value of type T that can be
// concurrently accessed by multiple goroutines. A zero Value is ready for use,
// but must not be copied after its first use.
//
// Every call to Set or Update wakes all goroutines blocked in Wait or WaitFor,
// which then re-check their conditions against the new value.
type Value[T any] struct {
	μ     sync.Mutex
	x     T
	ready chan struct{} // closed and cleared by each write; nil until watched
}

// NewValue creates a new Value with the given initial value.
func NewValue[T any](init T) *Value[T] { return &Value[T]{x: init} }

// Set updates the value stored in v to newValue, and wakes any goroutines
// waiting for a change.
func (v *Value[T]) Set(newValue T) {
	v.μ.Lock()
	defer v.μ.Unlock()
	v.setLocked(newValue)
}

// Update replaces the value stored in v with f applied to the current value,
// and reports the old and new values. The read and the write are a single
// atomic step with respect to other methods of v. f must not call methods of v.
func (v *Value[T]) Update(f func(T) T) (old, cur T) {
	v.μ.Lock()
	defer v.μ.Unlock()
	old = v.x
	v.setLocked(f(old))
	return old, v.x
}

func (v *Value[T]) setLocked(newValue T) {
	v.x = newValue
	if v.ready != nil {
		close(v.ready)
		v.ready = nil
	}
}

// Get returns the current value stored in v.
func (v *Value[T]) Get() T {
	v.μ.Lock()
	defer v.μ.Unlock()
	return v.x
}

// Watch returns the current value stored in v together with a channel that is
// closed by the next Set or Update. Both are captured under one lock, so a
// write that happens after Watch returns is never missed.
func (v *Value[T]) Watch() (T, <-chan struct{}) {
	v.μ.Lock()
	defer v.μ.Unlock()
	if v.ready == nil {
		v.ready = make(chan struct{})
	}
	return v.x, v.ready
}

// Wait blocks until v is written, or until ctx ends, and returns the current
// value in v. The flag indicates whether a write occurred (true) or ctx ended
// (false).
//
// If v is not written before ctx ends, Wait returns the value v held when Wait
// was called.
func (v *Value[T]) Wait(ctx context.Context) (T, bool) {
	old, ready := v.Watch()
	select {
	case <-ctx.Done():
		return old, false
	case <-ready:
		return v.Get(), true
	}
}

// WaitFor blocks until pred reports true for the value in v, or until ctx
// ends. If pred already holds, WaitFor returns at once. On success it returns
// the value that satisfied pred and nil; otherwise the last value observed and
// the error that ended ctx.
//
// pred is called without the lock held, and must not retain its argument.
func (v *Value[T]) WaitFor(ctx context.Context, pred func(T) bool) (T, error) {
	return v.waitFor(ctx, nil, nil, pred)
}

// waitFor is WaitFor, but also gives up with doneErr once done is closed.
// A nil done never closes.
func (v *Value[T]) waitFor(ctx context.Context, done <-chan struct{}, doneErr error, pred func(T) bool) (T, error) {
	for {
		cur, ready := v.Watch()
		if pred(cur) {
			return cur, nil
		}
		select {
		case <-ctx.Done():
			return cur, ctx.Err()
		case <-done:
			return cur, doneErr
		case <-ready:
			// Re-check: the value may have changed again before we woke.
		}
	}
}

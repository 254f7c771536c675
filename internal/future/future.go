// Package future provides single-assignment futures for the asynchronous
// forward/backward flow of the graph engine.
//
// A Future resolves exactly once, to either a value or an error, and any
// number of goroutines may await it. Lazy adds a start guard so a deferred
// computation is scheduled at most once no matter how many callers race to
// demand it.
package future

import (
	"context"
	"sync/atomic"
)

// Future is a single-assignment asynchronous result of type T.
// The zero value is not usable; construct via Go, Resolved, Failed, or
// NewPromise.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Await blocks until the future resolves or the context is cancelled.
// Cancellation abandons the wait; it does not cancel the producer. A future
// that has already resolved always returns its result, even on a cancelled
// context.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the future resolves, ignoring caller cancellation.
// For callers that must observe the result once it is known to be imminent,
// such as a final flush that may not be dropped.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done returns a channel closed when the future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Promise is the write side of a Future. Exactly one of Complete or Fail
// must be called, exactly once.
type Promise[T any] struct {
	f       *Future[T]
	settled atomic.Bool
}

// NewPromise creates an unresolved promise/future pair.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{f: newFuture[T]()}
}

// Future returns the read side of the promise.
func (p *Promise[T]) Future() *Future[T] {
	return p.f
}

// Complete resolves the future with a value.
// Panics if the promise was already settled; a future resolves exactly once.
func (p *Promise[T]) Complete(v T) {
	if !p.settled.CompareAndSwap(false, true) {
		panic("future: promise settled twice")
	}
	p.f.value = v
	close(p.f.done)
}

// Fail resolves the future with an error.
// Panics if the promise was already settled.
func (p *Promise[T]) Fail(err error) {
	if !p.settled.CompareAndSwap(false, true) {
		panic("future: promise settled twice")
	}
	p.f.err = err
	close(p.f.done)
}

// Go runs fn on a new goroutine and returns a future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	p := NewPromise[T]()
	go func() {
		v, err := fn()
		if err != nil {
			p.Fail(err)
			return
		}
		p.Complete(v)
	}()
	return p.Future()
}

// Resolved returns an already-resolved future holding v.
func Resolved[T any](v T) *Future[T] {
	p := NewPromise[T]()
	p.Complete(v)
	return p.Future()
}

// Failed returns an already-failed future holding err.
func Failed[T any](err error) *Future[T] {
	p := NewPromise[T]()
	p.Fail(err)
	return p.Future()
}

// Lazy is a deferred computation started at most once, on first demand.
// All callers of Force observe the same future and therefore the same
// resolved value or failure.
type Lazy[T any] struct {
	fn      func() (T, error)
	started atomic.Bool
	f       *Future[T]
}

// NewLazy wraps fn without starting it.
func NewLazy[T any](fn func() (T, error)) *Lazy[T] {
	return &Lazy[T]{fn: fn, f: newFuture[T]()}
}

// Force demands the result, scheduling fn on its own goroutine if no caller
// has done so yet. The compare-and-swap start guard makes the schedule
// exactly-once under concurrent first access.
func (l *Lazy[T]) Force() *Future[T] {
	if l.started.CompareAndSwap(false, true) {
		go func() {
			v, err := l.fn()
			if err != nil {
				l.f.err = err
			} else {
				l.f.value = v
			}
			close(l.f.done)
		}()
	}
	return l.f
}

// Started reports whether the computation has been demanded at least once.
func (l *Lazy[T]) Started() bool {
	return l.started.Load()
}

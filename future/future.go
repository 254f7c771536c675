// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package future provides the public API for the single-assignment futures
// used by the graph engine's asynchronous forward/backward flow.
package future

import (
	"github.com/ember-ml/ember/internal/future"
)

// Future is a single-assignment asynchronous result of type T.
type Future[T any] = future.Future[T]

// Promise is the write side of a Future.
type Promise[T any] = future.Promise[T]

// Lazy is a deferred computation started at most once, on first demand.
type Lazy[T any] = future.Lazy[T]

// NewPromise creates an unresolved promise/future pair.
func NewPromise[T any]() *Promise[T] {
	return future.NewPromise[T]()
}

// Go runs fn on a new goroutine and returns a future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	return future.Go(fn)
}

// Resolved returns an already-resolved future holding v.
func Resolved[T any](v T) *Future[T] {
	return future.Resolved(v)
}

// Failed returns an already-failed future holding err.
func Failed[T any](err error) *Future[T] {
	return future.Failed[T](err)
}

// NewLazy wraps fn without starting it.
func NewLazy[T any](fn func() (T, error)) *Lazy[T] {
	return future.NewLazy(fn)
}

// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for the shared-node primitive: a
// lazily evaluated, memoized forward value shared by any number of
// consumers, whose gradient contributions are accumulated and flushed
// upstream exactly once.
//
// Example:
//
//	node := graph.NewSharedNode(func(ctx context.Context) (*graph.Tape, error) {
//	    return &graph.Tape{Value: value, Sink: acceptGradient}, nil
//	})
//	h := node.Forward()
//	v, err := h.Value(ctx)            // computed once, shared by all handles
//	_ = h.Backward(ctx, contribution) // any number of times
//	_ = h.Release(ctx)                // exactly once; last release flushes
package graph

import (
	hclog "github.com/hashicorp/go-hclog"

	"github.com/ember-ml/ember/internal/graph"
)

// SharedNode turns a single-shot asynchronous computation into a
// multiply-consumable asynchronous value with shared gradient accumulation.
type SharedNode = graph.SharedNode

// Handle is one consumer's reference to a SharedNode.
type Handle = graph.Handle

// Accumulator collects gradient contributions for one evaluation and
// flushes their broadcast-sum upstream exactly once, on release.
type Accumulator = graph.Accumulator

// Tape pairs one forward value with the means to accept a backward gradient
// for that evaluation.
type Tape = graph.Tape

// Sink accepts the final accumulated gradient for one evaluation of a node.
type Sink = graph.Sink

// Computation produces a Tape; it runs at most once per SharedNode.
type Computation = graph.Computation

// FailureSink receives errors from failed individual gradient contributions.
type FailureSink = graph.FailureSink

// Option configures a SharedNode and the accumulator it owns.
type Option = graph.Option

// ErrReleased is the lifecycle violation error: a gradient was contributed
// after release, or release was called more than once. Test with errors.Is.
var ErrReleased = graph.ErrReleased

// NewSharedNode wraps compute without starting it; the computation runs at
// most once, on first demand, no matter how many consumers race to request it.
func NewSharedNode(compute Computation, opts ...Option) *SharedNode {
	return graph.NewSharedNode(compute, opts...)
}

// WithLogger sets the structured logger for flush, lifecycle, and
// contribution-failure events.
func WithLogger(logger hclog.Logger) Option {
	return graph.WithLogger(logger)
}

// WithFailureSink sets the handler for failed gradient contributions.
func WithFailureSink(sink FailureSink) Option {
	return graph.WithFailureSink(sink)
}

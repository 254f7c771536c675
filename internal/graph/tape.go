// Package graph implements the shared-node primitive of the computation
// graph: a lazily evaluated, memoized forward value that any number of
// consumers can share, with their gradient contributions accumulated and
// flushed upstream exactly once.
//
// In a diamond-shaped graph two or more downstream paths reconverge on the
// same ancestor. The ancestor's forward value must be computed once, and the
// gradients flowing back along each path must be summed before the ancestor
// sees them. SharedNode handles the former, Accumulator the latter.
package graph

import (
	"context"

	"github.com/ember-ml/ember/internal/tensor"
)

// Sink accepts the final accumulated gradient for one evaluation of a node.
// It is invoked at most once per evaluation, when the node's accumulator is
// released with at least one contribution.
type Sink func(ctx context.Context, grad *tensor.Dense) error

// Tape pairs one forward value with the means to accept a backward gradient
// for that evaluation.
type Tape struct {
	Value *tensor.Dense
	Sink  Sink
}

// Computation produces a Tape. It runs at most once per SharedNode,
// detached from any single consumer's context.
type Computation func(ctx context.Context) (*Tape, error)

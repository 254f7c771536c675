// Package ops implements a small differentiable operator layer on top of the
// shared-node primitive. Every operator node is a SharedNode, so diamond
// dependencies (the same input feeding several operators) evaluate the input
// once and accumulate all gradient paths into it before its own backward
// sink runs.
package ops

import (
	"context"

	"github.com/ember-ml/ember/internal/future"
	"github.com/ember-ml/ember/internal/graph"
	"github.com/ember-ml/ember/internal/tensor"
)

// Node is one operator in a differentiable graph.
type Node struct {
	shared *graph.SharedNode
}

func newNode(compute graph.Computation, opts ...graph.Option) *Node {
	return &Node{shared: graph.NewSharedNode(compute, opts...)}
}

// Forward registers a consumer on this node. Used by downstream operators;
// most callers want Backprop instead.
func (n *Node) Forward() *graph.Handle {
	return n.shared.Forward()
}

// Backprop evaluates root and drives one full backward pass through the
// graph, seeding the root with a ones gradient of the output shape. Returns
// the forward value. Leaf gradients are available on the Variables afterwards.
func Backprop(ctx context.Context, root *Node) (*tensor.Dense, error) {
	h := root.Forward()
	value, err := h.Value(ctx)
	if err != nil {
		// Failed forward: releasing is still required to balance Forward.
		_ = h.Release(ctx)
		return nil, err
	}
	if err := h.Backward(ctx, future.Resolved(tensor.Ones(value.Shape()))); err != nil {
		_ = h.Release(ctx)
		return nil, err
	}
	if err := h.Release(ctx); err != nil {
		return nil, err
	}
	return value, nil
}

// releaseAll releases every handle, best-effort, returning the first error.
// Handles must always be released, even on failed backward paths, so upstream
// accumulators reach their terminal state.
func releaseAll(ctx context.Context, handles ...*graph.Handle) error {
	var first error
	for _, h := range handles {
		if err := h.Release(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// binary builds an operator node over two inputs. forward computes the output
// value; backward maps the incoming gradient to one gradient per input,
// already reduced to the input shapes. The input handles are released when
// this node's accumulated gradient flushes, cascading the release upstream.
func binary(
	x, y *Node,
	forward func(a, b *tensor.Dense) (*tensor.Dense, error),
	backward func(grad, a, b *tensor.Dense) (ga, gb *tensor.Dense, err error),
	opts ...graph.Option,
) *Node {
	return newNode(func(ctx context.Context) (*graph.Tape, error) {
		hx := x.Forward()
		hy := y.Forward()

		a, err := hx.Value(ctx)
		if err != nil {
			_ = releaseAll(ctx, hx, hy)
			return nil, err
		}
		b, err := hy.Value(ctx)
		if err != nil {
			_ = releaseAll(ctx, hx, hy)
			return nil, err
		}
		out, err := forward(a, b)
		if err != nil {
			_ = releaseAll(ctx, hx, hy)
			return nil, err
		}

		sink := func(ctx context.Context, grad *tensor.Dense) error {
			ga, gb, err := backward(grad, a, b)
			if err != nil {
				_ = releaseAll(ctx, hx, hy)
				return err
			}
			if err := hx.Backward(ctx, future.Resolved(ga)); err != nil {
				_ = releaseAll(ctx, hx, hy)
				return err
			}
			if err := hy.Backward(ctx, future.Resolved(gb)); err != nil {
				_ = releaseAll(ctx, hx, hy)
				return err
			}
			return releaseAll(ctx, hx, hy)
		}
		return &graph.Tape{Value: out, Sink: sink}, nil
	}, opts...)
}

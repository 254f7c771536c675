// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the public differentiable operator API built on the
// shared-node primitive. Diamond-shaped graphs — the same input feeding
// several operators — evaluate the input once and accumulate every gradient
// path into it.
//
// Example:
//
//	x := ops.NewVariable(v)
//	y := ops.Add(ops.Mul(x.Node(), x.Node()), x.Node()) // y = x·x + x
//	out, err := ops.Backprop(ctx, y)
//	grad := x.Grad() // 2x + 1
package ops

import (
	"context"

	"github.com/ember-ml/ember/graph"
	"github.com/ember-ml/ember/internal/ops"
	"github.com/ember-ml/ember/tensor"
)

// Node is one operator in a differentiable graph.
type Node = ops.Node

// Variable is a leaf node holding a constant forward value; its accumulated
// gradient is readable via Grad after a backward pass.
type Variable = ops.Variable

// NewVariable creates a leaf node for value.
func NewVariable(value *tensor.Dense, opts ...graph.Option) *Variable {
	return ops.NewVariable(value, opts...)
}

// Add returns the broadcast-aware elementwise sum of two nodes.
func Add(x, y *Node, opts ...graph.Option) *Node {
	return ops.Add(x, y, opts...)
}

// Mul returns the broadcast-aware elementwise product of two nodes.
func Mul(x, y *Node, opts ...graph.Option) *Node {
	return ops.Mul(x, y, opts...)
}

// Backprop evaluates root and drives one full backward pass through the
// graph, seeding the root with a ones gradient. Returns the forward value.
func Backprop(ctx context.Context, root *Node) (*tensor.Dense, error) {
	return ops.Backprop(ctx, root)
}

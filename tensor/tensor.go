// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor values in the Ember
// graph engine.
//
// Tensors are immutable dense float64 arrays with NumPy-style broadcasting:
//
//	a, _ := tensor.FromSlice([]float64{1, 2}, tensor.Shape{1, 2})
//	b := tensor.Ones(tensor.Shape{3, 1})
//	c, _ := tensor.Add(a, b) // Shape [3, 2]
package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Dense is an immutable dense float64 tensor.
type Dense = tensor.Dense

// Creation functions

// FromSlice creates a tensor from a slice of values in row-major order.
// The slice is copied.
func FromSlice(data []float64, shape Shape) (*Dense, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Dense {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Dense {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Dense {
	return tensor.Full(shape, value)
}

// Zero returns the canonical zero tensor of shape [1, 1]. All calls return
// the same instance, so it is distinguishable by identity from any tensor a
// caller constructs; see IsZero.
func Zero() *Dense {
	return tensor.Zero()
}

// IsZero reports whether t is the canonical zero tensor instance.
func IsZero(t *Dense) bool {
	return tensor.IsZero(t)
}

// Arithmetic

// Add returns the broadcast-aware elementwise sum of a and b.
func Add(a, b *Dense) (*Dense, error) {
	return tensor.Add(a, b)
}

// Mul returns the broadcast-aware elementwise product of a and b.
func Mul(a, b *Dense) (*Dense, error) {
	return tensor.Mul(a, b)
}

// SumTo reduces t to the given shape by summing along broadcast dimensions,
// the adjoint of broadcasting.
func SumTo(t *Dense, shape Shape) (*Dense, error) {
	return tensor.SumTo(t, shape)
}

// Broadcast resolves the broadcast shape of a and b following NumPy
// broadcasting rules: per dimension, equal sizes pass through and a size of
// 1 on either side yields the other side's size.
func Broadcast(a, b Shape) (Shape, error) {
	return tensor.Broadcast(a, b)
}

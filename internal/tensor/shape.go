// Package tensor provides the immutable dense tensor type and the
// broadcast-aware elementwise arithmetic used by the graph engine.
package tensor

import (
	"github.com/pkg/errors"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape is non-empty and all dimensions are > 0.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return errors.New("shape must have at least one dimension")
	}
	for i, dim := range s {
		if dim <= 0 {
			return errors.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Strides calculates row-major strides for the shape:
// stride[i] = product of all dimensions after i.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Broadcast resolves the broadcast shape of a and b under NumPy rules:
// compare dimensions right to left; equal sizes pass through, a size of 1 on
// either side yields the other side's size, and any other mismatch is an
// error. Missing leading dimensions are treated as 1.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5)
//	(1, 1) + (2, 2) → (2, 2)
//	(3, 4) + (3, 5) → error
func Broadcast(a, b Shape) (Shape, error) {
	n := max(len(a), len(b))
	result := make(Shape, n)

	for i := 0; i < n; i++ {
		ad, bd := 1, 1
		if idx := len(a) - 1 - i; idx >= 0 {
			ad = a[idx]
		}
		if idx := len(b) - 1 - i; idx >= 0 {
			bd = b[idx]
		}

		switch {
		case ad == bd:
			result[n-1-i] = ad
		case ad == 1:
			result[n-1-i] = bd
		case bd == 1:
			result[n-1-i] = ad
		default:
			return nil, errors.Errorf(
				"shapes not broadcast-compatible: %v vs %v (dimension %d: %d vs %d)",
				a, b, n-1-i, ad, bd)
		}
	}
	return result, nil
}

// broadcastStrides computes the strides for reading a tensor of shape in as
// if it had shape out. Broadcast dimensions (size 1, or missing on the left)
// get stride 0 so the single element is reused across that dimension.
func broadcastStrides(in, out Shape) []int {
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	orig := in.Strides()

	for i := range out {
		idx := i - offset
		switch {
		case idx < 0:
			strides[i] = 0
		case in[idx] == 1:
			strides[i] = 0
		default:
			strides[i] = orig[idx]
		}
	}
	return strides
}

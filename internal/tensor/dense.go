package tensor

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Dense is an immutable dense float64 tensor.
//
// Immutability is by convention: constructors copy their input and no method
// mutates data after construction, so a Dense can be shared freely across
// goroutines without synchronization.
type Dense struct {
	data    []float64
	shape   Shape
	strides []int
}

// FromSlice creates a tensor from a slice of values. The slice is copied;
// callers may reuse it afterwards.
func FromSlice(data []float64, shape Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	if len(data) != shape.NumElements() {
		return nil, errors.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &Dense{data: d, shape: shape.Clone(), strides: shape.Strides()}, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Dense {
	if err := shape.Validate(); err != nil {
		panic(err) // Static shapes in callers should never be invalid.
	}
	return &Dense{
		data:    make([]float64, shape.NumElements()),
		shape:   shape.Clone(),
		strides: shape.Strides(),
	}
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Dense {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Dense {
	return Full(shape, 1)
}

// Shape returns the tensor's shape. The returned slice must not be modified.
func (t *Dense) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Dense) NumElements() int {
	return len(t.data)
}

// Data returns the underlying storage in row-major order.
// WARNING: the slice is the tensor's own storage; treat it as read-only.
func (t *Dense) Data() []float64 {
	return t.data
}

// At returns the element at the given multi-dimensional index.
func (t *Dense) At(index ...int) float64 {
	if len(index) != len(t.shape) {
		panic(fmt.Sprintf("index rank %d does not match tensor rank %d", len(index), len(t.shape)))
	}
	flat := 0
	for i, idx := range index {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		flat += idx * t.strides[i]
	}
	return t.data[flat]
}

// Equal reports whether two tensors have the same shape and identical values.
func (t *Dense) Equal(other *Dense) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// String renders the tensor for debugging, e.g. "Dense[2 2]{1, 2, 3, 4}".
func (t *Dense) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dense%v{", []int(t.shape))
	for i, v := range t.data {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g", v)
	}
	b.WriteString("}")
	return b.String()
}

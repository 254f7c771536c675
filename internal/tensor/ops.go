package tensor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/ember-ml/ember/internal/parallel"
)

// kernelConfig controls chunking for elementwise kernels on large tensors.
var kernelConfig = parallel.DefaultConfig()

// Add returns the broadcast-aware elementwise sum of a and b.
// Returns an error if the shapes are not broadcast-compatible.
func Add(a, b *Dense) (*Dense, error) {
	return binaryOp(a, b, floats.Add, func(x, y float64) float64 { return x + y })
}

// Mul returns the broadcast-aware elementwise product of a and b.
// Returns an error if the shapes are not broadcast-compatible.
func Mul(a, b *Dense) (*Dense, error) {
	return binaryOp(a, b, floats.Mul, func(x, y float64) float64 { return x * y })
}

// binaryOp applies an elementwise binary operation with broadcasting.
// fast is a vectorized dst-op-src kernel used when no broadcasting is needed;
// slow is the scalar fallback for the strided broadcast walk.
func binaryOp(a, b *Dense, fast func(dst, src []float64), slow func(x, y float64) float64) (*Dense, error) {
	outShape, err := Broadcast(a.shape, b.shape)
	if err != nil {
		return nil, err
	}

	if a.shape.Equal(b.shape) {
		out := make([]float64, len(a.data))
		copy(out, a.data)
		fast(out, b.data)
		return &Dense{data: out, shape: outShape, strides: outShape.Strides()}, nil
	}

	n := outShape.NumElements()
	out := make([]float64, n)
	outStrides := outShape.Strides()
	aStrides := broadcastStrides(a.shape, outShape)
	bStrides := broadcastStrides(b.shape, outShape)

	parallel.ForRange(n, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = slow(a.data[flatIndex(i, outStrides, aStrides)],
				b.data[flatIndex(i, outStrides, bStrides)])
		}
	}, kernelConfig)

	return &Dense{data: out, shape: outShape, strides: outStrides}, nil
}

// SumTo reduces t to the given shape by summing along the dimensions that
// were expanded by broadcasting. It is the adjoint of broadcasting: if shape
// broadcasts to t's shape in the forward pass, SumTo carries the gradient
// back. Returns t unchanged when the shapes already match.
func SumTo(t *Dense, shape Shape) (*Dense, error) {
	if t.shape.Equal(shape) {
		return t, nil
	}
	expanded, err := Broadcast(shape, t.shape)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot reduce %v to %v", t.shape, shape)
	}
	if !expanded.Equal(t.shape) {
		return nil, errors.Errorf("cannot reduce %v to %v: target does not broadcast to source", t.shape, shape)
	}

	out := Zeros(shape)
	srcStrides := t.shape.Strides()
	dstStrides := broadcastStrides(shape, t.shape)
	for i, v := range t.data {
		out.data[flatIndex(i, srcStrides, dstStrides)] += v
	}
	return out, nil
}

// flatIndex maps a flat output index to the flat index in a (possibly
// broadcast) source, by decomposing outIdx along outStrides and recomposing
// along inStrides.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	flat := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flat += coord * inStrides[i]
	}
	return flat
}

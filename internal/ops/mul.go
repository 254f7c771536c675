package ops

import (
	"github.com/ember-ml/ember/internal/graph"
	"github.com/ember-ml/ember/internal/tensor"
)

// Mul returns the broadcast-aware elementwise product of two nodes.
//
// Backward: d(a·b)/da = b and d(a·b)/db = a, so each input receives the
// incoming gradient scaled by the other operand, reduced along any broadcast
// dimensions to match the input shapes.
func Mul(x, y *Node, opts ...graph.Option) *Node {
	return binary(x, y, tensor.Mul,
		func(grad, a, b *tensor.Dense) (*tensor.Dense, *tensor.Dense, error) {
			scaledA, err := tensor.Mul(grad, b)
			if err != nil {
				return nil, nil, err
			}
			ga, err := tensor.SumTo(scaledA, a.Shape())
			if err != nil {
				return nil, nil, err
			}
			scaledB, err := tensor.Mul(grad, a)
			if err != nil {
				return nil, nil, err
			}
			gb, err := tensor.SumTo(scaledB, b.Shape())
			if err != nil {
				return nil, nil, err
			}
			return ga, gb, nil
		}, opts...)
}

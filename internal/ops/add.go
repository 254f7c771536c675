package ops

import (
	"github.com/ember-ml/ember/internal/graph"
	"github.com/ember-ml/ember/internal/tensor"
)

// Add returns the broadcast-aware elementwise sum of two nodes.
//
// Backward: d(a+b)/da = d(a+b)/db = 1, so the incoming gradient flows to both
// inputs, reduced along any broadcast dimensions to match the input shapes.
func Add(x, y *Node, opts ...graph.Option) *Node {
	return binary(x, y, tensor.Add,
		func(grad, a, b *tensor.Dense) (*tensor.Dense, *tensor.Dense, error) {
			ga, err := tensor.SumTo(grad, a.Shape())
			if err != nil {
				return nil, nil, err
			}
			gb, err := tensor.SumTo(grad, b.Shape())
			if err != nil {
				return nil, nil, err
			}
			return ga, gb, nil
		}, opts...)
}

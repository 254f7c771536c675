package ops

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/graph"
	"github.com/ember-ml/ember/internal/tensor"
)

// Variable is a leaf node holding a constant forward value. Its backward sink
// captures the accumulated gradient flushed by the shared node, which is then
// readable via Grad.
type Variable struct {
	node *Node

	mu   sync.Mutex
	grad *tensor.Dense
}

// NewVariable creates a leaf node for value.
func NewVariable(value *tensor.Dense, opts ...graph.Option) *Variable {
	v := &Variable{}
	v.node = newNode(func(context.Context) (*graph.Tape, error) {
		return &graph.Tape{Value: value, Sink: v.storeGrad}, nil
	}, opts...)
	return v
}

// Node returns the graph node for this variable, for wiring into operators.
func (v *Variable) Node() *Node {
	return v.node
}

// Grad returns the gradient accumulated by the last backward pass, or nil if
// no gradient has been flushed.
func (v *Variable) Grad() *tensor.Dense {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grad
}

func (v *Variable) storeGrad(_ context.Context, grad *tensor.Dense) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.grad == nil {
		v.grad = grad
		return nil
	}
	sum, err := tensor.Add(v.grad, grad)
	if err != nil {
		return errors.Wrap(err, "accumulate variable gradient")
	}
	v.grad = sum
	return nil
}

// Copyright 2026 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops_test

import (
	"context"
	"testing"

	"github.com/ember-ml/ember/ops"
	"github.com/ember-ml/ember/tensor"
)

// TestPublicAPI_Diamond verifies the public facade end to end on the diamond
// graph y = x·x + x.
func TestPublicAPI_Diamond(t *testing.T) {
	input, err := tensor.FromSlice([]float64{3}, tensor.Shape{1, 1})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	x := ops.NewVariable(input)
	y := ops.Add(ops.Mul(x.Node(), x.Node()), x.Node())

	value, err := ops.Backprop(context.Background(), y)
	if err != nil {
		t.Fatalf("Backprop failed: %v", err)
	}

	if got := value.At(0, 0); got != 12 {
		t.Errorf("forward value = %g, want 12", got)
	}
	if grad := x.Grad(); grad == nil || grad.At(0, 0) != 7 {
		t.Errorf("dy/dx = %v, want [[7]]", grad)
	}
}

package tensor

// zero is the canonical "no contribution" tensor: shape [1, 1], value 0.
// It broadcasts against any 2D shape without changing the other operand.
var zero = Zeros(Shape{1, 1})

// Zero returns the canonical zero tensor. All calls return the same instance,
// so it is distinguishable by identity from any tensor a caller constructs.
func Zero() *Dense {
	return zero
}

// IsZero reports whether t is the canonical zero tensor instance.
// It does not inspect values; a freshly built [1,1] zero tensor is not Zero.
func IsZero(t *Dense) bool {
	return t == zero
}

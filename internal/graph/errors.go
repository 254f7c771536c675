package graph

import "github.com/pkg/errors"

// ErrReleased is the lifecycle violation error: a gradient was contributed to
// an accumulator after its release, or release was called more than once.
// This indicates a reference-counting bug in the surrounding graph, not a
// transient condition; callers must not retry.
var ErrReleased = errors.New("graph: accumulator already released")

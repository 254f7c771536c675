package graph

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/future"
	"github.com/ember-ml/ember/internal/tensor"
)

// evaluation is the memoized result of a node's forward computation: the
// Tape plus the single Accumulator all consumers share.
type evaluation struct {
	tape *Tape
	acc  *Accumulator
}

// SharedNode turns a single-shot asynchronous computation into a
// multiply-consumable asynchronous value.
//
// The inner computation runs at most once, lazily, on first demand; every
// consumer observes the same Tape and contributes gradients to the same
// Accumulator. If the computation fails, every consumer observes the same
// failure and no accumulator exists.
type SharedNode struct {
	lazy *future.Lazy[*evaluation]
	refs atomic.Int64
}

// NewSharedNode wraps compute without starting it.
func NewSharedNode(compute Computation, opts ...Option) *SharedNode {
	o := buildOptions(opts)
	n := &SharedNode{}
	n.lazy = future.NewLazy(func() (*evaluation, error) {
		// Detached from consumer contexts: the value is owned collectively,
		// so no single consumer's cancellation may abort it.
		tape, err := compute(context.Background())
		if err != nil {
			return nil, err
		}
		return &evaluation{tape: tape, acc: newAccumulator(tape.Sink, o)}, nil
	})
	return n
}

// Forward registers a new consumer and returns its handle. The underlying
// computation starts when the first handle demands the value, not here.
//
// Every handle must be released exactly once; the last release flushes the
// accumulated gradient upstream. All Forward calls must happen before the
// last release.
func (n *SharedNode) Forward() *Handle {
	n.refs.Add(1)
	return &Handle{node: n}
}

// Handle is one consumer's reference to a SharedNode.
type Handle struct {
	node     *SharedNode
	released atomic.Bool
}

// Value demands the node's forward value, computing it if this is the first
// demand and otherwise awaiting or returning the memoized result.
func (h *Handle) Value(ctx context.Context) (*tensor.Dense, error) {
	ev, err := h.node.lazy.Force().Await(ctx)
	if err != nil {
		return nil, err
	}
	return ev.tape.Value, nil
}

// Backward contributes one gradient to the node's shared accumulator.
// May be called zero or more times before Release. For a node whose forward
// computation failed there is no backward flow; the shared forward failure
// is returned.
func (h *Handle) Backward(ctx context.Context, contribution *future.Future[*tensor.Dense]) error {
	if h.released.Load() {
		return errors.Wrap(ErrReleased, "backward on released handle")
	}
	ev, err := h.node.lazy.Force().Await(ctx)
	if err != nil {
		// The caller giving up is not a node failure; report it as such.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return errors.Wrap(err, "backward: awaiting forward value")
		}
		return errors.Wrap(err, "backward on failed node")
	}
	return ev.acc.Backward(ctx, contribution)
}

// Release ends this consumer's use of the shared value. The last release
// releases the accumulator, flushing the accumulated gradient upstream; its
// result is the result of that flush. Releasing a handle twice returns
// ErrReleased.
func (h *Handle) Release(ctx context.Context) error {
	if !h.released.CompareAndSwap(false, true) {
		return errors.Wrap(ErrReleased, "handle released twice")
	}
	if remaining := h.node.refs.Add(-1); remaining > 0 {
		return nil
	}
	if !h.node.lazy.Started() {
		// No consumer ever demanded the value; there is nothing to flush.
		return nil
	}
	// The value was demanded, so the result is imminent. Await it without the
	// caller's context: a cancelled last consumer must not drop the flush.
	ev, err := h.node.lazy.Force().Result()
	if err != nil {
		// Failed forward: no accumulator was constructed.
		return nil
	}
	return ev.acc.Release(ctx)
}

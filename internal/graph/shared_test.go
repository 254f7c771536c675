package graph_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ember-ml/ember/internal/future"
	"github.com/ember-ml/ember/internal/graph"
	"github.com/ember-ml/ember/internal/tensor"
)

// countingSink records flushes and how many times it was called.
type countingSink struct {
	mu      sync.Mutex
	flushed *tensor.Dense
	calls   int
}

func (s *countingSink) sink(_ context.Context, grad *tensor.Dense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = grad
	s.calls++
	return nil
}

func constNode(value *tensor.Dense, sink graph.Sink, runs *atomic.Int32, opts ...graph.Option) *graph.SharedNode {
	return graph.NewSharedNode(func(context.Context) (*graph.Tape, error) {
		if runs != nil {
			runs.Add(1)
		}
		return &graph.Tape{Value: value, Sink: sink}, nil
	}, opts...)
}

func TestSharedNode_MemoizesForward(t *testing.T) {
	ctx := context.Background()
	value := tensor.Ones(tensor.Shape{2, 2})
	sink := &countingSink{}

	var runs atomic.Int32
	node := constNode(value, sink.sink, &runs)

	const consumers = 16
	handles := make([]*graph.Handle, consumers)
	for i := range handles {
		handles[i] = node.Forward()
	}

	var g errgroup.Group
	for _, h := range handles {
		g.Go(func() error {
			v, err := h.Value(ctx)
			if err != nil {
				return err
			}
			if v != value {
				return errors.New("consumers observed different Tape values")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), runs.Load(), "inner computation must run exactly once")

	for _, h := range handles {
		require.NoError(t, h.Release(ctx))
	}
}

func TestSharedNode_LazyStart(t *testing.T) {
	var runs atomic.Int32
	node := constNode(tensor.Ones(tensor.Shape{1, 1}), nil, &runs)

	h := node.Forward()
	require.Zero(t, runs.Load(), "Forward must not start the computation")

	_, err := h.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), runs.Load())
	require.NoError(t, h.Release(context.Background()))
}

func TestSharedNode_ReleaseWithoutDemand(t *testing.T) {
	var runs atomic.Int32
	sink := &countingSink{}
	node := constNode(tensor.Ones(tensor.Shape{1, 1}), sink.sink, &runs)

	h := node.Forward()
	require.NoError(t, h.Release(context.Background()))
	require.Zero(t, runs.Load(), "releasing an undemanded node must not start it")
	require.Zero(t, sink.calls)
}

func TestSharedNode_SharedFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("forward failed")
	node := graph.NewSharedNode(func(context.Context) (*graph.Tape, error) {
		return nil, boom
	})

	h1 := node.Forward()
	h2 := node.Forward()

	_, err := h1.Value(ctx)
	require.ErrorIs(t, err, boom)
	_, err = h2.Value(ctx)
	require.ErrorIs(t, err, boom)

	// No backward flow for a failed node.
	err = h1.Backward(ctx, future.Resolved(tensor.Ones(tensor.Shape{1, 1})))
	require.ErrorIs(t, err, boom)

	// Releases complete without a flush; there is no accumulator.
	require.NoError(t, h1.Release(ctx))
	require.NoError(t, h2.Release(ctx))
}

func TestSharedNode_DiamondScenario(t *testing.T) {
	// Forward value of shape [2,2]; three consumers contribute
	// [[1,1],[1,1]], [[1]] (broadcast), and nothing. The flushed sum must be
	// [[2,2],[2,2]], delivered only after the last release.
	ctx := context.Background()
	sink := &countingSink{}
	node := constNode(tensor.Ones(tensor.Shape{2, 2}), sink.sink, nil)

	ha := node.Forward()
	hb := node.Forward()
	hc := node.Forward()

	for _, h := range []*graph.Handle{ha, hb, hc} {
		_, err := h.Value(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, ha.Backward(ctx, future.Resolved(tensor.Ones(tensor.Shape{2, 2}))))
	one, err := tensor.FromSlice([]float64{1}, tensor.Shape{1, 1})
	require.NoError(t, err)
	require.NoError(t, hb.Backward(ctx, future.Resolved(one)))

	require.NoError(t, ha.Release(ctx))
	require.NoError(t, hb.Release(ctx))
	require.Zero(t, sink.calls, "flush must wait for the last consumer")

	require.NoError(t, hc.Release(ctx))
	require.Equal(t, 1, sink.calls)
	want := tensor.Full(tensor.Shape{2, 2}, 2)
	require.True(t, sink.flushed.Equal(want), "flushed %v, want %v", sink.flushed, want)
}

func TestSharedNode_HandleDoubleRelease(t *testing.T) {
	ctx := context.Background()
	node := constNode(tensor.Ones(tensor.Shape{1, 1}), nil, nil)

	h := node.Forward()
	h2 := node.Forward()
	require.NoError(t, h.Release(ctx))
	require.ErrorIs(t, h.Release(ctx), graph.ErrReleased)

	// The double release did not steal h2's reference.
	_, err := h2.Value(ctx)
	require.NoError(t, err)
	require.NoError(t, h2.Release(ctx))
}

func TestSharedNode_BackwardAfterHandleRelease(t *testing.T) {
	ctx := context.Background()
	sink := &countingSink{}
	node := constNode(tensor.Ones(tensor.Shape{1, 1}), sink.sink, nil)

	h := node.Forward()
	_, err := h.Value(ctx)
	require.NoError(t, err)
	require.NoError(t, h.Backward(ctx, future.Resolved(tensor.Ones(tensor.Shape{1, 1}))))
	require.NoError(t, h.Release(ctx))

	err = h.Backward(ctx, future.Resolved(tensor.Ones(tensor.Shape{1, 1})))
	require.ErrorIs(t, err, graph.ErrReleased)
	require.Equal(t, 1, sink.calls)
}

func TestSharedNode_ConcurrentConsumers(t *testing.T) {
	// Full concurrent lifecycle: every consumer awaits the value, contributes
	// asynchronously, and releases. Exactly one flush with the exact sum.
	ctx := context.Background()
	sink := &countingSink{}
	node := constNode(tensor.Ones(tensor.Shape{4, 4}), sink.sink, nil)

	const consumers = 32
	handles := make([]*graph.Handle, consumers)
	for i := range handles {
		handles[i] = node.Forward()
	}

	var g errgroup.Group
	for _, h := range handles {
		g.Go(func() error {
			if _, err := h.Value(ctx); err != nil {
				return err
			}
			contribution := future.Go(func() (*tensor.Dense, error) {
				return tensor.Ones(tensor.Shape{4, 4}), nil
			})
			if err := h.Backward(ctx, contribution); err != nil {
				return err
			}
			return h.Release(ctx)
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, 1, sink.calls)
	want := tensor.Full(tensor.Shape{4, 4}, consumers)
	require.True(t, sink.flushed.Equal(want), "flushed %v, want %v", sink.flushed, want)
}

func TestSharedNode_ReleaseWithCancelledContext(t *testing.T) {
	// A cancelled last consumer must not drop the flush: the value was
	// computed and a gradient contributed, so release still delivers the
	// accumulated sum upstream.
	sink := &countingSink{}
	node := constNode(tensor.Ones(tensor.Shape{2, 2}), sink.sink, nil)

	h := node.Forward()
	_, err := h.Value(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.Backward(context.Background(), future.Resolved(tensor.Ones(tensor.Shape{2, 2}))))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Release(cancelled))

	require.Equal(t, 1, sink.calls, "flush must happen despite the cancelled caller context")
	require.True(t, sink.flushed.Equal(tensor.Ones(tensor.Shape{2, 2})))
}

func TestSharedNode_BackwardCancelledIsNotNodeFailure(t *testing.T) {
	// A caller abandoning the wait for a still-running forward gets its own
	// context error, and the node stays fully usable for other consumers.
	gate := make(chan struct{})
	sink := &countingSink{}
	node := graph.NewSharedNode(func(context.Context) (*graph.Tape, error) {
		<-gate
		return &graph.Tape{Value: tensor.Ones(tensor.Shape{1, 1}), Sink: sink.sink}, nil
	})

	h := node.Forward()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Backward(cancelled, future.Resolved(tensor.Ones(tensor.Shape{1, 1})))
	require.ErrorIs(t, err, context.Canceled)

	close(gate)
	ctx := context.Background()
	require.NoError(t, h.Backward(ctx, future.Resolved(tensor.Ones(tensor.Shape{1, 1}))))
	require.NoError(t, h.Release(ctx))
	require.Equal(t, 1, sink.calls)
}

func TestSharedNode_FailureSinkOption(t *testing.T) {
	ctx := context.Background()
	sink := &countingSink{}

	var mu sync.Mutex
	var reported []error
	node := constNode(tensor.Ones(tensor.Shape{1, 1}), sink.sink, nil,
		graph.WithFailureSink(func(err error) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, err)
		}))

	h := node.Forward()
	_, err := h.Value(ctx)
	require.NoError(t, err)

	boom := errors.New("bad branch")
	require.NoError(t, h.Backward(ctx, future.Failed[*tensor.Dense](boom)))
	require.NoError(t, h.Release(ctx))

	require.Len(t, reported, 1)
	require.ErrorIs(t, reported[0], boom)
	require.Zero(t, sink.calls, "failed contribution must not reach upstream")
}

package graph

import (
	"context"
	"sync"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/ember-ml/ember/internal/future"
	"github.com/ember-ml/ember/internal/tensor"
)

// accState is the lifecycle of an Accumulator. The tagged state replaces any
// sentinel-identity trickery: empty, accumulating, and released are explicit
// and released is terminal.
type accState uint8

const (
	stateEmpty accState = iota
	stateAccumulating
	stateReleased
)

// Accumulator collects gradient contributions for one evaluation of a shared
// node and flushes their broadcast-sum upstream exactly once, on release.
//
// Backward may be called any number of times from any number of goroutines.
// The read-modify-write of the running sum is serialized under a single
// mutex, so concurrent contributions never lose an update; beyond that no
// ordering is guaranteed or needed, since broadcast addition is commutative
// and associative.
type Accumulator struct {
	mu    sync.Mutex
	state accState
	sum   *tensor.Dense // valid only in stateAccumulating

	sink      Sink
	onFailure FailureSink
	logger    hclog.Logger
}

func newAccumulator(sink Sink, opts options) *Accumulator {
	return &Accumulator{
		sink:      sink,
		onFailure: opts.onFailure,
		logger:    opts.logger,
	}
}

// Backward accepts one (possibly still pending) gradient contribution.
//
// A failed contribution is isolated: it is reported to the failure sink, the
// running sum is untouched, and Backward returns nil so sibling branches keep
// flowing. A contribution that is not broadcast-compatible with the running
// sum is a hard error. A contribution after release returns ErrReleased.
func (a *Accumulator) Backward(ctx context.Context, contribution *future.Future[*tensor.Dense]) error {
	grad, err := contribution.Await(ctx)
	if err != nil {
		a.reportFailure(errors.Wrap(err, "gradient contribution failed"))
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case stateReleased:
		a.logger.Error("gradient contributed after release")
		return errors.Wrap(ErrReleased, "backward")
	case stateEmpty:
		a.state = stateAccumulating
		a.sum = grad
		return nil
	default:
		sum, err := tensor.Add(a.sum, grad)
		if err != nil {
			return errors.Wrap(err, "accumulate gradient")
		}
		a.sum = sum
		return nil
	}
}

// Release marks end-of-life for the accumulator and flushes the accumulated
// gradient upstream. If no contribution was ever made there is nothing to
// propagate and the upstream sink is not called. The sink's error, if any, is
// returned. Calling Release more than once returns ErrReleased.
func (a *Accumulator) Release(ctx context.Context) error {
	a.mu.Lock()
	if a.state == stateReleased {
		a.mu.Unlock()
		a.logger.Error("accumulator released twice")
		return errors.Wrap(ErrReleased, "release")
	}
	hadSum := a.state == stateAccumulating
	sum := a.sum
	a.state = stateReleased
	a.sum = nil
	a.mu.Unlock()

	if !hadSum {
		return nil
	}

	// Flush outside the lock: the sink may suspend, and contributions racing
	// release must already observe the terminal state.
	a.logger.Debug("flushing accumulated gradient", "shape", sum.Shape())
	if err := a.sink(ctx, sum); err != nil {
		return errors.Wrap(err, "upstream flush")
	}
	return nil
}

func (a *Accumulator) reportFailure(err error) {
	if a.onFailure != nil {
		a.onFailure(err)
		return
	}
	a.logger.Error("dropping failed gradient contribution", "error", err)
}

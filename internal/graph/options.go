package graph

import (
	hclog "github.com/hashicorp/go-hclog"
)

// FailureSink receives errors from failed individual gradient contributions.
// It is decoupled from the accumulator's control flow so one bad branch
// cannot abort the shared running sum.
type FailureSink func(err error)

type options struct {
	logger    hclog.Logger
	onFailure FailureSink
}

// Option configures a SharedNode and the accumulator it owns.
type Option func(*options)

// WithLogger sets the structured logger used for flush, lifecycle, and
// contribution-failure events. Defaults to a no-op logger.
func WithLogger(logger hclog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFailureSink sets the handler for failed gradient contributions.
// When unset, failures are logged at ERROR and dropped.
func WithFailureSink(sink FailureSink) Option {
	return func(o *options) {
		o.onFailure = sink
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

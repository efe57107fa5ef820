package detest

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// runOptions holds configuration for a single Run call.
type runOptions struct {
	substrate Substrate
	safeIO    bool
	logger    *logiface.Logger[*stumpy.Event]
}

// RunOption configures a Run call.
type RunOption interface {
	applyRun(*runOptions)
}

type runOptionImpl struct {
	applyRunFunc func(*runOptions)
}

func (r *runOptionImpl) applyRun(opts *runOptions) { r.applyRunFunc(opts) }

// WithSubstrate selects which host-effect binding LiftAction runs under
// (spec §4.J). The default is PureSubstrate.
func WithSubstrate(substrate Substrate) RunOption {
	return &runOptionImpl{func(opts *runOptions) {
		opts.substrate = substrate
	}}
}

// WithSafeIO sets the RunContext.SafeIO flag handed to every Program. The
// core never interprets it itself; it exists purely for a search/exploration
// layer built on top of this one to read back out of a running program.
func WithSafeIO(safe bool) RunOption {
	return &runOptionImpl{func(opts *runOptions) {
		opts.safeIO = safe
	}}
}

// WithLogger attaches a structured logger that receives one event per
// driver step plus a terminal event once Run concludes. A nil logger (the
// default) disables step logging entirely.
func WithLogger(logger *logiface.Logger[*stumpy.Event]) RunOption {
	return &runOptionImpl{func(opts *runOptions) {
		opts.logger = logger
	}}
}

// resolveRunOptions applies RunOption instances to a fresh runOptions,
// skipping nil entries gracefully.
func resolveRunOptions(opts []RunOption) *runOptions {
	cfg := &runOptions{substrate: PureSubstrate}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRun(cfg)
	}
	return cfg
}

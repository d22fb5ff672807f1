package cio

import (
	"runtime"
	"time"

	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/pkg/maxprocs"

	"github.com/brimscale/cio/pkg/aio"
)

type Options struct {
	RxpOptions        rxp.Options
	RingEntries       int
	RingWaitTimeout   time.Duration
	ParallelAcceptors int
}

func defaultOptions() Options {
	return Options{
		RxpOptions:        rxp.Options{},
		RingEntries:       aio.DefaultRingEntries,
		RingWaitTimeout:   aio.DefaultWaitTimeout,
		ParallelAcceptors: runtime.NumCPU() * 2,
	}
}

func (options *Options) AsRxpOptions() []rxp.Option {
	opts := make([]rxp.Option, 0, 1)
	if n := options.RxpOptions.MaxprocsOptions.MinGOMAXPROCS; n > 0 {
		opts = append(opts, rxp.WithMinGOMAXPROCS(n))
	}
	if fn := options.RxpOptions.MaxprocsOptions.Procs; fn != nil {
		opts = append(opts, rxp.WithProcs(fn))
	}
	if fn := options.RxpOptions.MaxprocsOptions.RoundQuotaFunc; fn != nil {
		opts = append(opts, rxp.WithRoundQuotaFunc(fn))
	}
	if n := options.RxpOptions.MaxGoroutines; n > 0 {
		opts = append(opts, rxp.WithMaxGoroutines(n))
	}
	if n := options.RxpOptions.MaxReadyGoroutinesIdleDuration; n > 0 {
		opts = append(opts, rxp.WithMaxReadyGoroutinesIdleDuration(n))
	}
	if n := options.RxpOptions.CloseTimeout; n > 0 {
		opts = append(opts, rxp.WithCloseTimeout(n))
	}
	return opts
}

type Option func(options *Options) (err error)

// WithRingEntries sets the submission queue depth of the shared poller.
// The value is rounded up to a power of two.
func WithRingEntries(entries int) Option {
	return func(options *Options) (err error) {
		if entries > 0 {
			options.RingEntries = entries
		}
		return
	}
}

// WithRingWaitTimeout bounds one completion wait of the shared poller.
func WithRingWaitTimeout(timeout time.Duration) Option {
	return func(options *Options) (err error) {
		if timeout > 0 {
			options.RingWaitTimeout = timeout
		}
		return
	}
}

// WithParallelAcceptors sets how many accepts a listener keeps in flight.
// Defaults to runtime.NumCPU() * 2, which is also the upper bound.
func WithParallelAcceptors(parallelAcceptors int) Option {
	return func(options *Options) (err error) {
		cpuNum := runtime.NumCPU() * 2
		if parallelAcceptors < 1 || cpuNum < parallelAcceptors {
			parallelAcceptors = cpuNum
		}
		options.ParallelAcceptors = parallelAcceptors
		return
	}
}

// WithMinGOMAXPROCS sets the lower GOMAXPROCS bound, linux only. Useful in
// container environments.
func WithMinGOMAXPROCS(n int) Option {
	return func(options *Options) error {
		return rxp.WithMinGOMAXPROCS(n)(&options.RxpOptions)
	}
}

func WithProcsFunc(fn maxprocs.ProcsFunc) Option {
	return func(options *Options) error {
		return rxp.WithProcs(fn)(&options.RxpOptions)
	}
}

func WithRoundQuotaFunc(fn maxprocs.RoundQuotaFunc) Option {
	return func(options *Options) error {
		return rxp.WithRoundQuotaFunc(fn)(&options.RxpOptions)
	}
}

// WithMaxGoroutines caps the executors' goroutine count.
func WithMaxGoroutines(n int) Option {
	return func(options *Options) error {
		return rxp.WithMaxGoroutines(n)(&options.RxpOptions)
	}
}

func WithMaxReadyGoroutinesIdleDuration(d time.Duration) Option {
	return func(options *Options) error {
		return rxp.WithMaxReadyGoroutinesIdleDuration(d)(&options.RxpOptions)
	}
}

// WithCloseTimeout bounds ShutdownGracefully.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(options *Options) error {
		return rxp.WithCloseTimeout(timeout)(&options.RxpOptions)
	}
}

package cio

import (
	"context"
	"fmt"
	"sync"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/rxp"

	"github.com/brimscale/cio/pkg/aio"
)

var instance = &runtimeInstance{}

type runtimeInstance struct {
	mu        sync.Mutex
	started   bool
	executors rxp.Executors
	poller    *aio.Ring
	cancel    context.CancelFunc
}

// taskFunc adapts a plain function to the executors' task interface.
type taskFunc func(ctx context.Context)

func (fn taskFunc) Handle(ctx context.Context) {
	fn(ctx)
}

// Startup configures and starts the shared executors and the shared
// poller. It must run before the first Listen or Dial to take effect; once
// the defaults are in use the configuration is fixed.
func Startup(options ...Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case error:
				err = e
			case string:
				err = errors.New(e)
			default:
				err = fmt.Errorf("%+v", r)
			}
		}
	}()
	opt := defaultOptions()
	for _, option := range options {
		if err = option(&opt); err != nil {
			return
		}
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	if instance.started {
		return ErrStarted
	}
	return startupLocked(opt)
}

func startupLocked(opt Options) error {
	poller, pollerErr := startPoller(opt)
	if pollerErr != nil {
		return pollerErr
	}
	ctx, cancel := context.WithCancel(context.Background())
	execs, execErr := rxp.New(append(opt.AsRxpOptions(), rxp.WithContext(ctx))...)
	if execErr != nil {
		cancel()
		poller.Stop()
		return execErr
	}
	instance.executors = execs
	instance.poller = poller
	instance.cancel = cancel
	instance.started = true
	return nil
}

// Shutdown cancels the root context so running tasks stop at their next
// step, then closes the executors and stops the poller.
func Shutdown() error {
	return shutdown(false)
}

// ShutdownGracefully closes the executors first, waiting for running
// tasks to finish; WithCloseTimeout bounds the wait. The poller stops
// afterwards.
func ShutdownGracefully() error {
	return shutdown(true)
}

func shutdown(gracefully bool) (err error) {
	instance.mu.Lock()
	defer instance.mu.Unlock()
	if !instance.started {
		return nil
	}
	if !gracefully {
		instance.cancel()
	}
	err = instance.executors.Close()
	if !gracefully && err != nil && errors.Is(err, context.Canceled) {
		// the cancellation above is what interrupted the close wait
		err = nil
	}
	instance.cancel()
	instance.poller.Stop()
	instance.executors = nil
	instance.poller = nil
	instance.cancel = nil
	instance.started = false
	return
}

// Executors returns the shared executors, starting a default executor and
// poller pair when Startup was never called.
func Executors() rxp.Executors {
	instance.mu.Lock()
	defer instance.mu.Unlock()
	startupDefaultLocked()
	return instance.executors
}

// Poller returns the shared completion poller, starting the defaults when
// Startup was never called.
func Poller() aio.Poller {
	instance.mu.Lock()
	defer instance.mu.Unlock()
	startupDefaultLocked()
	return instance.poller
}

func startupDefaultLocked() {
	if instance.started {
		return
	}
	if err := startupLocked(defaultOptions()); err != nil {
		panic(fmt.Errorf("cio: startup failed: %w", err))
	}
}

func startPoller(opt Options) (*aio.Ring, error) {
	r, err := aio.NewRing(aio.RingOptions{
		Entries:     opt.RingEntries,
		WaitTimeout: opt.RingWaitTimeout,
	})
	if err != nil {
		return nil, err
	}
	r.Start(context.Background())
	return r, nil
}

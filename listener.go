package cio

import (
	"context"
	"net"

	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/async"

	"github.com/brimscale/cio/pkg/aio"
	"github.com/brimscale/cio/pkg/sys"
)

type Listener interface {
	Addr() (addr net.Addr)
	Accept() (future async.Future[*Conn])
	Close() (err error)
}

// Listen binds a stream listener and prepares its parallel acceptors.
// Accepted connections are delivered through the stream future returned
// by Accept.
func Listen(ctx context.Context, network string, addr string, options ...Option) (ln Listener, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opt := defaultOptions()
	for _, option := range options {
		if err = option(&opt); err != nil {
			return
		}
	}
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		err = ErrNetworkUnmatched
		return
	}
	a, _, _, resolveErr := sys.ResolveAddr(network, addr)
	if resolveErr != nil {
		err = resolveErr
		return
	}

	ctx = rxp.With(ctx, Executors())

	fd, fdErr := aio.BuildListener(Poller(), network, a)
	if fdErr != nil {
		err = &net.OpError{Op: opListen, Net: network, Addr: a, Err: fdErr}
		return
	}

	lnCTX, lnCancel := context.WithCancel(ctx)
	acceptorPromises, promiseErr := async.Make[*Conn](lnCTX, async.WithStreamAndSize(8))
	if promiseErr != nil {
		_ = fd.Close()
		lnCancel()
		err = promiseErr
		return
	}

	ln = &listener{
		ctx:               lnCTX,
		cancel:            lnCancel,
		fd:                fd,
		parallelAcceptors: opt.ParallelAcceptors,
		acceptorPromises:  acceptorPromises,
	}
	return
}

type listener struct {
	ctx               context.Context
	cancel            context.CancelFunc
	fd                *aio.NetFd
	parallelAcceptors int
	acceptorPromises  async.Promise[*Conn]
}

func (ln *listener) Addr() (addr net.Addr) {
	return ln.fd.LocalAddr()
}

// Accept starts the parallel acceptors and returns the stream future that
// delivers every accepted connection until the listener closes.
func (ln *listener) Accept() (future async.Future[*Conn]) {
	for i := 0; i < ln.parallelAcceptors; i++ {
		ln.acceptOne()
	}
	future = ln.acceptorPromises.Future()
	return
}

func (ln *listener) Close() (err error) {
	ln.acceptorPromises.Cancel()
	err = ln.fd.Close()
	ln.cancel()
	if err != nil {
		err = newOpErr(opClose, ln.fd, err)
	}
	return
}

func (ln *listener) ok() bool {
	return ln.ctx.Err() == nil
}

func (ln *listener) acceptOne() {
	if !ln.ok() {
		ln.acceptorPromises.Fail(ErrClosed)
		return
	}
	execErr := Executors().Execute(ln.ctx, taskFunc(func(_ context.Context) {
		accepted, acceptErr := ln.fd.Accept()
		if acceptErr != nil {
			if IsClosed(acceptErr) {
				ln.acceptorPromises.Fail(ErrClosed)
				return
			}
			ln.acceptorPromises.Fail(newOpErr(opAccept, ln.fd, acceptErr))
			ln.acceptOne()
			return
		}
		ln.acceptorPromises.Succeed(newConn(accepted))
		ln.acceptOne()
	}))
	if execErr != nil {
		ln.acceptorPromises.Fail(execErr)
	}
}

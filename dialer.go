package cio

import (
	"context"
	"net"

	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/async"

	"github.com/brimscale/cio/pkg/aio"
	"github.com/brimscale/cio/pkg/sys"
)

// Dial connects a stream to address and resolves the returned future with
// the established connection. The socket is created at submission time,
// not here, so a creation failure still arrives through the future.
func Dial(ctx context.Context, network string, address string) (future async.Future[*Conn]) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		future = async.FailedImmediately[*Conn](ctx, ErrNetworkUnmatched)
		return
	}
	raddr, _, _, resolveErr := sys.ResolveAddr(network, address)
	if resolveErr != nil {
		future = async.FailedImmediately[*Conn](ctx, resolveErr)
		return
	}
	ctx = rxp.With(ctx, Executors())
	promise, promiseErr := async.Make[*Conn](ctx)
	if promiseErr != nil {
		future = async.FailedImmediately[*Conn](ctx, promiseErr)
		return
	}
	future = promise.Future()

	execErr := Executors().Execute(ctx, taskFunc(func(_ context.Context) {
		fd, dialErr := aio.Connect(Poller(), network, raddr)
		if dialErr != nil {
			promise.Fail(&net.OpError{Op: opDial, Net: network, Addr: raddr, Err: dialErr})
			return
		}
		promise.Succeed(newConn(fd))
	}))
	if execErr != nil {
		promise.Fail(execErr)
	}
	return
}

// DialSync is the blocking form of Dial.
func DialSync(ctx context.Context, network string, address string) (conn *Conn, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, ErrNetworkUnmatched
	}
	raddr, _, _, resolveErr := sys.ResolveAddr(network, address)
	if resolveErr != nil {
		return nil, resolveErr
	}
	fd, dialErr := aio.Connect(Poller(), network, raddr)
	if dialErr != nil {
		return nil, &net.OpError{Op: opDial, Net: network, Addr: raddr, Err: dialErr}
	}
	return newConn(fd), nil
}

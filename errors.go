package cio

import (
	"context"
	"errors"
	"net"

	"github.com/brickingsoft/rxp/async"

	"github.com/brimscale/cio/pkg/aio"
)

var (
	ErrClosed           = errors.New("cio: closed")
	ErrBusy             = errors.New("cio: system busy")
	ErrStarted          = errors.New("cio: already started")
	ErrNilAddr          = errors.New("cio: addr is nil")
	ErrNetworkUnmatched = errors.New("cio: network is not matched")
	ErrDeadline         = errors.New("cio: deadlines are not supported")
)

func IsClosed(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	return errors.Is(err, ErrClosed) || aio.IsClosed(err) || aio.IsPollerClosed(err) ||
		errors.Is(err, async.Canceled) || errors.Is(err, async.ExecutorsClosed) ||
		errors.Is(err, context.Canceled)
}

func IsBusy(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	return errors.Is(err, ErrBusy) || aio.IsBusy(err)
}

func IsNetworkUnmatched(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	return errors.Is(err, ErrNetworkUnmatched)
}

const (
	opDial   = "dial"
	opListen = "listen"
	opAccept = "accept"
	opRead   = "read"
	opWrite  = "write"
	opClose  = "close"
	opSet    = "set"
)

func newOpErr(op string, fd *aio.NetFd, err error) *net.OpError {
	return &net.OpError{
		Op:     op,
		Net:    fd.Net(),
		Source: fd.LocalAddr(),
		Addr:   fd.RemoteAddr(),
		Err:    err,
	}
}

//go:build linux

package aio

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrClosed        = errors.Define("use of closed descriptor")
	ErrPollerClosed  = errors.Define("poller closed")
	ErrBusy          = errors.Define("submission queue is full")
	ErrUnsupportedOp = errors.Define("unsupported op")
	ErrOldKernel     = errors.Define("kernel too old for io_uring socket operations")
)

func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

func IsPollerClosed(err error) bool {
	return errors.Is(err, ErrPollerClosed)
}

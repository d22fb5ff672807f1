//go:build linux

package aio

import (
	"syscall"

	"github.com/brickingsoft/errors"
)

// Fsetxattr sets one extended attribute on the descriptor. The attribute
// name is copied into NUL-terminated storage owned by the operation for
// the whole in-flight window.
func (fd *NetFd) Fsetxattr(name string, value []byte, flags int) error {
	if fd.closed.Load() {
		return errors.From(ErrClosed)
	}
	nameBytes, nameErr := syscall.ByteSliceFromString(name)
	if nameErr != nil {
		return nameErr
	}
	if len(value) == 0 {
		return syscall.EINVAL
	}
	op := AcquireOperation()
	op.PrepareFsetxattr(fd.sock, nameBytes, value, flags)
	fd.poller.Submit(op)
	_, err := op.Await()
	ReleaseOperation(op)
	return err
}

// Fgetxattr reads one extended attribute into value and reports the
// attribute's size. value must not be empty.
func (fd *NetFd) Fgetxattr(name string, value []byte) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	nameBytes, nameErr := syscall.ByteSliceFromString(name)
	if nameErr != nil {
		return 0, nameErr
	}
	if len(value) == 0 {
		return 0, syscall.EINVAL
	}
	op := AcquireOperation()
	op.PrepareFgetxattr(fd.sock, nameBytes, value)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

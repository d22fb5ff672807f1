//go:build linux

package aio

import (
	"net"

	"github.com/brickingsoft/errors"

	"github.com/brimscale/cio/pkg/sys"
)

// Read waits for one read(2) against the descriptor. A zero count on a
// stream socket means the peer closed its writing side.
func (fd *NetFd) Read(b []byte) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareRead(fd.sock, b)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

// Write issues one write(2) and reports the count the kernel accepted,
// which may be short.
func (fd *NetFd) Write(b []byte) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareWrite(fd.sock, b)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

// WriteAll retries short writes until every byte of b is accepted or a
// write fails. written plus the bytes still pending always equals len(b);
// on failure the first error is returned untouched alongside the count
// written so far.
func (fd *NetFd) WriteAll(b []byte) (written int, err error) {
	for written < len(b) {
		n, wErr := fd.Write(b[written:])
		if wErr != nil {
			return written, wErr
		}
		written += n
	}
	return written, nil
}

func (fd *NetFd) Recv(b []byte) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareRecv(fd.sock, b, 0)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

func (fd *NetFd) Send(b []byte) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareSend(fd.sock, b)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

// SendTo addresses one datagram. The destination is encoded into storage
// owned by the operation before submission.
func (fd *NetFd) SendTo(b []byte, addr net.Addr) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	sa, saErr := sys.AddrToSockaddr(addr)
	if saErr != nil {
		return 0, saErr
	}
	rsa, rsaLen, rsaErr := sys.SockaddrToRawSockaddrAny(sa)
	if rsaErr != nil {
		return 0, rsaErr
	}
	op := AcquireOperation()
	op.PrepareSendTo(fd.sock, b, rsa, rsaLen)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

// ReadVectored scatters one read across bufs in order. The iovec array is
// built once, in buffer order, and owned by the operation while in flight,
// so the kernel fills bufs front to back.
func (fd *NetFd) ReadVectored(bufs ...[]byte) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareReadv(fd.sock, bufs...)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

// WriteVectored gathers bufs into one write, in buffer order.
func (fd *NetFd) WriteVectored(bufs ...[]byte) (n int, err error) {
	if fd.closed.Load() {
		return 0, errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareWritev(fd.sock, bufs...)
	fd.poller.Submit(op)
	n, err = op.Await()
	ReleaseOperation(op)
	return
}

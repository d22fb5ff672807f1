//go:build linux

package aio

import (
	"log/slog"
	"net"
	"sync/atomic"
	"syscall"

	"github.com/brickingsoft/errors"

	"github.com/brimscale/cio/pkg/sys"
)

// NetFd owns one socket descriptor for its whole lifetime. Ownership is
// unique: closing transfers the descriptor out before any close request is
// issued, so no operation can be prepared against a reused number.
type NetFd struct {
	poller Poller
	sock   int
	family int
	sotype int
	proto  int
	net    string
	closed atomic.Bool
	laddr  net.Addr
	raddr  net.Addr
}

func newNetFd(poller Poller, sock int, family int, sotype int, proto int, network string) *NetFd {
	return &NetFd{
		poller: poller,
		sock:   sock,
		family: family,
		sotype: sotype,
		proto:  proto,
		net:    network,
	}
}

func (fd *NetFd) Fd() int {
	return fd.sock
}

func (fd *NetFd) Family() int {
	return fd.family
}

func (fd *NetFd) SocketType() int {
	return fd.sotype
}

func (fd *NetFd) Net() string {
	return fd.net
}

// LocalAddr returns the bound address, probing getsockname once when it
// was never recorded.
func (fd *NetFd) LocalAddr() net.Addr {
	if fd.laddr == nil && !fd.closed.Load() {
		if sa, err := syscall.Getsockname(fd.sock); err == nil {
			fd.laddr = sys.SockaddrToAddr(fd.net, sa)
		}
	}
	return fd.laddr
}

func (fd *NetFd) SetLocalAddr(addr net.Addr) {
	fd.laddr = addr
}

// RemoteAddr returns the peer address, probing getpeername once when it
// was never recorded.
func (fd *NetFd) RemoteAddr() net.Addr {
	if fd.raddr == nil && !fd.closed.Load() {
		if sa, err := syscall.Getpeername(fd.sock); err == nil {
			fd.raddr = sys.SockaddrToAddr(fd.net, sa)
		}
	}
	return fd.raddr
}

func (fd *NetFd) SetRemoteAddr(addr net.Addr) {
	fd.raddr = addr
}

func (fd *NetFd) Bind(addr net.Addr) error {
	sa, saErr := sys.AddrToSockaddr(addr)
	if saErr != nil {
		return saErr
	}
	return syscall.Bind(fd.sock, sa)
}

// Shutdown issues an asynchronous shutdown(2) without giving up ownership.
func (fd *NetFd) Shutdown(how int) error {
	if fd.closed.Load() {
		return errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareShutdown(fd.sock, how)
	fd.poller.Submit(op)
	_, err := op.Await()
	ReleaseOperation(op)
	return err
}

// Close transfers the descriptor out of fd, then closes it with an
// asynchronous request. When the request never reaches the kernel, a
// refused submission or an evicted one, the descriptor is closed
// synchronously instead; that path logs and swallows failures, a close
// error never escalates past here.
func (fd *NetFd) Close() error {
	if !fd.closed.CompareAndSwap(false, true) {
		return errors.From(ErrClosed)
	}
	sock := fd.sock
	fd.sock = -1
	op := AcquireOperation()
	op.PrepareClose(sock)
	outcome := fd.poller.Submit(op)
	_, err := op.Await()
	ReleaseOperation(op)
	if err != nil && (outcome == SubmitResolved || IsPollerClosed(err)) {
		closeSync(sock)
		return nil
	}
	return err
}

// closeSync retries a close interrupted by a signal a bounded number of
// times. The original request may still have taken effect, so the retry
// count stays small and the last failure is only logged.
func closeSync(sock int) {
	for i := 0; i < 3; i++ {
		err := syscall.Close(sock)
		if err == nil {
			return
		}
		if err == syscall.EINTR {
			continue
		}
		slog.Error("aio: close socket failed", "fd", sock, "error", err)
		return
	}
	slog.Error("aio: close socket kept being interrupted", "fd", sock)
}

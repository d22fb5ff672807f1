//go:build linux

package aio

import (
	"github.com/brickingsoft/errors"

	"github.com/brimscale/cio/pkg/sys"
)

// Accept waits for one inbound connection and wraps it in a new NetFd
// owning the accepted descriptor. The peer address storage is sized for
// any address family up front; the kernel-reported length is not
// revalidated, the raw storage is decoded as written.
func (fd *NetFd) Accept() (conn *NetFd, err error) {
	if fd.closed.Load() {
		return nil, errors.From(ErrClosed)
	}
	op := AcquireOperation()
	op.PrepareAccept(fd.sock)
	fd.poller.Submit(op)
	accepted, err := op.Await()
	rsa := op.rsa
	ReleaseOperation(op)
	if err != nil {
		return nil, err
	}
	conn = newNetFd(fd.poller, accepted, fd.family, fd.sotype, fd.proto, fd.net)
	conn.SetLocalAddr(fd.laddr)
	if sa, saErr := sys.RawSockaddrAnyToSockaddr(rsa); saErr == nil {
		conn.SetRemoteAddr(sys.SockaddrToAddr(fd.net, sa))
	}
	return conn, nil
}

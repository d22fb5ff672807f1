//go:build linux

package aio

import (
	"net"
	"syscall"

	"github.com/brimscale/cio/pkg/sys"
)

// newLazySocket creates the descriptor a connect operation deferred to
// submission time. The socket only exists once the operation is actually
// handed to a poller.
func newLazySocket(family int, sotype int, proto int) (int, error) {
	return sys.NewSocket(family, sotype, proto)
}

// BuildListener creates a bound, listening descriptor. Creation, binding
// and listening are synchronous, only I/O against the returned descriptor
// goes through the poller.
func BuildListener(poller Poller, network string, addr net.Addr) (fd *NetFd, err error) {
	family, ipv6only := sys.FavoriteAddrFamily(network, addr, nil, "listen")
	sotype := syscall.SOCK_STREAM
	sock, sockErr := sys.NewSocket(family, sotype, 0)
	if sockErr != nil {
		return nil, sockErr
	}
	fd = newNetFd(poller, sock, family, sotype, 0, network)
	if err = fd.SetReuseAddr(true); err != nil {
		closeSync(sock)
		return nil, err
	}
	if family == syscall.AF_INET6 {
		if err = fd.SetIPv6Only(ipv6only); err != nil {
			closeSync(sock)
			return nil, err
		}
	}
	if err = fd.Bind(addr); err != nil {
		closeSync(sock)
		return nil, err
	}
	if err = syscall.Listen(sock, sys.MaxListenerBacklog()); err != nil {
		closeSync(sock)
		return nil, err
	}
	if sn, snErr := syscall.Getsockname(sock); snErr == nil {
		fd.SetLocalAddr(sys.SockaddrToAddr(network, sn))
	} else {
		fd.SetLocalAddr(addr)
	}
	return fd, nil
}

// Connect establishes an outbound stream. The descriptor is created lazily
// inside the poller's submission step, so a socket creation failure
// resolves the operation on the same turn without any kernel request.
func Connect(poller Poller, network string, raddr net.Addr) (fd *NetFd, err error) {
	family, _ := sys.FavoriteAddrFamily(network, nil, raddr, "dial")
	sotype := syscall.SOCK_STREAM
	sa, saErr := sys.AddrToSockaddr(raddr)
	if saErr != nil {
		return nil, saErr
	}
	rsa, rsaLen, rsaErr := sys.SockaddrToRawSockaddrAny(sa)
	if rsaErr != nil {
		return nil, rsaErr
	}

	op := AcquireOperation()
	op.PrepareConnect(family, sotype, 0, rsa, rsaLen)
	poller.Submit(op)
	_, err = op.Await()
	sock := op.fd
	ReleaseOperation(op)
	if err != nil {
		if sock >= 0 {
			closeSync(sock)
		}
		return nil, err
	}

	fd = newNetFd(poller, sock, family, sotype, 0, network)
	if sn, snErr := syscall.Getsockname(sock); snErr == nil {
		fd.SetLocalAddr(sys.SockaddrToAddr(network, sn))
	}
	fd.SetRemoteAddr(raddr)
	return fd, nil
}

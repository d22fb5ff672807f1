//go:build linux

package aio

import (
	"syscall"
	"time"

	"github.com/brimscale/cio/pkg/sys"
	"golang.org/x/sys/unix"
)

func boolint(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (fd *NetFd) SetReuseAddr(on bool) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolint(on))
}

func (fd *NetFd) ReuseAddr() (bool, error) {
	v, err := unix.GetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_REUSEADDR)
	return v != 0, err
}

func (fd *NetFd) SetReusePort(on bool) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_REUSEPORT, boolint(on))
}

func (fd *NetFd) ReusePort() (bool, error) {
	v, err := unix.GetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_REUSEPORT)
	return v != 0, err
}

func (fd *NetFd) SetBroadcast(on bool) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_BROADCAST, boolint(on))
}

func (fd *NetFd) Broadcast() (bool, error) {
	v, err := unix.GetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_BROADCAST)
	return v != 0, err
}

func (fd *NetFd) SetKeepAlive(on bool) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_KEEPALIVE, boolint(on))
}

func (fd *NetFd) KeepAlive() (bool, error) {
	v, err := unix.GetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_KEEPALIVE)
	return v != 0, err
}

func (fd *NetFd) SetPassCred(on bool) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_PASSCRED, boolint(on))
}

func (fd *NetFd) PassCred() (bool, error) {
	v, err := unix.GetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_PASSCRED)
	return v != 0, err
}

func (fd *NetFd) SetIPv6Only(on bool) error {
	return unix.SetsockoptInt(fd.sock, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, boolint(on))
}

// SetTTL sets the IP time-to-live. The kernel stores the value as an int
// but the meaningful range is unsigned 0..255, so the accessors expose it
// as uint32.
func (fd *NetFd) SetTTL(ttl uint32) error {
	return unix.SetsockoptInt(fd.sock, unix.IPPROTO_IP, unix.IP_TTL, int(ttl))
}

func (fd *NetFd) TTL() (uint32, error) {
	v, err := unix.GetsockoptInt(fd.sock, unix.IPPROTO_IP, unix.IP_TTL)
	return uint32(v), err
}

func (fd *NetFd) SetMark(mark int) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_MARK, mark)
}

func (fd *NetFd) SetRecvBufferSize(size int) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_RCVBUF, size)
}

func (fd *NetFd) RecvBufferSize() (int, error) {
	return unix.GetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_RCVBUF)
}

func (fd *NetFd) SetSendBufferSize(size int) error {
	return unix.SetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_SNDBUF, size)
}

func (fd *NetFd) SendBufferSize() (int, error) {
	return unix.GetsockoptInt(fd.sock, unix.SOL_SOCKET, unix.SO_SNDBUF)
}

// SetLinger maps a duration onto the l_onoff/l_linger pair: a negative
// duration disables lingering, anything else enables it with the duration
// rounded down to whole seconds.
func (fd *NetFd) SetLinger(d time.Duration) error {
	l := unix.Linger{}
	if d >= 0 {
		l.Onoff = 1
		l.Linger = int32(d / time.Second)
	}
	return unix.SetsockoptLinger(fd.sock, unix.SOL_SOCKET, unix.SO_LINGER, &l)
}

// Linger reports the configured linger duration and whether lingering is
// enabled at all.
func (fd *NetFd) Linger() (time.Duration, bool, error) {
	l, err := unix.GetsockoptLinger(fd.sock, unix.SOL_SOCKET, unix.SO_LINGER)
	if err != nil {
		return 0, false, err
	}
	if l.Onoff == 0 {
		return 0, false, nil
	}
	return time.Duration(l.Linger) * time.Second, true, nil
}

// SetNoDelay toggles O_NDELAY through the file status flags. The
// read-modify-write pair is not atomic against other flag writers on the
// same descriptor.
func (fd *NetFd) SetNoDelay(on bool) error {
	return fd.setStatusFlag(syscall.O_NDELAY, on)
}

func (fd *NetFd) NoDelay() (bool, error) {
	return fd.statusFlag(syscall.O_NDELAY)
}

func (fd *NetFd) SetNonblocking(on bool) error {
	return fd.setStatusFlag(syscall.O_NONBLOCK, on)
}

func (fd *NetFd) Nonblocking() (bool, error) {
	return fd.statusFlag(syscall.O_NONBLOCK)
}

func (fd *NetFd) setStatusFlag(flag int, on bool) error {
	flags, err := sys.Fcntl(fd.sock, syscall.F_GETFL, 0)
	if err != nil {
		return err
	}
	if on {
		flags |= flag
	} else {
		flags &^= flag
	}
	_, err = sys.Fcntl(fd.sock, syscall.F_SETFL, flags)
	return err
}

func (fd *NetFd) statusFlag(flag int) (bool, error) {
	flags, err := sys.Fcntl(fd.sock, syscall.F_GETFL, 0)
	if err != nil {
		return false, err
	}
	return flags&flag != 0, nil
}

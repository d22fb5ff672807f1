//go:build linux

package sys

import (
	"errors"
	"os"
	"syscall"
)

// NewSocket opens a non-blocking close-on-exec socket, falling back to the
// pre-accept4 two-step sequence on kernels that reject the combined flags.
func NewSocket(family int, sotype int, protocol int) (sock int, err error) {
	sock, err = syscall.Socket(family, sotype|syscall.SOCK_NONBLOCK|syscall.SOCK_CLOEXEC, protocol)
	if err == nil {
		return
	}
	if errors.Is(err, syscall.EPROTONOSUPPORT) || errors.Is(err, syscall.EINVAL) {
		syscall.ForkLock.RLock()
		sock, err = syscall.Socket(family, sotype, protocol)
		if err == nil {
			syscall.CloseOnExec(sock)
		}
		syscall.ForkLock.RUnlock()
		if err != nil {
			err = os.NewSyscallError("socket", err)
			return
		}
		if err = syscall.SetNonblock(sock, true); err != nil {
			_ = syscall.Close(sock)
			err = os.NewSyscallError("setnonblock", err)
			return
		}
		return
	}
	err = os.NewSyscallError("socket", err)
	return
}

// Fcntl wraps fcntl(2); the syscall package does not export it on linux.
func Fcntl(fd int, cmd int, arg int) (int, error) {
	r, _, errno := syscall.Syscall6(syscall.SYS_FCNTL, uintptr(fd), uintptr(cmd), uintptr(arg), 0, 0, 0)
	if int32(r) == -1 {
		return -1, syscall.Errno(errno)
	}
	return int(r), nil
}

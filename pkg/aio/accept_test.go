//go:build linux

package aio

import (
	"syscall"
	"testing"
	"unsafe"

	"github.com/brickingsoft/errors"

	"github.com/brimscale/cio/pkg/sys"
)

func TestAcceptSurfacesPeerReset(t *testing.T) {
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		return -104, 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	conn, err := fd.Accept()
	if conn != nil {
		t.Fatal("conn on failed accept")
	}
	if !errors.Is(err, syscall.ECONNRESET) {
		t.Fatal("err:", err)
	}
}

func TestAcceptDecodesPeerAddress(t *testing.T) {
	peer := &syscall.SockaddrInet4{Port: 8080, Addr: [4]byte{127, 0, 0, 1}}
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		rsa, _, rsaErr := sys.SockaddrToRawSockaddrAny(peer)
		if rsaErr != nil {
			t.Fatal("encode peer:", rsaErr)
		}
		*op.rsa = *rsa
		return 42, 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	conn, err := fd.Accept()
	if err != nil {
		t.Fatal("accept:", err)
	}
	if conn.Fd() != 42 {
		t.Fatal("accepted fd:", conn.Fd())
	}
	if conn.RemoteAddr() == nil || conn.RemoteAddr().String() != "127.0.0.1:8080" {
		t.Fatal("remote addr:", conn.RemoteAddr())
	}
}

func TestAcceptStorageSizedUpFront(t *testing.T) {
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		if op.rsa == nil {
			t.Fatal("no address storage")
		}
		if op.rsaLen != uint32(syscall.SizeofSockaddrAny) {
			t.Fatal("storage len:", op.rsaLen)
		}
		if uintptr(unsafe.Sizeof(*op.rsa)) != uintptr(syscall.SizeofSockaddrAny) {
			t.Fatal("storage capacity mismatch")
		}
		return 5, 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	if _, err := fd.Accept(); err != nil {
		t.Fatal("accept:", err)
	}
}

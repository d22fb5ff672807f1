//go:build linux

package aio

import (
	"syscall"
	"testing"
	"time"

	"github.com/brimscale/cio/pkg/sys"
)

func newTestSocketFd(t *testing.T) *NetFd {
	t.Helper()
	sock, err := sys.NewSocket(syscall.AF_INET, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal("socket:", err)
	}
	t.Cleanup(func() {
		_ = syscall.Close(sock)
	})
	return newNetFd(nil, sock, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
}

func TestLingerRoundTrip(t *testing.T) {
	fd := newTestSocketFd(t)
	if err := fd.SetLinger(3 * time.Second); err != nil {
		t.Fatal("set linger:", err)
	}
	d, on, err := fd.Linger()
	if err != nil {
		t.Fatal("get linger:", err)
	}
	if !on || d != 3*time.Second {
		t.Fatal("linger:", d, on)
	}
	if err = fd.SetLinger(-1); err != nil {
		t.Fatal("disable linger:", err)
	}
	if _, on, err = fd.Linger(); err != nil || on {
		t.Fatal("linger still on:", on, err)
	}
}

func TestLingerZeroDurationStaysEnabled(t *testing.T) {
	fd := newTestSocketFd(t)
	if err := fd.SetLinger(0); err != nil {
		t.Fatal("set linger:", err)
	}
	d, on, err := fd.Linger()
	if err != nil {
		t.Fatal("get linger:", err)
	}
	if !on || d != 0 {
		t.Fatal("linger:", d, on)
	}
}

func TestTTLRoundTrip(t *testing.T) {
	fd := newTestSocketFd(t)
	if err := fd.SetTTL(64); err != nil {
		t.Fatal("set ttl:", err)
	}
	ttl, err := fd.TTL()
	if err != nil {
		t.Fatal("get ttl:", err)
	}
	if ttl != 64 {
		t.Fatal("ttl:", ttl)
	}
}

func TestStatusFlagToggle(t *testing.T) {
	fd := newTestSocketFd(t)
	// sockets are created nonblocking
	on, err := fd.Nonblocking()
	if err != nil {
		t.Fatal("get nonblocking:", err)
	}
	if !on {
		t.Fatal("socket created blocking")
	}
	if err = fd.SetNonblocking(false); err != nil {
		t.Fatal("set nonblocking:", err)
	}
	if on, err = fd.Nonblocking(); err != nil || on {
		t.Fatal("still nonblocking:", on, err)
	}
	if err = fd.SetNoDelay(true); err != nil {
		t.Fatal("set nodelay:", err)
	}
	if on, err = fd.NoDelay(); err != nil || !on {
		t.Fatal("nodelay:", on, err)
	}
}

func TestReuseAddrRoundTrip(t *testing.T) {
	fd := newTestSocketFd(t)
	if err := fd.SetReuseAddr(true); err != nil {
		t.Fatal("set reuseaddr:", err)
	}
	on, err := fd.ReuseAddr()
	if err != nil {
		t.Fatal("get reuseaddr:", err)
	}
	if !on {
		t.Fatal("reuseaddr off")
	}
}

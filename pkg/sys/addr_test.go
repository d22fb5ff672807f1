//go:build linux

package sys

import (
	"net"
	"syscall"
	"testing"
)

func TestResolveAddr4In6(t *testing.T) {
	addr, family, ipv6only, err := ResolveAddr("tcp", "[::ffff:127.0.0.1]:8080")
	if err != nil {
		t.Fatal("resolve:", err)
	}
	a, ok := addr.(*net.TCPAddr)
	if !ok {
		t.Fatalf("addr type: %T", addr)
	}
	if len(a.IP) != net.IPv4len {
		t.Fatal("4-in-6 address was not normalized, ip:", a.IP)
	}
	if family != syscall.AF_INET {
		t.Fatal("family:", family)
	}
	if ipv6only {
		t.Fatal("ipv6only set for a mapped v4 address")
	}
	if a.Port != 8080 {
		t.Fatal("port:", a.Port)
	}
}

func TestResolveAddrV6Pinned(t *testing.T) {
	addr, family, ipv6only, err := ResolveAddr("tcp6", "[::1]:9000")
	if err != nil {
		t.Fatal("resolve:", err)
	}
	a := addr.(*net.TCPAddr)
	if len(a.IP) != net.IPv6len {
		t.Fatal("ip:", a.IP)
	}
	if family != syscall.AF_INET6 {
		t.Fatal("family:", family)
	}
	if !ipv6only {
		t.Fatal("ipv6only not set for tcp6")
	}
}

func TestResolveAddrInvalid(t *testing.T) {
	if _, _, _, err := ResolveAddr("tcp", "  "); err == nil {
		t.Error("empty address accepted")
	}
	if _, _, _, err := ResolveAddr("sctp", "127.0.0.1:80"); err == nil {
		t.Error("unknown network accepted")
	}
}

//go:build linux

package sys

import (
	"net"
	"sync"
	"syscall"
)

// FavoriteAddrFamily returns the address family implied by network and the
// given endpoints, following the stdlib preference order: wildcard listens
// favor AF_INET6 with mapped addresses when the stack allows it.
func FavoriteAddrFamily(network string, laddr, raddr net.Addr, mode string) (family int, ipv6only bool) {
	switch network {
	case "unix", "unixgram", "unixpacket":
		family = syscall.AF_UNIX
		return
	default:
		break
	}
	switch network[len(network)-1] {
	case '4':
		return syscall.AF_INET, false
	case '6':
		return syscall.AF_INET6, true
	}

	if mode == "listen" && (laddr == nil || IsWildcard(laddr)) {
		if supportsIPv4map() || !supportsIPv4() {
			return syscall.AF_INET6, false
		}
		if laddr == nil {
			return syscall.AF_INET, false
		}
		return addrFamily(laddr), false
	}

	if (laddr == nil || addrFamily(laddr) == syscall.AF_INET) &&
		(raddr == nil || addrFamily(raddr) == syscall.AF_INET) {
		return syscall.AF_INET, false
	}
	return syscall.AF_INET6, false
}

func addrFamily(addr net.Addr) int {
	var ip net.IP
	switch a := addr.(type) {
	case *net.TCPAddr:
		if a == nil {
			return syscall.AF_INET
		}
		ip = a.IP
	case *net.UDPAddr:
		if a == nil {
			return syscall.AF_INET
		}
		ip = a.IP
	case *net.IPAddr:
		if a == nil {
			return syscall.AF_INET
		}
		ip = a.IP
	case *net.UnixAddr:
		return syscall.AF_UNIX
	default:
		return syscall.AF_UNSPEC
	}
	if len(ip) <= net.IPv4len || ip.To4() != nil {
		return syscall.AF_INET
	}
	return syscall.AF_INET6
}

// IsWildcard reports whether addr binds every local address.
func IsWildcard(addr net.Addr) bool {
	if addr == nil {
		return true
	}
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP == nil || a.IP.IsUnspecified()
	case *net.UDPAddr:
		return a.IP == nil || a.IP.IsUnspecified()
	case *net.IPAddr:
		return a.IP == nil || a.IP.IsUnspecified()
	case *net.UnixAddr:
		return a.Name == ""
	default:
		return false
	}
}

type ipStackCapabilities struct {
	sync.Once
	ipv4Enabled           bool
	ipv6Enabled           bool
	ipv4MappedIPv6Enabled bool
}

var ipStackCaps ipStackCapabilities

func supportsIPv4() bool {
	ipStackCaps.Once.Do(ipStackCaps.probe)
	return ipStackCaps.ipv4Enabled
}

func supportsIPv6() bool {
	ipStackCaps.Once.Do(ipStackCaps.probe)
	return ipStackCaps.ipv6Enabled
}

func supportsIPv4map() bool {
	ipStackCaps.Once.Do(ipStackCaps.probe)
	return ipStackCaps.ipv4MappedIPv6Enabled
}

func (p *ipStackCapabilities) probe() {
	s, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_STREAM|syscall.SOCK_NONBLOCK|syscall.SOCK_CLOEXEC, syscall.IPPROTO_TCP)
	switch err {
	case syscall.EAFNOSUPPORT, syscall.EPROTONOSUPPORT:
	case nil:
		_ = syscall.Close(s)
		p.ipv4Enabled = true
	}
	probes := []struct {
		laddr net.TCPAddr
		value int
	}{
		{laddr: net.TCPAddr{IP: net.ParseIP("::1")}, value: 1},
		{laddr: net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}, value: 0},
	}
	for i := range probes {
		s, err = syscall.Socket(syscall.AF_INET6, syscall.SOCK_STREAM|syscall.SOCK_NONBLOCK|syscall.SOCK_CLOEXEC, syscall.IPPROTO_TCP)
		if err != nil {
			continue
		}
		defer syscall.Close(s)
		_ = syscall.SetsockoptInt(s, syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY, probes[i].value)
		sa, saErr := AddrToSockaddr(&probes[i].laddr)
		if saErr != nil {
			continue
		}
		if bindErr := syscall.Bind(s, sa); bindErr != nil {
			continue
		}
		if i == 0 {
			p.ipv6Enabled = true
		} else {
			p.ipv4MappedIPv6Enabled = true
		}
	}
}

//go:build linux

package sys

import (
	"errors"
	"net"
	"strings"
	"syscall"
	"unsafe"
)

// ResolveAddr resolves address into a net.Addr of the kind implied by network,
// normalizing 4-in-6 addresses down to plain IPv4 unless the network pins v6.
func ResolveAddr(network string, address string) (addr net.Addr, family int, ipv6only bool, err error) {
	address = strings.TrimSpace(address)
	if address == "" {
		err = errors.New("address is invalid")
		return
	}
	proto := network
	if colon := strings.IndexByte(network, ':'); colon > -1 {
		proto = network[:colon]
	}
	ipv6only = strings.HasSuffix(network, "6")
	switch proto {
	case "tcp", "tcp4", "tcp6":
		a, resolveErr := net.ResolveTCPAddr(network, address)
		if resolveErr != nil {
			err = resolveErr
			return
		}
		if !ipv6only && a.AddrPort().Addr().Is4In6() {
			a.IP = a.IP.To4()
		}
		if family, err = ipFamily(a.IP); err != nil {
			return
		}
		if len(a.IP) == 0 {
			a.IP = net.IPv4zero.To4()
		}
		addr = a
	case "udp", "udp4", "udp6":
		a, resolveErr := net.ResolveUDPAddr(network, address)
		if resolveErr != nil {
			err = resolveErr
			return
		}
		if !ipv6only && a.AddrPort().Addr().Is4In6() {
			a.IP = a.IP.To4()
		}
		if family, err = ipFamily(a.IP); err != nil {
			return
		}
		if len(a.IP) == 0 {
			a.IP = net.IPv4zero.To4()
		}
		addr = a
	case "unix", "unixgram", "unixpacket":
		family = syscall.AF_UNIX
		addr, err = net.ResolveUnixAddr(network, address)
	default:
		err = errors.New("network is invalid")
	}
	return
}

func ipFamily(ip net.IP) (family int, err error) {
	switch len(ip) {
	case net.IPv4len, 0:
		family = syscall.AF_INET
	case net.IPv6len:
		family = syscall.AF_INET6
	default:
		err = errors.New("ip is invalid")
	}
	return
}

func isZeros(p net.IP) bool {
	for i := 0; i < len(p); i++ {
		if p[i] != 0 {
			return false
		}
	}
	return true
}

// AddrToSockaddr converts a resolved net.Addr into the matching syscall.Sockaddr.
func AddrToSockaddr(a net.Addr) (sa syscall.Sockaddr, err error) {
	var (
		ip   net.IP
		port int
		zone string
	)
	switch addr := a.(type) {
	case *net.TCPAddr:
		if addr.AddrPort().Addr().Is4In6() {
			addr.IP = addr.IP.To4()
		}
		ip, port, zone = addr.IP, addr.Port, addr.Zone
	case *net.UDPAddr:
		if addr.AddrPort().Addr().Is4In6() {
			addr.IP = addr.IP.To4()
		}
		ip, port, zone = addr.IP, addr.Port, addr.Zone
	case *net.IPAddr:
		if len(addr.IP) == net.IPv6len && isZeros(addr.IP[0:10]) && addr.IP[10] == 0xff && addr.IP[11] == 0xff {
			addr.IP = addr.IP.To4()
		}
		ip, zone = addr.IP, addr.Zone
	case *net.UnixAddr:
		sa = &syscall.SockaddrUnix{Name: addr.Name}
		return
	default:
		err = errors.New("type of addr is invalid")
		return
	}
	switch len(ip) {
	case net.IPv4len:
		sa4 := &syscall.SockaddrInet4{Port: port}
		copy(sa4.Addr[:], ip.To4())
		sa = sa4
	case net.IPv6len:
		zoneId := uint32(0)
		if ifi, ifiErr := net.InterfaceByName(zone); ifiErr == nil {
			zoneId = uint32(ifi.Index)
		}
		sa6 := &syscall.SockaddrInet6{Port: port, ZoneId: zoneId}
		copy(sa6.Addr[:], ip.To16())
		sa = sa6
	default:
		err = errors.New("ip is invalid")
	}
	return
}

// SockaddrToAddr converts a syscall.Sockaddr back into the net.Addr kind
// named by network.
func SockaddrToAddr(network string, sa syscall.Sockaddr) (addr net.Addr) {
	switch sa := sa.(type) {
	case *syscall.SockaddrInet4:
		addr = ipToAddr(network, append([]byte{}, sa.Addr[:]...), sa.Port, "")
	case *syscall.SockaddrInet6:
		var zone string
		if sa.ZoneId != 0 {
			if ifi, err := net.InterfaceByIndex(int(sa.ZoneId)); err == nil {
				zone = ifi.Name
			}
		}
		addr = ipToAddr(network, append([]byte{}, sa.Addr[:]...), sa.Port, zone)
	case *syscall.SockaddrUnix:
		addr = &net.UnixAddr{Net: network, Name: sa.Name}
	}
	return
}

func ipToAddr(network string, ip net.IP, port int, zone string) (addr net.Addr) {
	switch network {
	case "tcp", "tcp4", "tcp6":
		addr = &net.TCPAddr{IP: ip, Port: port, Zone: zone}
	case "udp", "udp4", "udp6":
		addr = &net.UDPAddr{IP: ip, Port: port, Zone: zone}
	case "ip", "ip4", "ip6":
		addr = &net.IPAddr{IP: ip, Zone: zone}
	}
	return
}

// RawSockaddrAnyToSockaddr decodes kernel-filled raw address storage.
func RawSockaddrAnyToSockaddr(rsa *syscall.RawSockaddrAny) (syscall.Sockaddr, error) {
	switch rsa.Addr.Family {
	case syscall.AF_UNIX:
		pp := (*syscall.RawSockaddrUnix)(unsafe.Pointer(rsa))
		sa := new(syscall.SockaddrUnix)
		if pp.Path[0] == 0 {
			// abstract socket, leading NUL shown as @ by convention
			pp.Path[0] = '@'
		}
		n := 0
		for n < len(pp.Path) && pp.Path[n] != 0 {
			n++
		}
		bytes := (*[len(pp.Path)]byte)(unsafe.Pointer(&pp.Path[0]))[0:n]
		sa.Name = string(bytes)
		return sa, nil
	case syscall.AF_INET:
		pp := (*syscall.RawSockaddrInet4)(unsafe.Pointer(rsa))
		sa := new(syscall.SockaddrInet4)
		p := (*[2]byte)(unsafe.Pointer(&pp.Port))
		sa.Port = int(p[0])<<8 + int(p[1])
		sa.Addr = pp.Addr
		return sa, nil
	case syscall.AF_INET6:
		pp := (*syscall.RawSockaddrInet6)(unsafe.Pointer(rsa))
		sa := new(syscall.SockaddrInet6)
		p := (*[2]byte)(unsafe.Pointer(&pp.Port))
		sa.Port = int(p[0])<<8 + int(p[1])
		sa.ZoneId = pp.Scope_id
		sa.Addr = pp.Addr
		return sa, nil
	}
	return nil, syscall.EAFNOSUPPORT
}

// SockaddrToRawSockaddrAny encodes sa into freshly allocated raw storage
// suitable for handing to the kernel.
func SockaddrToRawSockaddrAny(sa syscall.Sockaddr) (name *syscall.RawSockaddrAny, nameLen int32, err error) {
	switch s := sa.(type) {
	case *syscall.SockaddrInet4:
		name = &syscall.RawSockaddrAny{}
		raw := (*syscall.RawSockaddrInet4)(unsafe.Pointer(name))
		raw.Family = syscall.AF_INET
		p := (*[2]byte)(unsafe.Pointer(&raw.Port))
		p[0] = byte(s.Port >> 8)
		p[1] = byte(s.Port)
		raw.Addr = s.Addr
		nameLen = int32(unsafe.Sizeof(*raw))
		return
	case *syscall.SockaddrInet6:
		name = &syscall.RawSockaddrAny{}
		raw := (*syscall.RawSockaddrInet6)(unsafe.Pointer(name))
		raw.Family = syscall.AF_INET6
		p := (*[2]byte)(unsafe.Pointer(&raw.Port))
		p[0] = byte(s.Port >> 8)
		p[1] = byte(s.Port)
		raw.Scope_id = s.ZoneId
		raw.Addr = s.Addr
		nameLen = int32(unsafe.Sizeof(*raw))
		return
	case *syscall.SockaddrUnix:
		name = &syscall.RawSockaddrAny{}
		raw := (*syscall.RawSockaddrUnix)(unsafe.Pointer(name))
		raw.Family = syscall.AF_UNIX
		n := 0
		for n < len(s.Name) && n < len(raw.Path) && s.Name[n] != 0 {
			raw.Path[n] = int8(s.Name[n])
			n++
		}
		nameLen = int32(unsafe.Sizeof(*raw))
		return
	default:
		err = errors.New("invalid address type")
		return
	}
}

//go:build linux

package aio

import (
	"syscall"
	"unsafe"
)

// reads and writes are capped to stay below the kernel's per-call limit
const maxRW = 1 << 30

func (op *Operation) PrepareNop() {
	op.code = opNop
}

// PrepareAccept sizes the operation's own address storage to the full
// raw-sockaddr capacity before submission; the kernel fills it while the
// caller is suspended and the caller cannot resize it mid-flight.
func (op *Operation) PrepareAccept(fd int) {
	op.code = opAccept
	op.fd = fd
	op.rsa = &syscall.RawSockaddrAny{}
	op.rsaLen = uint32(syscall.SizeofSockaddrAny)
}

// PrepareConnect leaves the descriptor unset: connect creates its socket at
// the submission step, not at construction (see Operation.prepareSubmit).
func (op *Operation) PrepareConnect(family int, sotype int, proto int, rsa *syscall.RawSockaddrAny, rsaLen int32) {
	op.code = opConnect
	op.fd = -1
	op.family = family
	op.sotype = sotype
	op.proto = proto
	op.rsa = rsa
	op.rsaLen = uint32(rsaLen)
}

func (op *Operation) PrepareShutdown(fd int, how int) {
	op.code = opShutdown
	op.fd = fd
	op.how = how
}

func (op *Operation) PrepareClose(fd int) {
	op.code = opClose
	op.fd = fd
}

func (op *Operation) PrepareSend(fd int, b []byte) {
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	op.code = opSend
	op.fd = fd
	op.b = b
	op.flags = syscall.MSG_NOSIGNAL
}

func (op *Operation) PrepareSendTo(fd int, b []byte, rsa *syscall.RawSockaddrAny, rsaLen int32) {
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	op.code = opSendTo
	op.fd = fd
	op.b = b
	op.rsa = rsa
	op.rsaLen = uint32(rsaLen)
	op.flags = syscall.MSG_NOSIGNAL
	op.msg.Name = (*byte)(unsafe.Pointer(rsa))
	op.msg.Namelen = uint32(rsaLen)
	if len(b) > 0 {
		op.iovecs = append(op.iovecs[:0], syscall.Iovec{
			Base: unsafe.SliceData(b),
			Len:  uint64(len(b)),
		})
		op.msg.Iov = &op.iovecs[0]
		op.msg.Iovlen = 1
	}
}

func (op *Operation) PrepareRecv(fd int, b []byte, flags int) {
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	op.code = opRecv
	op.fd = fd
	op.b = b
	op.flags = flags
}

func (op *Operation) PrepareRead(fd int, b []byte) {
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	op.code = opRead
	op.fd = fd
	op.b = b
}

func (op *Operation) PrepareWrite(fd int, b []byte) {
	if len(b) > maxRW {
		b = b[:maxRW]
	}
	op.code = opWrite
	op.fd = fd
	op.b = b
}

// PrepareReadv builds one iovec entry per buffer, in the order given; the
// kernel fills earlier entries to capacity before later ones see any bytes.
func (op *Operation) PrepareReadv(fd int, bufs ...[]byte) {
	op.code = opReadv
	op.fd = fd
	op.iovecs = appendIovecs(op.iovecs[:0], bufs)
}

func (op *Operation) PrepareWritev(fd int, bufs ...[]byte) {
	op.code = opWritev
	op.fd = fd
	op.iovecs = appendIovecs(op.iovecs[:0], bufs)
}

func appendIovecs(iovecs []syscall.Iovec, bufs [][]byte) []syscall.Iovec {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		iovecs = append(iovecs, syscall.Iovec{
			Base: unsafe.SliceData(b),
			Len:  uint64(len(b)),
		})
	}
	return iovecs
}

// PrepareFsetxattr keeps the NUL-terminated attribute name and the value
// bytes alive inside the operation while the request is in flight.
func (op *Operation) PrepareFsetxattr(fd int, name []byte, value []byte, flags int) {
	op.code = opFsetxattr
	op.fd = fd
	op.attrName = name
	op.attrValue = value
	op.flags = flags
}

func (op *Operation) PrepareFgetxattr(fd int, name []byte, value []byte) {
	op.code = opFgetxattr
	op.fd = fd
	op.attrName = name
	op.attrValue = value
}

// Iovecs exposes the prepared descriptor list of a vectored operation.
func (op *Operation) Iovecs() []syscall.Iovec {
	return op.iovecs
}

//go:build linux

package aio

import (
	"runtime"
	"syscall"
	"unsafe"

	"github.com/brickingsoft/errors"
	"github.com/pawelgaczynski/giouring"
)

// packing translates an in-flight operation into one submission queue entry.
// The pointers handed to the kernel all live inside the operation itself.
func (op *Operation) packing(sqe *giouring.SubmissionQueueEntry) (err error) {
	switch op.code {
	case opNop:
		sqe.PrepareNop()
	case opAccept:
		addrPtr := uintptr(unsafe.Pointer(op.rsa))
		addrLenPtr := uint64(uintptr(unsafe.Pointer(&op.rsaLen)))
		sqe.PrepareAccept(op.fd, addrPtr, addrLenPtr, syscall.SOCK_NONBLOCK)
	case opConnect:
		sqe.PrepareConnect(op.fd, (*syscall.Sockaddr)(unsafe.Pointer(op.rsa)), uint64(op.rsaLen))
	case opShutdown:
		sqe.PrepareShutdown(op.fd, op.how)
	case opClose:
		sqe.PrepareClose(op.fd)
	case opSend:
		var b uintptr
		if len(op.b) > 0 {
			b = uintptr(unsafe.Pointer(&op.b[0]))
		}
		sqe.PrepareSend(op.fd, b, uint32(len(op.b)), op.flags)
	case opSendTo:
		sqe.PrepareSendMsg(op.fd, &op.msg, uint32(op.flags))
	case opRecv:
		var b uintptr
		if len(op.b) > 0 {
			b = uintptr(unsafe.Pointer(&op.b[0]))
		}
		sqe.PrepareRecv(op.fd, b, uint32(len(op.b)), op.flags)
	case opRead:
		var b uintptr
		if len(op.b) > 0 {
			b = uintptr(unsafe.Pointer(&op.b[0]))
		}
		sqe.PrepareRead(op.fd, b, uint32(len(op.b)), 0)
	case opWrite:
		var b uintptr
		if len(op.b) > 0 {
			b = uintptr(unsafe.Pointer(&op.b[0]))
		}
		sqe.PrepareWrite(op.fd, b, uint32(len(op.b)), 0)
	case opReadv:
		var iovs uintptr
		if len(op.iovecs) > 0 {
			iovs = uintptr(unsafe.Pointer(&op.iovecs[0]))
		}
		sqe.PrepareReadv(op.fd, iovs, uint32(len(op.iovecs)), 0)
	case opWritev:
		var iovs uintptr
		if len(op.iovecs) > 0 {
			iovs = uintptr(unsafe.Pointer(&op.iovecs[0]))
		}
		sqe.PrepareWritev(op.fd, iovs, uint32(len(op.iovecs)), 0)
	case opFsetxattr:
		sqe.PrepareFsetxattr(op.fd, op.attrName, op.attrValue, op.flags)
	case opFgetxattr:
		sqe.PrepareFgetxattr(op.fd, op.attrName, op.attrValue)
	default:
		sqe.PrepareNop()
		err = errors.From(ErrUnsupportedOp)
		return
	}
	sqe.SetData(unsafe.Pointer(op))
	runtime.KeepAlive(sqe)
	return
}

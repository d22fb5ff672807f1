//go:build linux

package aio

import (
	"sync"
	"sync/atomic"
	"syscall"
)

// Result is the completion record of one Operation: the raw kernel result
// already split into its success value and its negated-errno failure form.
// It is written exactly once per submission and read exactly once.
type Result struct {
	N     int
	Flags uint32
	Err   error
}

const (
	readyStatus int64 = iota
	processingStatus
	completedStatus
)

type opCode uint8

const (
	opNop opCode = iota
	opAccept
	opConnect
	opShutdown
	opClose
	opSend
	opSendTo
	opRecv
	opRead
	opWrite
	opReadv
	opWritev
	opFsetxattr
	opFgetxattr
)

// Operation holds the argument tuple of exactly one asynchronous kernel
// request plus its completion record. Any memory the kernel reads or writes
// during the in-flight window is owned by the Operation itself: the address
// storage for accept, the raw sockaddr for connect and sendto, the iovec
// list for vectored transfers. Operations are pooled and heap-allocated, so
// their address is stable from submission to resolution.
//
// An Operation must be awaited after every submission and must not be
// released before its result has been received; the kernel may still write
// into its storage until then.
type Operation struct {
	code     opCode
	status   atomic.Int64
	resultCh chan Result

	fd  int
	b   []byte
	msg syscall.Msghdr

	iovecs []syscall.Iovec

	rsa    *syscall.RawSockaddrAny
	rsaLen uint32

	how   int
	flags int

	// lazy socket creation (connect)
	family int
	sotype int
	proto  int

	// xattr
	attrName  []byte
	attrValue []byte
}

var operations = sync.Pool{
	New: func() interface{} {
		return &Operation{
			code:     opNop,
			fd:       -1,
			resultCh: make(chan Result, 1),
		}
	},
}

func AcquireOperation() *Operation {
	return operations.Get().(*Operation)
}

func ReleaseOperation(op *Operation) {
	if op.reset() {
		operations.Put(op)
	}
}

func (op *Operation) reset() bool {
	if op.status.Load() == processingStatus {
		// still awaiting a kernel completion, never reuse
		return false
	}
	if len(op.resultCh) > 0 {
		<-op.resultCh
	}
	op.code = opNop
	op.fd = -1
	op.b = nil
	op.msg = syscall.Msghdr{}
	op.iovecs = nil
	op.rsa = nil
	op.rsaLen = 0
	op.how = 0
	op.flags = 0
	op.family = 0
	op.sotype = 0
	op.proto = 0
	op.attrName = nil
	op.attrValue = nil
	op.status.Store(readyStatus)
	return true
}

// submitAble moves the operation into flight. It fails when the operation
// was already submitted without an intervening reset.
func (op *Operation) submitAble() bool {
	return op.status.CompareAndSwap(readyStatus, processingStatus)
}

// failed resolves the operation before any kernel request was issued. It
// synthesizes the failure into the completion record exactly as a
// completed-and-failed kernel request would appear.
func (op *Operation) failed(err error) {
	if op.status.CompareAndSwap(readyStatus, completedStatus) ||
		op.status.CompareAndSwap(processingStatus, completedStatus) {
		op.resultCh <- Result{0, 0, err}
	}
}

// complete is the completion-queue side of the handoff: single writer,
// called once per in-flight operation.
func (op *Operation) complete(n int, flags uint32, err error) {
	if op.status.CompareAndSwap(processingStatus, completedStatus) {
		op.resultCh <- Result{n, flags, err}
	}
}

// completeRaw resolves the operation from the raw kernel result: a negative
// value is a negated error code, a non-negative value is the per-operation
// success value.
func (op *Operation) completeRaw(res int32, flags uint32) {
	if res < 0 {
		op.complete(0, flags, syscall.Errno(-res))
		return
	}
	op.complete(int(res), flags, nil)
}

// Await blocks the calling goroutine until the operation resolves, then
// returns the typed outcome. It is the suspension point of the contract:
// exactly one receive per submission.
func (op *Operation) Await() (n int, err error) {
	r := <-op.resultCh
	return r.N, r.Err
}

// prepareSubmit runs the pre-submission step of operations that create
// their own descriptor lazily. It reports whether the operation resolved
// without needing a kernel request: connect creates its socket here, and a
// creation failure short-circuits straight to resolution.
func (op *Operation) prepareSubmit() (resolved bool) {
	if op.code != opConnect || op.fd >= 0 {
		return false
	}
	sock, err := newLazySocket(op.family, op.sotype, op.proto)
	if err != nil {
		op.failed(err)
		return true
	}
	op.fd = sock
	return false
}

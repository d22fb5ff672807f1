//go:build linux

package aio

import (
	"syscall"
	"testing"

	"github.com/brickingsoft/errors"

	"github.com/brimscale/cio/pkg/sys"
)

// refusingPoller fails every submission before it reaches the kernel.
type refusingPoller struct {
	cause error
}

func (p *refusingPoller) Submit(op *Operation) SubmitOutcome {
	if !op.submitAble() {
		return SubmitResolved
	}
	op.failed(errors.From(p.cause))
	return SubmitResolved
}

func TestCloseRefusedSubmission(t *testing.T) {
	sock, sockErr := sys.NewSocket(syscall.AF_INET, syscall.SOCK_STREAM, 0)
	if sockErr != nil {
		t.Fatal("socket:", sockErr)
	}
	fd := newNetFd(&refusingPoller{cause: ErrBusy}, sock, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	if closeErr := fd.Close(); closeErr != nil {
		t.Fatal("close:", closeErr)
	}
	if _, flErr := sys.Fcntl(sock, syscall.F_GETFL, 0); !errors.Is(flErr, syscall.EBADF) {
		_ = syscall.Close(sock)
		t.Fatal("descriptor survived a refused close:", flErr)
	}
	if closeErr := fd.Close(); !IsClosed(closeErr) {
		t.Fatal("second close:", closeErr)
	}
}

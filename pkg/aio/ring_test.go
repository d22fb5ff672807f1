//go:build linux

package aio

import (
	"context"
	"syscall"
	"testing"
)

func TestRingNopRoundTrip(t *testing.T) {
	r, rErr := NewRing(RingOptions{Entries: 8})
	if rErr != nil {
		t.Skip("io_uring unavailable:", rErr)
	}
	r.Start(context.Background())
	defer r.Stop()

	op := AcquireOperation()
	defer ReleaseOperation(op)
	op.PrepareNop()
	if outcome := r.Submit(op); outcome != SubmitPending {
		t.Fatal("outcome:", outcome)
	}
	n, err := op.Await()
	if err != nil {
		t.Fatal("await:", err)
	}
	if n != 0 {
		t.Fatal("n:", n)
	}
}

func TestRingSubmitAfterStop(t *testing.T) {
	r, rErr := NewRing(RingOptions{Entries: 8})
	if rErr != nil {
		t.Skip("io_uring unavailable:", rErr)
	}
	r.Start(context.Background())
	r.Stop()

	op := AcquireOperation()
	defer ReleaseOperation(op)
	op.PrepareNop()
	if outcome := r.Submit(op); outcome != SubmitResolved {
		t.Fatal("outcome:", outcome)
	}
	if _, err := op.Await(); !IsPollerClosed(err) {
		t.Fatal("await err:", err)
	}
}

func TestSubmitRetryable(t *testing.T) {
	for _, err := range []error{syscall.EAGAIN, syscall.EINTR, syscall.ETIME} {
		if !submitRetryable(err) {
			t.Error("not retryable:", err)
		}
	}
	for _, err := range []error{syscall.EBADF, syscall.ENOMEM} {
		if submitRetryable(err) {
			t.Error("retryable:", err)
		}
	}
}

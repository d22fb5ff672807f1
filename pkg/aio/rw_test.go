//go:build linux

package aio

import (
	"bytes"
	"syscall"
	"testing"
	"unsafe"

	"github.com/brickingsoft/errors"
)

func TestWriteAllRetriesShortWrites(t *testing.T) {
	const chunk = 4
	calls := 0
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		calls++
		n := len(op.b)
		if n > chunk {
			n = chunk
		}
		return int32(n), 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	b := bytes.Repeat([]byte{'x'}, 10)
	written, err := fd.WriteAll(b)
	if err != nil {
		t.Fatal("write all:", err)
	}
	if written != len(b) {
		t.Fatal("written:", written)
	}
	if calls != 3 {
		t.Fatal("calls:", calls)
	}
}

func TestWriteAllReturnsFirstErrorVerbatim(t *testing.T) {
	calls := 0
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		calls++
		if calls == 1 {
			return 4, 0
		}
		return -int32(syscall.EPIPE), 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	written, err := fd.WriteAll(bytes.Repeat([]byte{'x'}, 10))
	if written != 4 {
		t.Fatal("written:", written)
	}
	if !errors.Is(err, syscall.EPIPE) {
		t.Fatal("err:", err)
	}
	if calls != 2 {
		t.Fatal("calls:", calls)
	}
}

func TestWriteVectoredIovecLayout(t *testing.T) {
	bufs := [][]byte{
		[]byte("abc"),
		[]byte("defgh"),
		[]byte("ij"),
	}
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		iovecs := op.Iovecs()
		if len(iovecs) != 3 {
			t.Fatal("iovecs:", len(iovecs))
		}
		total := 0
		for i, iv := range iovecs {
			if iv.Base != unsafe.SliceData(bufs[i]) {
				t.Fatal("iovec base out of order at", i)
			}
			if int(iv.Len) != len(bufs[i]) {
				t.Fatal("iovec len at", i, ":", iv.Len)
			}
			total += int(iv.Len)
		}
		return int32(total), 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	n, err := fd.WriteVectored(bufs...)
	if err != nil {
		t.Fatal("write vectored:", err)
	}
	if n != 10 {
		t.Fatal("n:", n)
	}
}

func TestReadVectoredFillsBuffersInOrder(t *testing.T) {
	bufs := [][]byte{
		make([]byte, 3),
		make([]byte, 5),
		make([]byte, 2),
	}
	payload := []byte("abcd")
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		remaining := payload
		for _, iv := range op.Iovecs() {
			if len(remaining) == 0 {
				break
			}
			dst := unsafe.Slice(iv.Base, iv.Len)
			n := copy(dst, remaining)
			remaining = remaining[n:]
		}
		return int32(len(payload)), 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	n, err := fd.ReadVectored(bufs...)
	if err != nil {
		t.Fatal("read vectored:", err)
	}
	if n != 4 {
		t.Fatal("n:", n)
	}
	if string(bufs[0]) != "abc" {
		t.Fatal("first buffer:", string(bufs[0]))
	}
	if bufs[1][0] != 'd' {
		t.Fatal("second buffer:", string(bufs[1]))
	}
	for _, b := range bufs[1][1:] {
		if b != 0 {
			t.Fatal("second buffer written past payload")
		}
	}
	for _, b := range bufs[2] {
		if b != 0 {
			t.Fatal("third buffer written")
		}
	}
}

func TestReadWriteOnClosedDescriptor(t *testing.T) {
	p := &fakePoller{}
	p.handle = func(op *Operation) (int32, uint32) {
		return 0, 0
	}
	fd := newNetFd(p, 3, syscall.AF_INET, syscall.SOCK_STREAM, 0, "tcp")
	fd.closed.Store(true)
	if _, err := fd.Read(make([]byte, 1)); !IsClosed(err) {
		t.Fatal("read err:", err)
	}
	if _, err := fd.Write([]byte{'x'}); !IsClosed(err) {
		t.Fatal("write err:", err)
	}
}

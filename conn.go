package cio

import (
	"net"
	"time"

	"github.com/brimscale/cio/pkg/aio"
)

// Conn is one established stream. Reads and writes block the calling
// goroutine until the kernel completes them; there is no readiness
// polling underneath, every call is one completion-based request.
type Conn struct {
	fd *aio.NetFd
}

func newConn(fd *aio.NetFd) *Conn {
	return &Conn{fd: fd}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	n, err = c.fd.Read(b)
	if err != nil {
		err = newOpErr(opRead, c.fd, err)
	}
	return
}

func (c *Conn) Write(b []byte) (n int, err error) {
	n, err = c.fd.Write(b)
	if err != nil {
		err = newOpErr(opWrite, c.fd, err)
	}
	return
}

// WriteAll writes the whole of b, retrying short writes. On failure the
// count written so far is reported with the first error.
func (c *Conn) WriteAll(b []byte) (written int, err error) {
	written, err = c.fd.WriteAll(b)
	if err != nil {
		err = newOpErr(opWrite, c.fd, err)
	}
	return
}

// ReadVectored scatters one read across bufs in order.
func (c *Conn) ReadVectored(bufs ...[]byte) (n int, err error) {
	n, err = c.fd.ReadVectored(bufs...)
	if err != nil {
		err = newOpErr(opRead, c.fd, err)
	}
	return
}

// WriteVectored gathers bufs into one write.
func (c *Conn) WriteVectored(bufs ...[]byte) (n int, err error) {
	n, err = c.fd.WriteVectored(bufs...)
	if err != nil {
		err = newOpErr(opWrite, c.fd, err)
	}
	return
}

func (c *Conn) Close() (err error) {
	if err = c.fd.Close(); err != nil {
		err = newOpErr(opClose, c.fd, err)
	}
	return
}

func (c *Conn) LocalAddr() net.Addr {
	return c.fd.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.fd.RemoteAddr()
}

func (c *Conn) SetNoDelay(on bool) (err error) {
	if err = c.fd.SetNoDelay(on); err != nil {
		err = newOpErr(opSet, c.fd, err)
	}
	return
}

func (c *Conn) SetKeepAlive(on bool) (err error) {
	if err = c.fd.SetKeepAlive(on); err != nil {
		err = newOpErr(opSet, c.fd, err)
	}
	return
}

// SetLinger maps a duration onto the socket linger pair; a negative
// duration disables lingering.
func (c *Conn) SetLinger(d time.Duration) (err error) {
	if err = c.fd.SetLinger(d); err != nil {
		err = newOpErr(opSet, c.fd, err)
	}
	return
}

func (c *Conn) SetReadBuffer(size int) (err error) {
	if err = c.fd.SetRecvBufferSize(size); err != nil {
		err = newOpErr(opSet, c.fd, err)
	}
	return
}

func (c *Conn) SetWriteBuffer(size int) (err error) {
	if err = c.fd.SetSendBufferSize(size); err != nil {
		err = newOpErr(opSet, c.fd, err)
	}
	return
}

// Deadlines are not implemented: operations resolve when the kernel
// completes them.
func (c *Conn) SetDeadline(time.Time) error {
	return newOpErr(opSet, c.fd, ErrDeadline)
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return newOpErr(opSet, c.fd, ErrDeadline)
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return newOpErr(opSet, c.fd, ErrDeadline)
}

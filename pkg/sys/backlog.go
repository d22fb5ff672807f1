//go:build linux

package sys

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

var (
	somaxconn   = syscall.SOMAXCONN
	backlogOnce = sync.Once{}
)

// MaxListenerBacklog returns the kernel's listen backlog limit, read once
// from /proc/sys/net/core/somaxconn and clamped to what the accept queue
// field can actually hold.
func MaxListenerBacklog() int {
	backlogOnce.Do(func() {
		fd, err := os.Open("/proc/sys/net/core/somaxconn")
		if err != nil {
			return
		}
		defer func() {
			_ = fd.Close()
		}()
		rd := bufio.NewReader(fd)
		l, readErr := rd.ReadString('\n')
		if readErr != nil {
			return
		}
		n, parseErr := strconv.Atoi(strings.TrimSpace(l))
		if parseErr != nil || n == 0 {
			return
		}
		if n > 1<<16-1 {
			n = maxAckBacklog(n)
		}
		somaxconn = n
	})
	return somaxconn
}

// maxAckBacklog mirrors the kernel clamp: the sk_max_ack_backlog field
// widened from 16 to 32 bits in linux 4.1.
func maxAckBacklog(n int) int {
	major, minor := KernelVersion()
	size := 16
	if major > 4 || (major == 4 && minor >= 1) {
		size = 32
	}
	var maxAck uint = 1<<size - 1
	if uint(n) > maxAck {
		n = int(maxAck)
	}
	return n
}

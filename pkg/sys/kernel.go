//go:build linux

package sys

import (
	"sync"

	"golang.org/x/sys/unix"
)

var (
	kernelMajor = 0
	kernelMinor = 0
	kernelOnce  = sync.Once{}
)

// KernelVersion returns the running kernel's major and minor version,
// probed once via uname(2). Both are zero when the probe fails.
func KernelVersion() (major, minor int) {
	kernelOnce.Do(func() {
		var uname unix.Utsname
		if err := unix.Uname(&uname); err != nil {
			return
		}
		var (
			values    [2]int
			value, vi int
		)
		for _, c := range uname.Release {
			if '0' <= c && c <= '9' {
				value = (value * 10) + int(c-'0')
			} else {
				values[vi] = value
				vi++
				if vi >= len(values) {
					break
				}
				value = 0
			}
		}
		kernelMajor = values[0]
		kernelMinor = values[1]
	})
	return kernelMajor, kernelMinor
}

// KernelEnable reports whether the running kernel is at least major.minor.
func KernelEnable(major int, minor int) bool {
	m, n := KernelVersion()
	if m > major {
		return true
	}
	if m == major {
		return n >= minor
	}
	return false
}

//go:build unix && !linux && !freebsd && !darwin

package heap

import "golang.org/x/sys/unix"

func (r *Region) flushRange(off, n int) error {
	start, end := pageAlign(off, n, len(r.data))
	return unix.Msync(r.data[start:end], unix.MS_SYNC)
}

func (r *Region) syncFile(bool) error {
	return unix.Fsync(int(r.f.Fd()))
}

//go:build linux || freebsd

package heap

import "golang.org/x/sys/unix"

// flushRange msyncs the pages covering the range. Linux accepts sub-slices
// of the mapping as long as they start on a page boundary.
func (r *Region) flushRange(off, n int) error {
	start, end := pageAlign(off, n, len(r.data))
	return unix.Msync(r.data[start:end], unix.MS_SYNC)
}

// syncFile uses fdatasync; full is ignored on these platforms.
func (r *Region) syncFile(bool) error {
	return unix.Fdatasync(int(r.f.Fd()))
}

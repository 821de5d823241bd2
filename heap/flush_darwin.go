//go:build darwin

package heap

import "golang.org/x/sys/unix"

// flushRange syncs the entire mapping. macOS wants the address passed to
// msync to match the mmap address, and the kernel only writes dirty pages.
func (r *Region) flushRange(int, int) error {
	return unix.Msync(r.data, unix.MS_SYNC)
}

// syncFile uses F_FULLFSYNC when full is set so data reaches the platter,
// not just the drive cache.
func (r *Region) syncFile(full bool) error {
	if full {
		_, err := unix.FcntlInt(r.f.Fd(), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(int(r.f.Fd()))
}

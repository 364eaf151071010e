//go:build unix

package blob

import (
	"os"
	"syscall"
)

// mapArchive maps the archive read-only into memory.
func mapArchive(f *os.File, size int64) ([]byte, error) {
	return syscall.Mmap(
		int(f.Fd()), //nolint:gosec // G115: file descriptor fits in int
		0,
		int(size), //nolint:gosec // G115: archive size checked by caller
		syscall.PROT_READ,
		syscall.MAP_SHARED,
	)
}

// unmapArchive releases a mapping returned by mapArchive.
func unmapArchive(data []byte) error {
	return syscall.Munmap(data)
}

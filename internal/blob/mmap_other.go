//go:build !unix && !windows

package blob

import (
	"io"
	"os"
)

// mapArchive reads the whole archive where memory mapping is unavailable.
func mapArchive(f *os.File, size int64) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

// unmapArchive is a no-op for heap-backed data.
func unmapArchive(_ []byte) error {
	return nil
}

package blob

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/pkg/errors"
)

// ZipOptions configures OpenZip.
type ZipOptions struct {
	// VerifyChecksums checks the CRC-32 of every stored entry read in full.
	VerifyChecksums bool
}

// DefaultZipOptions returns the default archive options.
func DefaultZipOptions() ZipOptions {
	return ZipOptions{VerifyChecksums: true}
}

// ZipStore serves blobs from a memory-mapped zip archive.
//
// Stored (uncompressed) entries are copied straight from the mapping;
// compressed entries are decoded through archive/zip.
//
// Important: Always call Close() when done to unmap the file (use defer).
type ZipStore struct {
	file    *os.File
	data    []byte // mapped region (read-only)
	size    int64
	entries map[string]*zip.File
	verify  bool
	closed  bool
}

// OpenZip maps the archive at path and indexes its entries.
func OpenZip(path string, opts ...ZipOptions) (*ZipStore, error) {
	opt := DefaultZipOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	//nolint:gosec // G304: archive path comes from the caller by design
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open blob archive %s", path)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "stat blob archive %s", path)
	}
	if stat.Size() == 0 {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptyArchive, path)
	}

	data, err := mapArchive(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "map blob archive %s", path)
	}

	s := &ZipStore{
		file:   file,
		data:   data,
		size:   stat.Size(),
		verify: opt.VerifyChecksums,
	}
	if err := s.index(); err != nil {
		_ = s.Close()
		return nil, errors.Wrapf(err, "read blob archive %s", path)
	}
	return s, nil
}

func (s *ZipStore) index() error {
	zr, err := zip.NewReader(bytes.NewReader(s.data), s.size)
	if err != nil {
		return err
	}
	s.entries = make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		s.entries[f.Name] = f
	}
	return nil
}

// Keys returns the entry names in sorted order.
func (s *ZipStore) Keys() []string {
	return slices.Sorted(maps.Keys(s.entries))
}

// Size implements Store.
func (s *ZipStore) Size(key string) int64 {
	f, ok := s.entries[key]
	if !ok || s.closed {
		return 0
	}
	return int64(f.UncompressedSize64) //nolint:gosec // G115: entry sizes are bounded by the mapped file
}

// Read implements Store.
func (s *ZipStore) Read(key string, dst []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	f, ok := s.entries[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if f.Method == zip.Store {
		return s.readStored(f, dst)
	}
	return readCompressed(f, dst)
}

// readStored copies a stored entry straight out of the mapping.
func (s *ZipStore) readStored(f *zip.File, dst []byte) (int, error) {
	offset, err := f.DataOffset()
	if err != nil {
		return 0, errors.Wrapf(err, "locate %q", f.Name)
	}
	size := int64(f.UncompressedSize64) //nolint:gosec // G115: bounded below
	end := offset + size
	if offset < 0 || end > s.size {
		return 0, fmt.Errorf("%w: %q: offset %d + size %d > archive size %d",
			ErrOutOfBounds, f.Name, offset, size, s.size)
	}

	payload := s.data[offset:end]
	n := copy(dst, payload)
	if s.verify && n == len(payload) {
		if err := ValidateChecksum(ComputeChecksum(payload), f.CRC32); err != nil {
			return n, fmt.Errorf("%w: %q", err, f.Name)
		}
	}
	return n, nil
}

func readCompressed(f *zip.File, dst []byte) (int, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, errors.Wrapf(err, "open %q", f.Name)
	}
	defer func() { _ = rc.Close() }()

	want := min(int64(len(dst)), int64(f.UncompressedSize64)) //nolint:gosec // G115: bounded by dst
	n, err := io.ReadFull(rc, dst[:want])
	if err != nil {
		return n, errors.Wrapf(err, "inflate %q", f.Name)
	}
	return n, nil
}

// Close unmaps and closes the archive.
func (s *ZipStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.data != nil {
		err = unmapArchive(s.data)
		s.data = nil
	}
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

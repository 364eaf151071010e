package blob

import (
	"archive/zip"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Writer builds a blob archive. Entries written with Put are stored
// uncompressed so ZipStore can serve them from the mapping.
type Writer struct {
	zw     *zip.Writer
	closer io.Closer
}

// NewWriter returns a Writer emitting an archive to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w)}
}

// Create creates (or truncates) the archive at path.
func Create(path string) (*Writer, error) {
	//nolint:gosec // G304: output path comes from the caller by design
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create blob archive %s", path)
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// Put adds an uncompressed entry.
func (w *Writer) Put(key string, data []byte) error {
	return w.put(key, data, zip.Store)
}

// PutDeflated adds a deflate-compressed entry.
func (w *Writer) PutDeflated(key string, data []byte) error {
	return w.put(key, data, zip.Deflate)
}

func (w *Writer) put(key string, data []byte, method uint16) error {
	entry, err := w.zw.CreateHeader(&zip.FileHeader{Name: key, Method: method})
	if err != nil {
		return errors.Wrapf(err, "add entry %q", key)
	}
	if _, err := entry.Write(data); err != nil {
		return errors.Wrapf(err, "write entry %q", key)
	}
	return nil
}

// Close finishes the archive and closes the underlying file, if any.
func (w *Writer) Close() error {
	err := w.zw.Close()
	if w.closer != nil {
		if closeErr := w.closer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

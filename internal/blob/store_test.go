package blob

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, stored, deflated map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.bin")

	w, err := Create(path)
	require.NoError(t, err)
	for k, v := range stored {
		require.NoError(t, w.Put(k, v))
	}
	for k, v := range deflated {
		require.NoError(t, w.PutDeflated(k, v))
	}
	require.NoError(t, w.Close())
	return path
}

func TestZipStore_Stored(t *testing.T) {
	weight := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	path := writeArchive(t, map[string][]byte{
		"conv1.weight": weight,
		"conv1.bias":   {9, 9, 9, 9},
	}, nil)

	s, err := OpenZip(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, []string{"conv1.bias", "conv1.weight"}, s.Keys())
	assert.Equal(t, int64(8), s.Size("conv1.weight"))
	assert.Equal(t, int64(0), s.Size("missing"))

	dst := make([]byte, 8)
	n, err := s.Read("conv1.weight", dst)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, weight, dst)

	// Returned bytes are a copy, not a view of the mapping.
	dst[0] = 42
	again := make([]byte, 8)
	_, err = s.Read("conv1.weight", again)
	require.NoError(t, err)
	assert.Equal(t, byte(1), again[0])
}

func TestZipStore_ShortAndLongDestination(t *testing.T) {
	path := writeArchive(t, map[string][]byte{"op.w": {1, 2, 3, 4}}, nil)
	s, err := OpenZip(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	short := make([]byte, 2)
	n, err := s.Read("op.w", short)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{1, 2}, short)

	long := make([]byte, 6)
	n, err = s.Read("op.w", long)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0}, long)
}

func TestZipStore_Deflated(t *testing.T) {
	payload := bytes.Repeat([]byte{7, 3}, 512)
	path := writeArchive(t, nil, map[string][]byte{"fc.weight": payload})

	s, err := OpenZip(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, int64(len(payload)), s.Size("fc.weight"))
	dst := make([]byte, len(payload))
	n, err := s.Read("fc.weight", dst)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, dst)
}

func TestZipStore_NotFound(t *testing.T) {
	path := writeArchive(t, map[string][]byte{"a.b": {1}}, nil)
	s, err := OpenZip(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Read("x.y", make([]byte, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestZipStore_Closed(t *testing.T) {
	path := writeArchive(t, map[string][]byte{"a.b": {1}}, nil)
	s, err := OpenZip(path)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "double close is a no-op")

	_, err = s.Read("a.b", make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, int64(0), s.Size("a.b"))
}

func TestOpenZip_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenZip(filepath.Join(dir, "missing.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = OpenZip(empty)
	assert.ErrorIs(t, err, ErrEmptyArchive)

	garbage := filepath.Join(dir, "garbage.bin")
	require.NoError(t, os.WriteFile(garbage, []byte("not a zip archive"), 0o600))
	_, err = OpenZip(garbage)
	require.Error(t, err)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore(nil)
	s.Put("b.w", []byte{1, 2})
	s.Put("a.w", []byte{3})

	assert.Equal(t, []string{"a.w", "b.w"}, s.Keys())
	assert.Equal(t, int64(2), s.Size("b.w"))
	assert.Equal(t, int64(0), s.Size("c.w"))

	dst := make([]byte, 2)
	n, err := s.Read("b.w", dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Read("c.w", dst)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Close())
}

func TestChecksum(t *testing.T) {
	data := []byte("kuiper")
	sum := ComputeChecksum(data)

	assert.NoError(t, ValidateChecksum(sum, sum))
	assert.ErrorIs(t, ValidateChecksum(sum, sum+1), ErrChecksumMismatch)
}

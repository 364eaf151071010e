// Package blob provides the key-addressed binary containers that supply
// attribute payloads to the graph loader.
//
// Keys have the form "<operator_name>.<attribute_name>". The on-disk format
// is a zip archive whose entries are normally stored uncompressed, so
// payloads can be copied straight out of a memory mapping.
package blob

import (
	"fmt"
	"maps"
	"slices"
)

// Store is a read-only, random-access blob container.
type Store interface {
	// Size returns the payload size of key, or 0 if the key is absent.
	Size(key string) int64

	// Read copies up to len(dst) bytes of key's payload into dst and
	// returns the number of bytes copied.
	Read(key string, dst []byte) (int, error)

	// Close releases the store's resources.
	Close() error
}

// MemStore is an in-memory Store.
type MemStore struct {
	blobs map[string][]byte
}

// NewMemStore returns a store serving blobs. The map is not copied.
func NewMemStore(blobs map[string][]byte) *MemStore {
	if blobs == nil {
		blobs = make(map[string][]byte)
	}
	return &MemStore{blobs: blobs}
}

// Put adds or replaces a blob.
func (s *MemStore) Put(key string, data []byte) {
	s.blobs[key] = data
}

// Size implements Store.
func (s *MemStore) Size(key string) int64 {
	return int64(len(s.blobs[key]))
}

// Read implements Store.
func (s *MemStore) Read(key string, dst []byte) (int, error) {
	data, ok := s.blobs[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return copy(dst, data), nil
}

// Keys returns the stored keys in sorted order.
func (s *MemStore) Keys() []string {
	return slices.Sorted(maps.Keys(s.blobs))
}

// Close implements Store.
func (s *MemStore) Close() error {
	return nil
}

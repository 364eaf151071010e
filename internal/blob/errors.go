package blob

import "errors"

// Common errors.
var (
	ErrNotFound         = errors.New("blob not found")
	ErrClosed           = errors.New("blob store is closed")
	ErrChecksumMismatch = errors.New("checksum mismatch: archive may be corrupted")
	ErrOutOfBounds      = errors.New("blob extends beyond archive")
	ErrEmptyArchive     = errors.New("archive is empty")
)

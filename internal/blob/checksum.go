package blob

import (
	"hash/crc32"
)

// ComputeChecksum computes the CRC-32 (IEEE) checksum zip uses for entries.
func ComputeChecksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored uint32) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

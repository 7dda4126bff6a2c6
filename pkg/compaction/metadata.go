package compaction

import (
	"bytes"
	"fmt"

	"github.com/sievedb/sieve/pkg/common/cursor"
)

// FileMetadata describes one immutable sorted file to the scheduler. It is
// produced by the executor that wrote the file and never mutated; the
// scheduler only reads it. Key ranges are inclusive on both ends.
type FileMetadata struct {
	// Fingerprint is the content checksum identifying the file
	Fingerprint cursor.Fingerprint

	// FirstKey is the smallest key in the file
	FirstKey []byte

	// LastKey is the largest key in the file
	LastKey []byte

	// SmallestTimestamp is the oldest timestamp in the file
	SmallestTimestamp uint64

	// BiggestTimestamp is the newest timestamp in the file
	BiggestTimestamp uint64

	// Size is the approximate size of the file in bytes
	Size uint64
}

// Overlaps checks if this file's key range overlaps with another file's
func (m *FileMetadata) Overlaps(other *FileMetadata) bool {
	// Ranges are inclusive: disjoint iff one ends before the other starts
	return bytes.Compare(m.FirstKey, other.LastKey) <= 0 &&
		bytes.Compare(other.FirstKey, m.LastKey) <= 0
}

// KeyRange returns a string representation of the key range in this file
func (m *FileMetadata) KeyRange() string {
	return fmt.Sprintf("[%s, %s]", string(m.FirstKey), string(m.LastKey))
}

// String returns a string representation of the file metadata
func (m *FileMetadata) String() string {
	return fmt.Sprintf("%s Size:%d Ts:[%d,%d] Range:%s",
		m.Fingerprint, m.Size, m.SmallestTimestamp, m.BiggestTimestamp, m.KeyRange())
}

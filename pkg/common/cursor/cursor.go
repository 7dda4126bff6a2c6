// Package cursor defines the capability interfaces the compaction and
// retention engine consumes: positioned iteration over sorted
// (key, timestamp, value) triples and construction of new sorted files.
// Implementations live with the storage layer; this package only fixes
// the contract so the engine's decisions can be expressed against it.
package cursor

import (
	"encoding/hex"
	"fmt"
)

// Fingerprint identifies the content of an immutable sorted file. It is an
// opaque, order-independent, combinable checksum over every triple the file
// holds, produced by the collaborator that writes the file. Two files with
// equal fingerprints hold identical content.
type Fingerprint [32]byte

// String returns the hex representation of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ParseFingerprint decodes a 64-character hex string into a Fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("invalid fingerprint: %w", err)
	}
	if len(b) != len(f) {
		return f, fmt.Errorf("invalid fingerprint: need %d bytes, got %d", len(f), len(b))
	}
	copy(f[:], b)
	return f, nil
}

// Entry is one (key, timestamp, value) triple. A tombstone is an entry with
// Tombstone set and a nil Value.
type Entry struct {
	Key       []byte
	Timestamp uint64
	Value     []byte
	Tombstone bool
}

// Cursor provides positioned iteration over sorted entries.
//
// Entries are ordered ascending by key, and within a key descending by
// timestamp (newest version first). After any seek or step the cursor is
// either positioned at a valid entry or exhausted; Valid reports which.
type Cursor interface {
	// SeekToFirst positions the cursor at the first entry
	SeekToFirst() error

	// SeekToLast positions the cursor at the last entry
	SeekToLast() error

	// Seek positions the cursor at the first entry with key >= target
	Seek(target []byte) error

	// Next advances the cursor to the next entry
	Next() error

	// Prev moves the cursor to the previous entry
	Prev() error

	// Valid returns true if the cursor is positioned at a valid entry
	Valid() bool

	// Key returns the key of the current entry
	Key() []byte

	// Timestamp returns the timestamp of the current entry
	Timestamp() uint64

	// Value returns the value of the current entry, nil for a tombstone
	Value() []byte

	// IsTombstone returns true if the current entry is a deletion marker
	IsTombstone() bool
}

// Builder accumulates sorted entries into a new immutable file. Put and
// Delete must be called in cursor order (ascending key, descending timestamp
// within a key). Seal finishes the file and returns its fingerprint.
type Builder interface {
	// Put adds a value entry to the file under construction
	Put(key []byte, timestamp uint64, value []byte) error

	// Delete adds a tombstone entry to the file under construction
	Delete(key []byte, timestamp uint64) error

	// Seal finishes the file and returns its content fingerprint
	Seal() (Fingerprint, error)
}

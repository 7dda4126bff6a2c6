package compaction

import "errors"

var (
	// ErrCorruption indicates malformed file metadata, such as an inverted
	// timestamp range. It aborts the scheduling pass that observed it.
	ErrCorruption = errors.New("corrupted metadata")

	// ErrUnknownFile indicates an edit referenced a fingerprint that is not
	// part of the graph.
	ErrUnknownFile = errors.New("unknown file")

	// ErrDuplicateFile indicates an edit added a fingerprint that is already
	// part of the graph.
	ErrDuplicateFile = errors.New("duplicate file")
)

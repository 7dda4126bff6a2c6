package cursor

import "bytes"

// SliceCursor is a Cursor over an in-memory slice of entries. The entries
// must already be in cursor order (ascending key, descending timestamp
// within a key). It is used by tests and by executors that stage small
// batches in memory.
type SliceCursor struct {
	entries []Entry
	index   int
}

// NewSliceCursor creates a cursor over the given entries, positioned at the
// first entry.
func NewSliceCursor(entries []Entry) *SliceCursor {
	return &SliceCursor{entries: entries}
}

// SeekToFirst positions the cursor at the first entry
func (c *SliceCursor) SeekToFirst() error {
	c.index = 0
	return nil
}

// SeekToLast positions the cursor at the last entry
func (c *SliceCursor) SeekToLast() error {
	if len(c.entries) == 0 {
		c.index = 0
		return nil
	}
	c.index = len(c.entries) - 1
	return nil
}

// Seek positions the cursor at the first entry with key >= target
func (c *SliceCursor) Seek(target []byte) error {
	for i := range c.entries {
		if bytes.Compare(c.entries[i].Key, target) >= 0 {
			c.index = i
			return nil
		}
	}
	c.index = len(c.entries)
	return nil
}

// Next advances the cursor to the next entry
func (c *SliceCursor) Next() error {
	if c.index < len(c.entries) {
		c.index++
	}
	return nil
}

// Prev moves the cursor to the previous entry
func (c *SliceCursor) Prev() error {
	if c.index > 0 {
		c.index--
	}
	return nil
}

// Valid returns true if the cursor is positioned at a valid entry
func (c *SliceCursor) Valid() bool {
	return c.index >= 0 && c.index < len(c.entries)
}

// Key returns the key of the current entry
func (c *SliceCursor) Key() []byte {
	if !c.Valid() {
		return nil
	}
	return c.entries[c.index].Key
}

// Timestamp returns the timestamp of the current entry
func (c *SliceCursor) Timestamp() uint64 {
	if !c.Valid() {
		return 0
	}
	return c.entries[c.index].Timestamp
}

// Value returns the value of the current entry, nil for a tombstone
func (c *SliceCursor) Value() []byte {
	if !c.Valid() {
		return nil
	}
	return c.entries[c.index].Value
}

// IsTombstone returns true if the current entry is a deletion marker
func (c *SliceCursor) IsTombstone() bool {
	if !c.Valid() {
		return false
	}
	return c.entries[c.index].Tombstone
}

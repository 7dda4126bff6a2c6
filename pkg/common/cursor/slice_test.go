package cursor

import (
	"bytes"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Key: []byte("a"), Timestamp: 5, Value: []byte("v1")},
		{Key: []byte("a"), Timestamp: 3, Value: nil, Tombstone: true},
		{Key: []byte("b"), Timestamp: 7, Value: []byte("v2")},
		{Key: []byte("d"), Timestamp: 1, Value: []byte("v3")},
	}
}

func TestSliceCursorIteration(t *testing.T) {
	c := NewSliceCursor(testEntries())

	if err := c.SeekToFirst(); err != nil {
		t.Fatalf("SeekToFirst failed: %v", err)
	}

	var keys []string
	for c.Valid() {
		keys = append(keys, string(c.Key()))
		if err := c.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}

	expected := []string{"a", "a", "b", "d"}
	if len(keys) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(keys))
	}
	for i, k := range expected {
		if keys[i] != k {
			t.Errorf("Entry %d: expected key %q, got %q", i, k, keys[i])
		}
	}
}

func TestSliceCursorTombstone(t *testing.T) {
	c := NewSliceCursor(testEntries())

	if err := c.SeekToFirst(); err != nil {
		t.Fatalf("SeekToFirst failed: %v", err)
	}
	if c.IsTombstone() {
		t.Error("First entry should not be a tombstone")
	}
	if err := c.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !c.IsTombstone() {
		t.Error("Second entry should be a tombstone")
	}
	if c.Value() != nil {
		t.Error("Tombstone should have nil value")
	}
	if c.Timestamp() != 3 {
		t.Errorf("Expected timestamp 3, got %d", c.Timestamp())
	}
}

func TestSliceCursorSeek(t *testing.T) {
	c := NewSliceCursor(testEntries())

	// Seek to an absent key lands on the next present key
	if err := c.Seek([]byte("c")); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if !c.Valid() {
		t.Fatal("Cursor should be valid after seek to c")
	}
	if !bytes.Equal(c.Key(), []byte("d")) {
		t.Errorf("Expected key d, got %q", c.Key())
	}

	// Seek past the end exhausts the cursor
	if err := c.Seek([]byte("z")); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if c.Valid() {
		t.Error("Cursor should be exhausted after seek past end")
	}
}

func TestSliceCursorPrev(t *testing.T) {
	c := NewSliceCursor(testEntries())

	if err := c.SeekToLast(); err != nil {
		t.Fatalf("SeekToLast failed: %v", err)
	}
	if !bytes.Equal(c.Key(), []byte("d")) {
		t.Errorf("Expected key d, got %q", c.Key())
	}
	if err := c.Prev(); err != nil {
		t.Fatalf("Prev failed: %v", err)
	}
	if !bytes.Equal(c.Key(), []byte("b")) {
		t.Errorf("Expected key b, got %q", c.Key())
	}
}

func TestSliceCursorEmpty(t *testing.T) {
	c := NewSliceCursor(nil)

	if err := c.SeekToFirst(); err != nil {
		t.Fatalf("SeekToFirst failed: %v", err)
	}
	if c.Valid() {
		t.Error("Empty cursor should not be valid")
	}
	if c.Key() != nil {
		t.Error("Empty cursor should return nil key")
	}
}

func TestFingerprintRoundTrip(t *testing.T) {
	var f Fingerprint
	for i := range f {
		f[i] = byte(i)
	}

	parsed, err := ParseFingerprint(f.String())
	if err != nil {
		t.Fatalf("ParseFingerprint failed: %v", err)
	}
	if parsed != f {
		t.Errorf("Round trip mismatch: %s != %s", parsed, f)
	}
}

func TestParseFingerprintInvalid(t *testing.T) {
	if _, err := ParseFingerprint("zz"); err == nil {
		t.Error("Expected error for non-hex input")
	}
	if _, err := ParseFingerprint("abcd"); err == nil {
		t.Error("Expected error for short input")
	}
}

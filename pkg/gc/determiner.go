// ABOUTME: Streaming retention determiners compiled from garbage collection policies
// ABOUTME: Each determiner decides key-by-key whether a value and its covering tombstones survive

package gc

import "bytes"

// Determiner decides, for a stream of sorted keys, whether each value
// should be retained. tombstones holds the timestamps of the tombstones
// covering the value, newest first; valueTimestamp is the value's own
// timestamp.
//
// Determiners are stateful and must see every value of the stream in
// order, including values that end up dropped.
type Determiner interface {
	// Retain reports whether the value and its covering tombstones should
	// be retained.
	Retain(key []byte, tombstones []uint64, valueTimestamp uint64) bool
}

// versionsDeterminer retains until the configured number of versions has
// been kept for the current key, then drops everything older. A bare value
// counts as one version; a tombstone-covered value counts as two.
type versionsDeterminer struct {
	limit uint64
	key   []byte
	count uint64
}

func (d *versionsDeterminer) Retain(key []byte, tombstones []uint64, valueTimestamp uint64) bool {
	if !bytes.Equal(d.key, key) {
		d.key = append(d.key[:0], key...)
		if len(tombstones) == 0 {
			d.count = 1
			return true
		}
		d.count = 2
		return d.count <= d.limit
	}
	if len(tombstones) == 0 {
		d.count++
	} else {
		d.count += 2
	}
	return d.count <= d.limit
}

// expiresDeterminer retains values at or after a fixed timestamp threshold.
type expiresDeterminer struct {
	threshold uint64
}

func (d *expiresDeterminer) Retain(key []byte, tombstones []uint64, valueTimestamp uint64) bool {
	return valueTimestamp >= d.threshold
}

// anyDeterminer retains when any member would retain. Every member sees
// every value so that stateful members keep counting; no short-circuit.
type anyDeterminer struct {
	members []Determiner
}

func (d *anyDeterminer) Retain(key []byte, tombstones []uint64, valueTimestamp uint64) bool {
	retain := false
	for _, m := range d.members {
		if m.Retain(key, tombstones, valueTimestamp) {
			retain = true
		}
	}
	return retain
}

// allDeterminer retains only when every member would retain. Every member
// sees every value; no short-circuit.
type allDeterminer struct {
	members []Determiner
}

func (d *allDeterminer) Retain(key []byte, tombstones []uint64, valueTimestamp uint64) bool {
	retain := true
	for _, m := range d.members {
		if !m.Retain(key, tombstones, valueTimestamp) {
			retain = false
		}
	}
	return retain
}

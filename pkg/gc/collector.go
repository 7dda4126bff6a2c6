// ABOUTME: Garbage-collecting cursor walk that yields the boundaries of retained data
// ABOUTME: Wires retention decisions to logging, telemetry metrics, and statistics

package gc

import (
	"bytes"
	"context"

	"github.com/sievedb/sieve/pkg/common/cursor"
	"github.com/sievedb/sieve/pkg/common/log"
	"github.com/sievedb/sieve/pkg/stats"
)

// Boundary marks a retained entry: the key and the timestamp at which it
// survives garbage collection.
type Boundary struct {
	// Key is the retained entry's key
	Key []byte

	// Timestamp is the retained entry's timestamp
	Timestamp uint64
}

// GarbageCollector walks a sorted cursor and yields, per retained value,
// the boundaries the rewrite must keep. Built by NewCollector.
type GarbageCollector struct {
	ctx        context.Context
	cur        cursor.Cursor
	determiner Determiner
	key        []byte
	logger     log.Logger
	metrics    GCMetrics
	stats      stats.Collector
}

// CollectorOption is a function that configures a GarbageCollector
type CollectorOption func(*GarbageCollector)

// WithLogger sets the logger used by the collector
func WithLogger(logger log.Logger) CollectorOption {
	return func(gc *GarbageCollector) {
		gc.logger = logger
	}
}

// WithMetrics sets the telemetry metrics sink used by the collector
func WithMetrics(metrics GCMetrics) CollectorOption {
	return func(gc *GarbageCollector) {
		gc.metrics = metrics
	}
}

// WithStats sets the statistics collector used by the collector
func WithStats(collector stats.Collector) CollectorOption {
	return func(gc *GarbageCollector) {
		gc.stats = collector
	}
}

// NewCollector takes a cursor positioned at the first entry to be
// considered for garbage collection and returns a collector that will run
// the cursor to exhaustion. nowMicros anchors age-based policies.
func NewCollector(ctx context.Context, policy Policy, cur cursor.Cursor, nowMicros uint64, options ...CollectorOption) (*GarbageCollector, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	gc := &GarbageCollector{
		ctx:        ctx,
		cur:        cur,
		determiner: policy.Determiner(nowMicros),
		logger:     log.GetDefaultLogger().WithField("component", "gc"),
		metrics:    NewNoopGCMetrics(),
		stats:      stats.NewAtomicCollector(),
	}
	for _, option := range options {
		option(gc)
	}

	if cur.Valid() {
		gc.key = append([]byte(nil), cur.Key()...)
	}
	gc.logger.Debug("garbage collector ready: policy %s, now %d", policy, nowMicros)
	return gc, nil
}

// Next returns the boundaries of the next retained value: the value's own
// (key, timestamp), preceded by the oldest covering tombstone's when the
// value is tombstone-covered. Exhaustion returns (nil, nil).
func (gc *GarbageCollector) Next() ([]Boundary, error) {
iterating:
	for gc.cur.Valid() {
		var tombstones []uint64
		for gc.cur.Valid() && bytes.Equal(gc.cur.Key(), gc.key) {
			if !gc.cur.IsTombstone() {
				ts := gc.cur.Timestamp()
				if err := gc.cur.Next(); err != nil {
					gc.stats.TrackError("gc_cursor")
					return nil, err
				}
				if gc.determiner.Retain(gc.key, tombstones, ts) {
					gc.stats.TrackGCKey(true)
					gc.metrics.RecordRetained(gc.ctx, len(tombstones))
					return gc.boundaries(ts, tombstones), nil
				}
				gc.stats.TrackGCKey(false)
				gc.metrics.RecordDropped(gc.ctx, len(tombstones)+1)
				continue iterating
			}
			tombstones = append(tombstones, gc.cur.Timestamp())
			if err := gc.cur.Next(); err != nil {
				gc.stats.TrackError("gc_cursor")
				return nil, err
			}
		}
		if !gc.cur.Valid() {
			// Trailing tombstones cover nothing and are dropped.
			if len(tombstones) > 0 {
				gc.metrics.RecordDropped(gc.ctx, len(tombstones))
			}
			break
		}
		// A new key; the loop above advances through it next time around.
		gc.key = append(gc.key[:0], gc.cur.Key()...)
	}
	return nil, nil
}

// Drain runs the collector to exhaustion and returns every boundary in
// stream order.
func (gc *GarbageCollector) Drain() ([]Boundary, error) {
	var out []Boundary
	for {
		boundaries, err := gc.Next()
		if err != nil {
			return nil, err
		}
		if boundaries == nil {
			return out, nil
		}
		out = append(out, boundaries...)
	}
}

// boundaries copies the current key once and emits one or two boundaries.
// tombstones are accumulated newest first, so the last is the oldest.
func (gc *GarbageCollector) boundaries(valueTimestamp uint64, tombstones []uint64) []Boundary {
	key := append([]byte(nil), gc.key...)
	if len(tombstones) > 0 {
		return []Boundary{
			{Key: key, Timestamp: tombstones[len(tombstones)-1]},
			{Key: key, Timestamp: valueTimestamp},
		}
	}
	return []Boundary{{Key: key, Timestamp: valueTimestamp}}
}

package stats

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// OperationType names an engine operation for counting purposes.
type OperationType string

const (
	OpPlan    OperationType = "plan"
	OpEdit    OperationType = "edit"
	OpCollect OperationType = "collect"
	OpParse   OperationType = "parse"
)

// AtomicCollector counts scheduling and retention activity with atomics so
// hot paths never serialize on a lock. The maps only take a write lock when a
// new operation or error type shows up.
type AtomicCollector struct {
	counts   map[OperationType]*atomic.Uint64
	countsMu sync.RWMutex

	lastOpTime   map[OperationType]time.Time
	lastOpTimeMu sync.RWMutex

	proposalsAccepted atomic.Uint64
	proposalsSkipped  atomic.Uint64
	bytesScheduled    atomic.Uint64
	bytesDiscarded    atomic.Uint64

	keysRetained atomic.Uint64
	keysDropped  atomic.Uint64

	errors   map[string]*atomic.Uint64
	errorsMu sync.RWMutex

	latencies   map[OperationType]*LatencyTracker
	latenciesMu sync.RWMutex
}

// LatencyTracker keeps running count/sum/min/max of latencies in nanoseconds.
// min stays 0 until the first sample lands.
type LatencyTracker struct {
	count atomic.Uint64
	sum   atomic.Uint64
	max   atomic.Uint64
	min   atomic.Uint64
}

func (t *LatencyTracker) observe(latencyNs uint64) {
	t.count.Add(1)
	t.sum.Add(latencyNs)

	for {
		current := t.max.Load()
		if latencyNs <= current || t.max.CompareAndSwap(current, latencyNs) {
			break
		}
	}
	for {
		current := t.min.Load()
		if current != 0 && latencyNs >= current {
			break
		}
		if t.min.CompareAndSwap(current, latencyNs) {
			break
		}
	}
}

// NewAtomicCollector creates an empty collector.
func NewAtomicCollector() *AtomicCollector {
	return &AtomicCollector{
		counts:     make(map[OperationType]*atomic.Uint64),
		lastOpTime: make(map[OperationType]time.Time),
		errors:     make(map[string]*atomic.Uint64),
		latencies:  make(map[OperationType]*LatencyTracker),
	}
}

// TrackOperation counts one occurrence of op.
func (c *AtomicCollector) TrackOperation(op OperationType) {
	c.counterFor(op).Add(1)
	c.touch(op)
}

// TrackOperationWithLatency counts one occurrence of op and folds its latency
// into the running statistics.
func (c *AtomicCollector) TrackOperationWithLatency(op OperationType, latencyNs uint64) {
	c.counterFor(op).Add(1)
	c.touch(op)
	c.latencyFor(op).observe(latencyNs)
}

// TrackError counts one error of the given type.
func (c *AtomicCollector) TrackError(errorType string) {
	c.errorsMu.RLock()
	counter, ok := c.errors[errorType]
	c.errorsMu.RUnlock()

	if !ok {
		c.errorsMu.Lock()
		if counter, ok = c.errors[errorType]; !ok {
			counter = &atomic.Uint64{}
			c.errors[errorType] = counter
		}
		c.errorsMu.Unlock()
	}

	counter.Add(1)
}

// TrackProposal records whether a compaction proposal was accepted or skipped
// for conflicting with an earlier one.
func (c *AtomicCollector) TrackProposal(accepted bool) {
	if accepted {
		c.proposalsAccepted.Add(1)
	} else {
		c.proposalsSkipped.Add(1)
	}
}

// TrackGCKey records the fate of one key during a retention pass
func (c *AtomicCollector) TrackGCKey(retained bool) {
	if retained {
		c.keysRetained.Add(1)
	} else {
		c.keysDropped.Add(1)
	}
}

// TrackBytes accumulates bytes into the scheduled or discarded total.
func (c *AtomicCollector) TrackBytes(scheduled bool, bytes uint64) {
	if scheduled {
		c.bytesScheduled.Add(bytes)
	} else {
		c.bytesDiscarded.Add(bytes)
	}
}

// GetStats snapshots every counter into a map. Latency entries appear only
// for operations that have recorded at least one sample.
func (c *AtomicCollector) GetStats() map[string]interface{} {
	stats := make(map[string]interface{})

	c.countsMu.RLock()
	for op, counter := range c.counts {
		stats[string(op)+"_ops"] = counter.Load()
	}
	c.countsMu.RUnlock()

	c.lastOpTimeMu.RLock()
	for op, timestamp := range c.lastOpTime {
		stats["last_"+string(op)+"_time"] = timestamp.UnixNano()
	}
	c.lastOpTimeMu.RUnlock()

	stats["proposals_accepted"] = c.proposalsAccepted.Load()
	stats["proposals_skipped"] = c.proposalsSkipped.Load()
	stats["bytes_scheduled"] = c.bytesScheduled.Load()
	stats["bytes_discarded"] = c.bytesDiscarded.Load()

	stats["keys_retained"] = c.keysRetained.Load()
	stats["keys_dropped"] = c.keysDropped.Load()

	c.errorsMu.RLock()
	errorStats := make(map[string]uint64, len(c.errors))
	for errType, counter := range c.errors {
		errorStats[errType] = counter.Load()
	}
	c.errorsMu.RUnlock()
	stats["errors"] = errorStats

	c.latenciesMu.RLock()
	for op, tracker := range c.latencies {
		count := tracker.count.Load()
		if count == 0 {
			continue
		}

		latencyStats := map[string]interface{}{
			"count":  count,
			"avg_ns": tracker.sum.Load() / count,
		}
		if min := tracker.min.Load(); min != 0 {
			latencyStats["min_ns"] = min
		}
		if max := tracker.max.Load(); max != 0 {
			latencyStats["max_ns"] = max
		}

		stats[string(op)+"_latency"] = latencyStats
	}
	c.latenciesMu.RUnlock()

	return stats
}

// GetStatsFiltered returns the subset of GetStats whose keys carry prefix.
// An empty prefix returns everything.
func (c *AtomicCollector) GetStatsFiltered(prefix string) map[string]interface{} {
	filtered := make(map[string]interface{})
	for key, value := range c.GetStats() {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			filtered[key] = value
		}
	}
	return filtered
}

func (c *AtomicCollector) touch(op OperationType) {
	c.lastOpTimeMu.Lock()
	c.lastOpTime[op] = time.Now()
	c.lastOpTimeMu.Unlock()
}

func (c *AtomicCollector) counterFor(op OperationType) *atomic.Uint64 {
	c.countsMu.RLock()
	counter, ok := c.counts[op]
	c.countsMu.RUnlock()

	if !ok {
		c.countsMu.Lock()
		if counter, ok = c.counts[op]; !ok {
			counter = &atomic.Uint64{}
			c.counts[op] = counter
		}
		c.countsMu.Unlock()
	}

	return counter
}

func (c *AtomicCollector) latencyFor(op OperationType) *LatencyTracker {
	c.latenciesMu.RLock()
	tracker, ok := c.latencies[op]
	c.latenciesMu.RUnlock()

	if !ok {
		c.latenciesMu.Lock()
		if tracker, ok = c.latencies[op]; !ok {
			tracker = &LatencyTracker{}
			c.latencies[op] = tracker
		}
		c.latenciesMu.Unlock()
	}

	return tracker
}

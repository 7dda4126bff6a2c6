package stats

import (
	"sync"
	"testing"
)

func TestCollector_TrackOperation(t *testing.T) {
	collector := NewAtomicCollector()

	// Track operations
	collector.TrackOperation(OpPlan)
	collector.TrackOperation(OpPlan)
	collector.TrackOperation(OpEdit)

	// Get stats
	stats := collector.GetStats()

	// Verify counts
	if stats["plan_ops"].(uint64) != 2 {
		t.Errorf("Expected 2 plan operations, got %v", stats["plan_ops"])
	}

	if stats["edit_ops"].(uint64) != 1 {
		t.Errorf("Expected 1 edit operation, got %v", stats["edit_ops"])
	}

	// Verify last operation times exist
	if _, exists := stats["last_plan_time"]; !exists {
		t.Errorf("Expected last_plan_time to exist in stats")
	}

	if _, exists := stats["last_edit_time"]; !exists {
		t.Errorf("Expected last_edit_time to exist in stats")
	}
}

func TestCollector_TrackOperationWithLatency(t *testing.T) {
	collector := NewAtomicCollector()

	// Track operations with latency
	collector.TrackOperationWithLatency(OpPlan, 100)
	collector.TrackOperationWithLatency(OpPlan, 200)
	collector.TrackOperationWithLatency(OpPlan, 300)

	// Get stats
	stats := collector.GetStats()

	// Check latency stats
	latencyStats, ok := stats["plan_latency"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected plan_latency to be a map, got %T", stats["plan_latency"])
	}

	if count := latencyStats["count"].(uint64); count != 3 {
		t.Errorf("Expected 3 latency records, got %v", count)
	}

	if avg := latencyStats["avg_ns"].(uint64); avg != 200 {
		t.Errorf("Expected average latency 200ns, got %v", avg)
	}

	if min := latencyStats["min_ns"].(uint64); min != 100 {
		t.Errorf("Expected min latency 100ns, got %v", min)
	}

	if max := latencyStats["max_ns"].(uint64); max != 300 {
		t.Errorf("Expected max latency 300ns, got %v", max)
	}
}

func TestCollector_TrackProposal(t *testing.T) {
	collector := NewAtomicCollector()

	collector.TrackProposal(true)
	collector.TrackProposal(true)
	collector.TrackProposal(false)

	stats := collector.GetStats()

	if stats["proposals_accepted"].(uint64) != 2 {
		t.Errorf("Expected 2 accepted proposals, got %v", stats["proposals_accepted"])
	}
	if stats["proposals_skipped"].(uint64) != 1 {
		t.Errorf("Expected 1 skipped proposal, got %v", stats["proposals_skipped"])
	}
}

func TestCollector_TrackGCKey(t *testing.T) {
	collector := NewAtomicCollector()

	collector.TrackGCKey(true)
	collector.TrackGCKey(false)
	collector.TrackGCKey(false)

	stats := collector.GetStats()

	if stats["keys_retained"].(uint64) != 1 {
		t.Errorf("Expected 1 retained key, got %v", stats["keys_retained"])
	}
	if stats["keys_dropped"].(uint64) != 2 {
		t.Errorf("Expected 2 dropped keys, got %v", stats["keys_dropped"])
	}
}

func TestCollector_TrackError(t *testing.T) {
	collector := NewAtomicCollector()

	collector.TrackError("corruption")
	collector.TrackError("corruption")
	collector.TrackError("parse")

	stats := collector.GetStats()
	errorStats, ok := stats["errors"].(map[string]uint64)
	if !ok {
		t.Fatalf("Expected errors to be a map, got %T", stats["errors"])
	}

	if errorStats["corruption"] != 2 {
		t.Errorf("Expected 2 corruption errors, got %v", errorStats["corruption"])
	}
	if errorStats["parse"] != 1 {
		t.Errorf("Expected 1 parse error, got %v", errorStats["parse"])
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	collector := NewAtomicCollector()
	const numGoroutines = 10
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				collector.TrackOperation(OpPlan)
				collector.TrackProposal(j%2 == 0)
				collector.TrackGCKey(j%2 == 0)
			}
		}()
	}
	wg.Wait()

	stats := collector.GetStats()
	if stats["plan_ops"].(uint64) != numGoroutines*opsPerGoroutine {
		t.Errorf("Expected %d plan operations, got %v", numGoroutines*opsPerGoroutine, stats["plan_ops"])
	}
}

func TestCollector_GetStatsFiltered(t *testing.T) {
	collector := NewAtomicCollector()

	collector.TrackOperation(OpPlan)
	collector.TrackOperation(OpEdit)
	collector.TrackProposal(true)

	filtered := collector.GetStatsFiltered("proposals")
	if _, exists := filtered["proposals_accepted"]; !exists {
		t.Errorf("Expected proposals_accepted in filtered stats")
	}
	if _, exists := filtered["plan_ops"]; exists {
		t.Errorf("Did not expect plan_ops in filtered stats")
	}
}

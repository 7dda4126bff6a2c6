package compaction

import (
	"context"
	"errors"
	"testing"

	"github.com/sievedb/sieve/pkg/common/cursor"
	"github.com/sievedb/sieve/pkg/stats"
)

func TestSchedulerPlanAndApply(t *testing.T) {
	ctx := context.Background()
	mockTel := newMockTelemetryServer()
	collector := stats.NewAtomicCollector()

	s, err := NewScheduler(ctx, DefaultOptions(), chain(4, 100),
		WithMetrics(NewSchedulerMetrics(mockTel)),
		WithStats(collector),
	)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	if count := mockTel.getCounterCount("sieve.graph.build.count"); count != 1 {
		t.Errorf("Expected 1 graph build record, got %d", count)
	}

	proposals := s.Plan(ctx)
	if len(proposals) != 1 {
		t.Fatalf("Expected 1 proposal, got %d", len(proposals))
	}

	allStats := collector.GetStats()
	if got := allStats["plan_ops"].(uint64); got != 1 {
		t.Errorf("Expected 1 plan op tracked, got %d", got)
	}
	if got := allStats["proposals_accepted"].(uint64); got != 1 {
		t.Errorf("Expected 1 accepted proposal tracked, got %d", got)
	}
	if got := allStats["bytes_scheduled"].(uint64); got != 400 {
		t.Errorf("Expected 400 bytes scheduled, got %d", got)
	}

	// Fold the merge back in: the proposal's inputs leave, one output
	// spanning their timestamps replaces them.
	merged := meta(200, "a", "z", 0, 30, 250)
	if err := s.Apply(ctx, proposals[0].Fingerprints(), []*FileMetadata{merged}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if s.Graph().Len() != 1 {
		t.Errorf("Expected 1 file after apply, got %d", s.Graph().Len())
	}
	if count := mockTel.getCounterCount("sieve.graph.edit.removed"); count != 1 {
		t.Errorf("Expected 1 edit record, got %d", count)
	}

	if got := s.Plan(ctx); len(got) != 0 {
		t.Errorf("Expected no proposals after full merge, got %d", len(got))
	}
}

func TestSchedulerApplyUnknownFile(t *testing.T) {
	ctx := context.Background()
	collector := stats.NewAtomicCollector()

	s, err := NewScheduler(ctx, DefaultOptions(), chain(2, 100), WithStats(collector))
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	var unknown cursor.Fingerprint
	unknown[0] = 0xff
	if err := s.Apply(ctx, []cursor.Fingerprint{unknown}, nil); !errors.Is(err, ErrUnknownFile) {
		t.Errorf("Expected ErrUnknownFile, got %v", err)
	}

	errStats := collector.GetStats()["errors"].(map[string]uint64)
	if errStats["graph_edit"] != 1 {
		t.Errorf("Expected 1 graph_edit error tracked, got %d", errStats["graph_edit"])
	}
}

func TestSchedulerRejectsBadMetadata(t *testing.T) {
	ctx := context.Background()

	bad := meta('a', "a", "z", 10, 5, 100)
	_, err := NewScheduler(ctx, DefaultOptions(), []*FileMetadata{bad})
	if !errors.Is(err, ErrCorruption) {
		t.Errorf("Expected ErrCorruption, got %v", err)
	}
}

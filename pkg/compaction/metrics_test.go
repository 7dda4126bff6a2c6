// ABOUTME: Scheduler telemetry metrics tests with mock telemetry server (infrastructure mocking only)
// ABOUTME: Provides coverage for graph build, edit, planning, and proposal metric recording

package compaction

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// mockTelemetryServer captures metrics for testing scheduler telemetry (infrastructure mocking only)
type mockTelemetryServer struct {
	mu         sync.Mutex
	histograms map[string][]mockHistogramValue
	counters   map[string][]mockCounterValue
}

type mockHistogramValue struct {
	value      float64
	attributes []attribute.KeyValue
}

type mockCounterValue struct {
	value      int64
	attributes []attribute.KeyValue
}

func newMockTelemetryServer() *mockTelemetryServer {
	return &mockTelemetryServer{
		histograms: make(map[string][]mockHistogramValue),
		counters:   make(map[string][]mockCounterValue),
	}
}

func (m *mockTelemetryServer) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[name] = append(m.histograms[name], mockHistogramValue{
		value:      value,
		attributes: attrs,
	})
}

func (m *mockTelemetryServer) RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = append(m.counters[name], mockCounterValue{
		value:      value,
		attributes: attrs,
	})
}

func (m *mockTelemetryServer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (m *mockTelemetryServer) Shutdown(ctx context.Context) error {
	return nil
}

func (m *mockTelemetryServer) getHistogramCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.histograms[name])
}

func (m *mockTelemetryServer) getCounterCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters[name])
}

func (m *mockTelemetryServer) getCounterValues(name string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make([]int64, len(m.counters[name]))
	for i, v := range m.counters[name] {
		values[i] = v.value
	}
	return values
}

// TestSchedulerMetricsInterface tests all methods of the SchedulerMetrics interface
func TestSchedulerMetricsInterface(t *testing.T) {
	mockTel := newMockTelemetryServer()
	metrics := NewSchedulerMetrics(mockTel)
	ctx := context.Background()

	// Test RecordGraphBuild
	metrics.RecordGraphBuild(ctx, 12, 30, 4, 5*time.Millisecond)

	if count := mockTel.getHistogramCount("sieve.graph.build.duration"); count != 1 {
		t.Errorf("Expected 1 build duration record, got %d", count)
	}

	if count := mockTel.getCounterCount("sieve.graph.build.count"); count != 1 {
		t.Errorf("Expected 1 build count record, got %d", count)
	}

	if count := mockTel.getHistogramCount("sieve.graph.colors"); count != 1 {
		t.Errorf("Expected 1 colors record, got %d", count)
	}

	// Test RecordGraphEdit
	metrics.RecordGraphEdit(ctx, 3, 1, 2*time.Millisecond)

	if count := mockTel.getHistogramCount("sieve.graph.edit.duration"); count != 1 {
		t.Errorf("Expected 1 edit duration record, got %d", count)
	}

	if values := mockTel.getCounterValues("sieve.graph.edit.removed"); len(values) != 1 || values[0] != 3 {
		t.Errorf("Expected removed counter [3], got %v", values)
	}

	if values := mockTel.getCounterValues("sieve.graph.edit.added"); len(values) != 1 || values[0] != 1 {
		t.Errorf("Expected added counter [1], got %v", values)
	}

	// Test RecordPlanStart
	metrics.RecordPlanStart(ctx, 12, 4)

	if count := mockTel.getCounterCount("sieve.scheduler.plan.start.count"); count != 1 {
		t.Errorf("Expected 1 plan start record, got %d", count)
	}

	// Test RecordPlanComplete without conflicts
	metrics.RecordPlanComplete(ctx, 10*time.Millisecond, 2, 0)

	if count := mockTel.getHistogramCount("sieve.scheduler.plan.duration"); count != 1 {
		t.Errorf("Expected 1 plan duration record, got %d", count)
	}

	if count := mockTel.getCounterCount("sieve.scheduler.plan.conflicts.skipped"); count != 0 {
		t.Errorf("Expected no conflict records when none skipped, got %d", count)
	}

	// Test RecordPlanComplete with conflicts
	metrics.RecordPlanComplete(ctx, 10*time.Millisecond, 2, 3)

	if values := mockTel.getCounterValues("sieve.scheduler.plan.conflicts.skipped"); len(values) != 1 || values[0] != 3 {
		t.Errorf("Expected conflicts counter [3], got %v", values)
	}

	// Test RecordProposal
	metrics.RecordProposal(ctx, CompactionStats{
		InputCount: 4,
		InputBytes: 1024000,
		LowerLevel: 1,
		UpperLevel: 2,
		Ratio:      0.75,
	})

	if count := mockTel.getCounterCount("sieve.scheduler.proposal.count"); count != 1 {
		t.Errorf("Expected 1 proposal record, got %d", count)
	}

	if values := mockTel.getCounterValues("sieve.scheduler.proposal.input.bytes"); len(values) != 1 || values[0] != 1024000 {
		t.Errorf("Expected proposal bytes [1024000], got %v", values)
	}

	if count := mockTel.getHistogramCount("sieve.scheduler.proposal.ratio"); count != 1 {
		t.Errorf("Expected 1 ratio record, got %d", count)
	}

	// Test Close
	if err := metrics.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

// TestNoopSchedulerMetrics verifies the no-op implementation does not panic
func TestNoopSchedulerMetrics(t *testing.T) {
	metrics := NewNoopSchedulerMetrics()
	ctx := context.Background()

	metrics.RecordGraphBuild(ctx, 1, 0, 1, time.Millisecond)
	metrics.RecordGraphEdit(ctx, 0, 1, time.Millisecond)
	metrics.RecordPlanStart(ctx, 1, 1)
	metrics.RecordPlanComplete(ctx, time.Millisecond, 0, 0)
	metrics.RecordProposal(ctx, CompactionStats{})

	if err := metrics.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

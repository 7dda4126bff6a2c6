// ABOUTME: This file defines telemetry metrics interface for compaction planning operations
// ABOUTME: including graph construction, incremental edits, and candidate selection monitoring

package compaction

import (
	"context"
	"time"

	"github.com/sievedb/sieve/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// SchedulerMetrics interface defines telemetry methods for compaction planning operations
type SchedulerMetrics interface {
	// RecordGraphBuild records a full overlap graph construction
	RecordGraphBuild(ctx context.Context, fileCount int, edgeCount int, colorCount int, duration time.Duration)

	// RecordGraphEdit records an incremental graph edit
	RecordGraphEdit(ctx context.Context, removed int, added int, duration time.Duration)

	// RecordPlanStart records the start of a planning pass
	RecordPlanStart(ctx context.Context, fileCount int, colorCount int)

	// RecordPlanComplete records the completion of a planning pass
	RecordPlanComplete(ctx context.Context, duration time.Duration, proposals int, conflictsSkipped int)

	// RecordProposal records a single accepted compaction proposal
	RecordProposal(ctx context.Context, stats CompactionStats)

	// Close cleans up any resources used by the metrics
	Close() error
}

// schedulerMetrics implements SchedulerMetrics using the telemetry package
type schedulerMetrics struct {
	tel telemetry.Telemetry
}

// NewSchedulerMetrics creates a new SchedulerMetrics implementation
func NewSchedulerMetrics(tel telemetry.Telemetry) SchedulerMetrics {
	return &schedulerMetrics{
		tel: tel,
	}
}

// NewNoopSchedulerMetrics creates a no-op SchedulerMetrics for testing/disabled scenarios
func NewNoopSchedulerMetrics() SchedulerMetrics {
	return &noopSchedulerMetrics{}
}

// RecordGraphBuild records a full overlap graph construction
func (m *schedulerMetrics) RecordGraphBuild(ctx context.Context, fileCount int, edgeCount int, colorCount int, duration time.Duration) {
	m.tel.RecordHistogram(ctx, "sieve.graph.build.duration", duration.Seconds(),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)

	m.tel.RecordCounter(ctx, "sieve.graph.build.count", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)

	m.tel.RecordHistogram(ctx, "sieve.graph.files", float64(fileCount),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)

	m.tel.RecordHistogram(ctx, "sieve.graph.edges", float64(edgeCount),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)

	m.tel.RecordHistogram(ctx, "sieve.graph.colors", float64(colorCount),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)
}

// RecordGraphEdit records an incremental graph edit
func (m *schedulerMetrics) RecordGraphEdit(ctx context.Context, removed int, added int, duration time.Duration) {
	m.tel.RecordHistogram(ctx, "sieve.graph.edit.duration", duration.Seconds(),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)

	m.tel.RecordCounter(ctx, "sieve.graph.edit.removed", int64(removed),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)

	m.tel.RecordCounter(ctx, "sieve.graph.edit.added", int64(added),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGraph),
	)
}

// RecordPlanStart records the start of a planning pass
func (m *schedulerMetrics) RecordPlanStart(ctx context.Context, fileCount int, colorCount int) {
	m.tel.RecordCounter(ctx, "sieve.scheduler.plan.start.count", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
		attribute.Int("files", fileCount),
		attribute.Int("colors", colorCount),
	)
}

// RecordPlanComplete records the completion of a planning pass
func (m *schedulerMetrics) RecordPlanComplete(ctx context.Context, duration time.Duration, proposals int, conflictsSkipped int) {
	m.tel.RecordHistogram(ctx, "sieve.scheduler.plan.duration", duration.Seconds(),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
	)

	m.tel.RecordCounter(ctx, "sieve.scheduler.plan.proposals", int64(proposals),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
	)

	if conflictsSkipped > 0 {
		m.tel.RecordCounter(ctx, "sieve.scheduler.plan.conflicts.skipped", int64(conflictsSkipped),
			attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
			attribute.String(telemetry.AttrReason, "input_overlap"),
		)
	}
}

// RecordProposal records a single accepted compaction proposal
func (m *schedulerMetrics) RecordProposal(ctx context.Context, stats CompactionStats) {
	m.tel.RecordCounter(ctx, "sieve.scheduler.proposal.count", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
		attribute.Int(telemetry.AttrLevel, stats.LowerLevel),
	)

	m.tel.RecordCounter(ctx, "sieve.scheduler.proposal.input.files", int64(stats.InputCount),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
		attribute.Int(telemetry.AttrLevel, stats.LowerLevel),
	)

	m.tel.RecordCounter(ctx, "sieve.scheduler.proposal.input.bytes", int64(stats.InputBytes),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
		attribute.Int(telemetry.AttrLevel, stats.LowerLevel),
	)

	m.tel.RecordHistogram(ctx, "sieve.scheduler.proposal.ratio", stats.Ratio,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentScheduler),
	)
}

// Close cleans up any resources used by the metrics
func (m *schedulerMetrics) Close() error {
	return nil
}

// noopSchedulerMetrics provides no-op implementations of all metrics methods
type noopSchedulerMetrics struct{}

func (n *noopSchedulerMetrics) RecordGraphBuild(ctx context.Context, fileCount int, edgeCount int, colorCount int, duration time.Duration) {
}

func (n *noopSchedulerMetrics) RecordGraphEdit(ctx context.Context, removed int, added int, duration time.Duration) {
}

func (n *noopSchedulerMetrics) RecordPlanStart(ctx context.Context, fileCount int, colorCount int) {
}

func (n *noopSchedulerMetrics) RecordPlanComplete(ctx context.Context, duration time.Duration, proposals int, conflictsSkipped int) {
}

func (n *noopSchedulerMetrics) RecordProposal(ctx context.Context, stats CompactionStats) {}

func (n *noopSchedulerMetrics) Close() error {
	return nil
}

// ABOUTME: This file defines telemetry metrics interface for garbage collection operations
// ABOUTME: including retention decisions, dropped entries, and policy parsing monitoring

package gc

import (
	"context"

	"github.com/sievedb/sieve/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// GCMetrics interface defines telemetry methods for garbage collection operations
type GCMetrics interface {
	// RecordRetained records a retained value and its covering tombstone count
	RecordRetained(ctx context.Context, tombstones int)

	// RecordDropped records entries discarded by the policy
	RecordDropped(ctx context.Context, entries int)

	// RecordParse records the outcome of parsing a policy string
	RecordParse(ctx context.Context, success bool)

	// Close cleans up any resources used by the metrics
	Close() error
}

// gcMetrics implements GCMetrics using the telemetry package
type gcMetrics struct {
	tel telemetry.Telemetry
}

// NewGCMetrics creates a new GCMetrics implementation
func NewGCMetrics(tel telemetry.Telemetry) GCMetrics {
	return &gcMetrics{
		tel: tel,
	}
}

// NewNoopGCMetrics creates a no-op GCMetrics for testing/disabled scenarios
func NewNoopGCMetrics() GCMetrics {
	return &noopGCMetrics{}
}

// RecordRetained records a retained value and its covering tombstone count
func (m *gcMetrics) RecordRetained(ctx context.Context, tombstones int) {
	m.tel.RecordCounter(ctx, "sieve.gc.keys.retained", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGC),
	)
	if tombstones > 0 {
		m.tel.RecordCounter(ctx, "sieve.gc.tombstones.retained", int64(tombstones),
			attribute.String(telemetry.AttrComponent, telemetry.ComponentGC),
		)
	}
}

// RecordDropped records entries discarded by the policy
func (m *gcMetrics) RecordDropped(ctx context.Context, entries int) {
	m.tel.RecordCounter(ctx, "sieve.gc.entries.dropped", int64(entries),
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGC),
	)
}

// RecordParse records the outcome of parsing a policy string
func (m *gcMetrics) RecordParse(ctx context.Context, success bool) {
	status := telemetry.StatusSuccess
	if !success {
		status = telemetry.StatusError
	}
	m.tel.RecordCounter(ctx, "sieve.gc.policy.parse.count", 1,
		attribute.String(telemetry.AttrComponent, telemetry.ComponentGC),
		attribute.String(telemetry.AttrStatus, status),
	)
}

// Close cleans up any resources used by the metrics
func (m *gcMetrics) Close() error {
	return nil
}

// noopGCMetrics provides no-op implementations of all metrics methods
type noopGCMetrics struct{}

func (n *noopGCMetrics) RecordRetained(ctx context.Context, tombstones int) {}

func (n *noopGCMetrics) RecordDropped(ctx context.Context, entries int) {}

func (n *noopGCMetrics) RecordParse(ctx context.Context, success bool) {}

func (n *noopGCMetrics) Close() error {
	return nil
}

// ABOUTME: Telemetry facade over OpenTelemetry that Sieve components record against
// ABOUTME: without importing the SDK, plus a no-op twin for disabled deployments

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry is the recording surface injected into components. Implementations
// own instrument creation and export; callers just record values by name.
type Telemetry interface {
	// RecordHistogram records one observation into the named histogram.
	RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue)

	// RecordCounter adds value to the named counter.
	RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue)

	// StartSpan opens a span; the caller must End it.
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)

	// Shutdown flushes pending exports and releases providers.
	Shutdown(ctx context.Context) error
}

// ComponentMetrics is the common surface of per-component metrics interfaces
// (scheduler, gc). It exists so lifecycle code can close them uniformly.
type ComponentMetrics interface {
	Close() error
}

// NoopTelemetry discards everything. Used when telemetry is disabled and as
// the default sink in tests.
type NoopTelemetry struct{}

// NewNoop returns telemetry that records nothing.
func NewNoop() Telemetry {
	return &NoopTelemetry{}
}

func (n *NoopTelemetry) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) {
}

func (n *NoopTelemetry) RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue) {
}

// StartSpan hands back the context unchanged with whatever span it carries.
func (n *NoopTelemetry) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (n *NoopTelemetry) Shutdown(ctx context.Context) error {
	return nil
}

// RecordDuration records the seconds elapsed since start into a histogram.
func RecordDuration(ctx context.Context, tel Telemetry, name string, start time.Time, attrs ...attribute.KeyValue) {
	tel.RecordHistogram(ctx, name, time.Since(start).Seconds(), attrs...)
}

// RecordBytes adds a byte count to a counter.
func RecordBytes(ctx context.Context, tel Telemetry, name string, bytes int64, attrs ...attribute.KeyValue) {
	tel.RecordCounter(ctx, name, bytes, attrs...)
}

// Attribute keys shared across components so dashboards can group consistently.
const (
	AttrOperationType = "operation.type"
	AttrOperationName = "operation.name"

	AttrComponent = "component"
	AttrLayer     = "layer"

	AttrStatus    = "status"
	AttrSuccess   = "success"
	AttrErrorType = "error.type"

	AttrFingerprint = "file.fingerprint"
	AttrColor       = "color"
	AttrLevel       = "level"
	AttrReason      = "reason"
	AttrPolicy      = "policy"
)

// Shared attribute values.
const (
	OpTypeBuild   = "build"
	OpTypeEdit    = "edit"
	OpTypePlan    = "plan"
	OpTypeCollect = "collect"
	OpTypeParse   = "parse"

	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"

	ComponentGraph     = "graph"
	ComponentScheduler = "scheduler"
	ComponentGC        = "gc"
	ComponentConfig    = "config"
)

// ABOUTME: Exporter factory translating configured exporter names into OpenTelemetry
// ABOUTME: metric and span exporters, falling back to stdout when nothing matches

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// metricExportersFor maps the configured exporter names onto metric exporters.
// Names that cannot carry metrics (otlp, jaeger in this setup) are skipped;
// an empty result falls back to stdout so metrics are never silently dropped.
func metricExportersFor(cfg Config) ([]metric.Exporter, error) {
	var exporters []metric.Exporter

	for _, name := range cfg.Exporters {
		var (
			exporter metric.Exporter
			err      error
		)
		switch name {
		case "prometheus":
			// Prometheus pull integration is not wired up; stdout stands in
			// so a prometheus-configured deployment still emits metrics.
			exporter, err = newStdoutMetricExporter()
		case "stdout":
			exporter, err = newStdoutMetricExporter()
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s metric exporter: %w", name, err)
		}
		exporters = append(exporters, exporter)
	}

	if len(exporters) == 0 {
		exporter, err := newStdoutMetricExporter()
		if err != nil {
			return nil, fmt.Errorf("failed to create fallback stdout metric exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	return exporters, nil
}

// traceExportersFor maps the configured exporter names onto span exporters.
// Names that cannot carry traces (prometheus) are skipped; an empty result
// falls back to stdout.
func traceExportersFor(cfg Config) ([]trace.SpanExporter, error) {
	var exporters []trace.SpanExporter

	for _, name := range cfg.Exporters {
		var (
			exporter trace.SpanExporter
			err      error
		)
		switch name {
		case "otlp":
			exporter, err = newOTLPTraceExporter(cfg)
		case "stdout":
			exporter, err = newStdoutTraceExporter()
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s trace exporter: %w", name, err)
		}
		exporters = append(exporters, exporter)
	}

	if len(exporters) == 0 {
		exporter, err := newStdoutTraceExporter()
		if err != nil {
			return nil, fmt.Errorf("failed to create fallback stdout trace exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	return exporters, nil
}

func newStdoutMetricExporter() (metric.Exporter, error) {
	return stdoutmetric.New(
		stdoutmetric.WithPrettyPrint(),
	)
}

func newOTLPTraceExporter(cfg Config) (trace.SpanExporter, error) {
	// Insecure transport; collector endpoints are assumed local or mesh-secured.
	return otlptracegrpc.New(
		context.Background(),
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
}

func newStdoutTraceExporter() (trace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
}

// ABOUTME: Telemetry configuration with defaults, SIEVE_TELEMETRY_* environment
// ABOUTME: overrides, and validation of exporter names and batching limits

package telemetry

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config selects exporters and tunes export batching for the telemetry
// provider. Zero values are not usable; start from DefaultConfig.
type Config struct {
	// ServiceName and ServiceVersion label exported data.
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`

	// Enabled gates the whole provider; disabled configs yield no-op telemetry.
	Enabled bool `json:"enabled"`

	// Exporters names the export destinations (prometheus, otlp, jaeger, stdout).
	Exporters []string `json:"exporters"`

	// SampleRate is the trace sampling ratio in [0.0, 1.0].
	SampleRate float64 `json:"sample_rate"`

	PrometheusPort int    `json:"prometheus_port"`
	OTLPEndpoint   string `json:"otlp_endpoint"`
	JaegerEndpoint string `json:"jaeger_endpoint"`

	// Export batching knobs, passed through to the SDK batch processors.
	ExportTimeout      time.Duration `json:"export_timeout"`
	BatchTimeout       time.Duration `json:"batch_timeout"`
	MaxQueueSize       int           `json:"max_queue_size"`
	MaxExportBatchSize int           `json:"max_export_batch_size"`
}

// DefaultConfig returns an enabled stdout-exporting configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:        "sieve",
		ServiceVersion:     "development",
		Enabled:            true,
		Exporters:          []string{"stdout"},
		SampleRate:         1.0,
		PrometheusPort:     9090,
		OTLPEndpoint:       "http://localhost:4317",
		JaegerEndpoint:     "http://localhost:14268/api/traces",
		ExportTimeout:      30 * time.Second,
		BatchTimeout:       5 * time.Second,
		MaxQueueSize:       2048,
		MaxExportBatchSize: 512,
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*dst = parsed
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = parsed
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dst = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*dst = parsed
		}
	}
}

// LoadFromEnv overlays SIEVE_TELEMETRY_* environment variables onto the
// config. Unparseable values are ignored, keeping the existing setting.
func (c *Config) LoadFromEnv() {
	envString("SIEVE_TELEMETRY_SERVICE_NAME", &c.ServiceName)
	envString("SIEVE_TELEMETRY_SERVICE_VERSION", &c.ServiceVersion)
	envBool("SIEVE_TELEMETRY_ENABLED", &c.Enabled)

	if val := os.Getenv("SIEVE_TELEMETRY_EXPORTERS"); val != "" {
		names := strings.Split(val, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		c.Exporters = names
	}

	envFloat("SIEVE_TELEMETRY_SAMPLE_RATE", &c.SampleRate)
	envInt("SIEVE_TELEMETRY_PROMETHEUS_PORT", &c.PrometheusPort)
	envString("SIEVE_TELEMETRY_OTLP_ENDPOINT", &c.OTLPEndpoint)
	envString("SIEVE_TELEMETRY_JAEGER_ENDPOINT", &c.JaegerEndpoint)
	envDuration("SIEVE_TELEMETRY_EXPORT_TIMEOUT", &c.ExportTimeout)
	envDuration("SIEVE_TELEMETRY_BATCH_TIMEOUT", &c.BatchTimeout)
	envInt("SIEVE_TELEMETRY_MAX_QUEUE_SIZE", &c.MaxQueueSize)
	envInt("SIEVE_TELEMETRY_MAX_EXPORT_BATCH_SIZE", &c.MaxExportBatchSize)
}

var knownExporters = map[string]bool{
	"prometheus": true,
	"otlp":       true,
	"jaeger":     true,
	"stdout":     true,
}

// Validate rejects configs the provider cannot honor.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name cannot be empty")
	}
	if c.ServiceVersion == "" {
		return fmt.Errorf("service_version cannot be empty")
	}
	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return fmt.Errorf("sample_rate must be between 0.0 and 1.0, got %f", c.SampleRate)
	}
	if c.PrometheusPort < 1 || c.PrometheusPort > 65535 {
		return fmt.Errorf("prometheus_port must be between 1 and 65535, got %d", c.PrometheusPort)
	}
	if c.ExportTimeout <= 0 {
		return fmt.Errorf("export_timeout must be positive, got %s", c.ExportTimeout)
	}
	if c.BatchTimeout <= 0 {
		return fmt.Errorf("batch_timeout must be positive, got %s", c.BatchTimeout)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max_queue_size must be positive, got %d", c.MaxQueueSize)
	}
	if c.MaxExportBatchSize <= 0 {
		return fmt.Errorf("max_export_batch_size must be positive, got %d", c.MaxExportBatchSize)
	}
	for _, name := range c.Exporters {
		if !knownExporters[name] {
			return fmt.Errorf("invalid exporter: %s, valid options are: prometheus, otlp, jaeger, stdout", name)
		}
	}
	return nil
}

// HasExporter reports whether name is among the configured exporters.
func (c *Config) HasExporter(name string) bool {
	for _, exporter := range c.Exporters {
		if exporter == name {
			return true
		}
	}
	return false
}

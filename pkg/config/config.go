package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sievedb/sieve/pkg/gc"
)

const (
	DefaultConfigFileName = "CONFIG"
	CurrentConfigVersion  = 1
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrConfigNotFound = errors.New("configuration not found")
	ErrMalformed      = errors.New("malformed configuration")
)

type Config struct {
	Version int `json:"version"`

	// Scheduler configuration
	MaxCompactionBytes uint64 `json:"max_compaction_bytes"`
	CompactionThreads  int    `json:"compaction_threads"`
	CompactionInterval int64  `json:"compaction_interval"`

	// Retention configuration
	RetentionPolicy string `json:"retention_policy"`

	// Telemetry configuration
	TelemetryEnabled   bool     `json:"telemetry_enabled"`
	TelemetryExporters []string `json:"telemetry_exporters"`

	mu sync.RWMutex
}

// NewDefaultConfig creates a Config with recommended default values
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,

		// Scheduler defaults
		MaxCompactionBytes: 1 << 34, // 16GB
		CompactionThreads:  2,
		CompactionInterval: 30, // 30 seconds

		// Retention defaults: keep the latest version of every key
		RetentionPolicy: "versions = 1",

		// Telemetry defaults
		TelemetryEnabled:   false,
		TelemetryExporters: []string{"stdout"},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validateLocked()
}

func (c *Config) validateLocked() error {
	if c.Version <= 0 {
		return fmt.Errorf("%w: invalid version %d", ErrInvalidConfig, c.Version)
	}

	if c.MaxCompactionBytes == 0 {
		return fmt.Errorf("%w: max compaction bytes must be positive", ErrInvalidConfig)
	}

	if c.CompactionThreads <= 0 {
		return fmt.Errorf("%w: compaction threads must be positive", ErrInvalidConfig)
	}

	if c.CompactionInterval <= 0 {
		return fmt.Errorf("%w: compaction interval must be positive", ErrInvalidConfig)
	}

	if c.RetentionPolicy != "" {
		if _, err := gc.Parse(c.RetentionPolicy); err != nil {
			return fmt.Errorf("%w: retention policy: %v", ErrInvalidConfig, err)
		}
	}

	return nil
}

// Policy returns the parsed retention policy, or nil when none is set.
func (c *Config) Policy() (gc.Policy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.RetentionPolicy == "" {
		return nil, nil
	}
	return gc.Parse(c.RetentionPolicy)
}

// LoadConfig loads the configuration from its file under dir
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to its file under dir, atomically via a
// temporary file and rename.
func (c *Config) Save(dir string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.validateLocked(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, DefaultConfigFileName)
	tempPath := path + ".tmp"

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename configuration: %w", err)
	}

	return nil
}

// Update applies the given function to modify the configuration
func (c *Config) Update(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

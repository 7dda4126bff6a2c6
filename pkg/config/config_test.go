package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sievedb/sieve/pkg/gc"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Version != CurrentConfigVersion {
		t.Errorf("expected version %d, got %d", CurrentConfigVersion, cfg.Version)
	}

	if cfg.MaxCompactionBytes != 1<<34 {
		t.Errorf("expected max compaction bytes %d, got %d", uint64(1)<<34, cfg.MaxCompactionBytes)
	}

	if cfg.CompactionThreads != 2 {
		t.Errorf("expected 2 compaction threads, got %d", cfg.CompactionThreads)
	}

	if cfg.RetentionPolicy != "versions = 1" {
		t.Errorf("expected default retention policy, got %q", cfg.RetentionPolicy)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := NewDefaultConfig()

	// Valid config
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}

	// Test invalid configs
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name: "invalid version",
			mutate: func(c *Config) {
				c.Version = 0
			},
		},
		{
			name: "zero max compaction bytes",
			mutate: func(c *Config) {
				c.MaxCompactionBytes = 0
			},
		},
		{
			name: "zero compaction threads",
			mutate: func(c *Config) {
				c.CompactionThreads = 0
			},
		},
		{
			name: "negative compaction interval",
			mutate: func(c *Config) {
				c.CompactionInterval = -1
			},
		},
		{
			name: "unparseable retention policy",
			mutate: func(c *Config) {
				c.RetentionPolicy = "versions = 0"
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigPolicy(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.RetentionPolicy = "any(versions = 2, ttl_micros = 100)"

	policy, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy failed: %v", err)
	}
	if _, ok := policy.(gc.Any); !ok {
		t.Errorf("expected gc.Any, got %T", policy)
	}

	cfg.RetentionPolicy = ""
	policy, err = cfg.Policy()
	if err != nil || policy != nil {
		t.Errorf("expected nil policy for empty setting, got %v, %v", policy, err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	dir, err := os.MkdirTemp("", "sieve-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg := NewDefaultConfig()
	cfg.Update(func(c *Config) {
		c.MaxCompactionBytes = 1 << 20
		c.RetentionPolicy = "ttl_micros = 5000"
	})

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.MaxCompactionBytes != 1<<20 {
		t.Errorf("expected max compaction bytes %d, got %d", 1<<20, loaded.MaxCompactionBytes)
	}
	if loaded.RetentionPolicy != "ttl_micros = 5000" {
		t.Errorf("expected retention policy to round trip, got %q", loaded.RetentionPolicy)
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	dir, err := os.MkdirTemp("", "sieve-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	if _, err := LoadConfig(dir); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir, err := os.MkdirTemp("", "sieve-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, DefaultConfigFileName)
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := LoadConfig(dir); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir, err := os.MkdirTemp("", "sieve-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, DefaultConfigFileName)
	data := `{"version": 1, "max_compaction_bytes": 0, "compaction_threads": 2, "compaction_interval": 30}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := LoadConfig(dir); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

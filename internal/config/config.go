// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the engine configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	DefinitionsDir string `json:"definitions_dir,omitempty"` // Directory of extra or overriding definitions
	Port           int    `json:"port,omitempty"`            // HTTP port for serve
	BatchWorkers   int    `json:"batch_workers,omitempty"`   // Concurrent submissions per batch
	MaxBatchSize   int    `json:"max_batch_size,omitempty"`  // Submissions accepted by one batch request
	Verbose        bool   `json:"verbose,omitempty"`         // Print detailed stage output
}

// Default values
const (
	DefaultPort         = 8080
	DefaultBatchWorkers = 4
	DefaultMaxBatchSize = 500
	maxBatchWorkers     = 64
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:         DefaultPort,
		BatchWorkers: DefaultBatchWorkers,
		MaxBatchSize: DefaultMaxBatchSize,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.BatchWorkers < 0 || c.BatchWorkers > maxBatchWorkers {
		return fmt.Errorf("config error: 'batch_workers' must be between 0 and %d, got %d", maxBatchWorkers, c.BatchWorkers)
	}
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("config error: 'max_batch_size' must be non-negative")
	}

	if c.DefinitionsDir != "" {
		info, err := os.Stat(c.DefinitionsDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("config error: definitions directory not found: %s", c.DefinitionsDir)
		}
		if err == nil && !info.IsDir() {
			return fmt.Errorf("config error: definitions_dir is not a directory: %s", c.DefinitionsDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DefinitionsDir == "" {
		result.DefinitionsDir = defaults.DefinitionsDir
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.BatchWorkers == 0 {
		result.BatchWorkers = defaults.BatchWorkers
	}
	if result.MaxBatchSize == 0 {
		result.MaxBatchSize = defaults.MaxBatchSize
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

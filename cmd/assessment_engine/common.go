package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/assessment-engine/internal/config"
	"github.com/jonathan/assessment-engine/internal/definitions"
	"github.com/jonathan/assessment-engine/internal/pipeline"
)

// resolveConfig layers the configuration sources: flags over the config file,
// the config file over the environment, the environment over the defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	env, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg = cfg.MergeWithDefaults(*env)
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if cmd.Flags().Changed("definitions") {
		cfg.DefinitionsDir = definitionsDir
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// loadRegistry builds the registry from the embedded catalog and cfg.DefinitionsDir.
func loadRegistry(cfg config.Config) (*definitions.Registry, error) {
	defs, err := definitions.Load(cfg.DefinitionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	registry, err := definitions.NewRegistry(defs)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	return registry, nil
}

// loadEngine builds a scoring engine without a metrics recorder.
func loadEngine(cfg config.Config) (*pipeline.Engine, error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewEngine(registry, nil), nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(stdout io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := stdout.Write(data)
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

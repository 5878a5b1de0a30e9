package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by FromEnv
const (
	EnvDefinitionsDir = "ASSESSMENT_DEFINITIONS_DIR"
	EnvPort           = "PORT"
	EnvBatchWorkers   = "ASSESSMENT_BATCH_WORKERS"
	EnvMaxBatchSize   = "ASSESSMENT_MAX_BATCH_SIZE"
)

// FromEnv builds a configuration from environment variables. Unset variables
// leave their fields zero so the result can be merged with other sources.
func FromEnv() (*Config, error) {
	cfg := &Config{DefinitionsDir: os.Getenv(EnvDefinitionsDir)}

	for _, v := range []struct {
		key string
		dst *int
	}{
		{EnvPort, &cfg.Port},
		{EnvBatchWorkers, &cfg.BatchWorkers},
		{EnvMaxBatchSize, &cfg.MaxBatchSize},
	} {
		if err := EnvInt(v.key, v.dst); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// EnvInt parses the integer variable key into dst. An unset variable leaves dst unchanged.
func EnvInt(key string, dst *int) error {
	return lookup(key, func(raw string) error {
		n, err := strconv.Atoi(raw)
		if err == nil {
			*dst = n
		}
		return err
	})
}

// EnvBool parses the boolean variable key into dst. An unset variable leaves dst unchanged.
func EnvBool(key string, dst *bool) error {
	return lookup(key, func(raw string) error {
		b, err := strconv.ParseBool(raw)
		if err == nil {
			*dst = b
		}
		return err
	})
}

// EnvDuration parses the duration variable key (e.g. "30s") into dst. An unset
// variable leaves dst unchanged.
func EnvDuration(key string, dst *time.Duration) error {
	return lookup(key, func(raw string) error {
		d, err := time.ParseDuration(raw)
		if err == nil {
			*dst = d
		}
		return err
	})
}

// EnvList returns the comma-separated values of key with blanks dropped.
func EnvList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lookup(key string, parse func(raw string) error) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	if err := parse(raw); err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	return nil
}

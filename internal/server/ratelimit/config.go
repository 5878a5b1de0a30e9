package ratelimit

import (
	"time"

	"github.com/jonathan/assessment-engine/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports "*" segments and prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Environment variables read by LoadConfig
const (
	EnvEnabled         = "RATE_LIMIT_ENABLED"
	EnvDefaultLimit    = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvDefaultWindow   = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvCleanupInterval = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvEntryTTL        = "RATE_LIMIT_ENTRY_TTL"
	EnvWhitelist       = "RATE_LIMIT_WHITELIST"
	EnvBlacklist       = "RATE_LIMIT_BLACKLIST"
)

// LoadConfig builds the rate limiting configuration from the defaults and the
// RATE_LIMIT_* environment variables. A malformed value is an error.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		EntryTTL:        time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(),
	}

	if err := config.EnvBool(EnvEnabled, &cfg.Enabled); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return &Config{Enabled: false}, nil
	}

	if err := config.EnvInt(EnvDefaultLimit, &cfg.DefaultLimit); err != nil {
		return nil, err
	}
	for _, v := range []struct {
		key string
		dst *time.Duration
	}{
		{EnvDefaultWindow, &cfg.DefaultWindow},
		{EnvCleanupInterval, &cfg.CleanupInterval},
		{EnvEntryTTL, &cfg.EntryTTL},
	} {
		if err := config.EnvDuration(v.key, v.dst); err != nil {
			return nil, err
		}
	}

	cfg.Whitelist = ipSet(config.EnvList(EnvWhitelist))
	cfg.Blacklist = ipSet(config.EnvList(EnvBlacklist))
	return cfg, nil
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// batches score many submissions per request
		{Path: "/assessments/*/score/batch", Method: "POST", Limit: 60, Window: time.Minute, Burst: 5},
		{Path: "/assessments/*/score", Method: "POST", Limit: 600, Window: time.Minute, Burst: 60},
	}
}

func ipSet(ips []string) map[string]bool {
	set := make(map[string]bool, len(ips))
	for _, ip := range ips {
		set[ip] = true
	}
	return set
}

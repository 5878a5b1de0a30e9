package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"definitions_dir": "defs",
		"port": 9090,
		"batch_workers": 8,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "defs", cfg.DefinitionsDir)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, 0, cfg.MaxBatchSize)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"existing dir", Config{DefinitionsDir: dir}, ""},
		{"port too large", Config{Port: 70000}, "'port'"},
		{"negative workers", Config{BatchWorkers: -1}, "'batch_workers'"},
		{"too many workers", Config{BatchWorkers: 65}, "'batch_workers'"},
		{"negative batch size", Config{MaxBatchSize: -5}, "'max_batch_size'"},
		{"missing dir", Config{DefinitionsDir: filepath.Join(dir, "nope")}, "definitions directory not found"},
		{"file as dir", Config{DefinitionsDir: file}, "is not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		DefinitionsDir: "custom",
		BatchWorkers:   2,
	}

	merged := partial.MergeWithDefaults(Defaults())

	assert.Equal(t, "custom", merged.DefinitionsDir)
	assert.Equal(t, 2, merged.BatchWorkers)
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Equal(t, DefaultMaxBatchSize, merged.MaxBatchSize)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Port: 1234}
	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 1234, merged.Port)
	assert.Equal(t, "", merged.DefinitionsDir)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvDefinitionsDir, "/etc/assessments")
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvBatchWorkers, "")
	t.Setenv(EnvMaxBatchSize, "50")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/etc/assessments", cfg.DefinitionsDir)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 0, cfg.BatchWorkers)
	assert.Equal(t, 50, cfg.MaxBatchSize)
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	t.Setenv(EnvBatchWorkers, "many")

	cfg, err := FromEnv()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ASSESSMENT_BATCH_WORKERS")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "7")
	t.Setenv("TEST_ENV_BOOL", "false")
	t.Setenv("TEST_ENV_DURATION", "90s")
	t.Setenv("TEST_ENV_LIST", " a, ,b ")
	t.Setenv("TEST_ENV_UNSET", "")

	n := 1
	require.NoError(t, EnvInt("TEST_ENV_INT", &n))
	assert.Equal(t, 7, n)
	require.NoError(t, EnvInt("TEST_ENV_UNSET", &n))
	assert.Equal(t, 7, n, "unset keeps the current value")

	b := true
	require.NoError(t, EnvBool("TEST_ENV_BOOL", &b))
	assert.False(t, b)

	var d time.Duration
	require.NoError(t, EnvDuration("TEST_ENV_DURATION", &d))
	assert.Equal(t, 90*time.Second, d)

	assert.Equal(t, []string{"a", "b"}, EnvList("TEST_ENV_LIST"))
	assert.Empty(t, EnvList("TEST_ENV_UNSET"))
}

func TestEnvHelpers_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		parse func() error
	}{
		{"int", "ten", func() error { var n int; return EnvInt("TEST_ENV_BAD", &n) }},
		{"bool", "maybe", func() error { var b bool; return EnvBool("TEST_ENV_BAD", &b) }},
		{"duration", "soon", func() error { var d time.Duration; return EnvDuration("TEST_ENV_BAD", &d) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_BAD", tt.value)
			err := tt.parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid TEST_ENV_BAD")
		})
	}
}

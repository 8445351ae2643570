package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ",", cfg.Dataset.Delimiter)
	assert.Equal(t, 120, cfg.Dataset.FallbackRows)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.NoError(t, cfg.validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REFINE_SERVER_PORT", "9090")
	t.Setenv("REFINE_LOGGING_LEVEL", "debug")
	t.Setenv("REFINE_DATASET_FALLBACK_ROWS", "60")

	// Run away from any config.yaml on disk.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 60, cfg.Dataset.FallbackRows)
	assert.Equal(t, ",", cfg.Dataset.Delimiter, "unset fields keep defaults")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 7070
dataset:
  delimiter: ";"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, ";", cfg.Dataset.Delimiter)
	assert.Equal(t, 120, cfg.Dataset.FallbackRows, "file gaps fall back to defaults")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad delimiter",
			mutate:  func(c *Config) { c.Dataset.Delimiter = ",," },
			wantErr: "delimiter must be a single character",
		},
		{
			name:    "bad fallback rows",
			mutate:  func(c *Config) { c.Dataset.FallbackRows = 0 },
			wantErr: "fallback rows must be positive",
		},
		{
			name:    "no origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCoercesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
}

func TestGetExportDir(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("data", "exports"), cfg.GetExportDir())

	cfg.Paths.ExportDir = "/var/exports"
	assert.Equal(t, "/var/exports", cfg.GetExportDir())
}

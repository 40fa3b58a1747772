package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	defer func() { opts = Opts{} }()

	opts = Opts{BaseURL: "https://floe.example.com"}
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://floe.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.PageSize)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
}

func TestLoadConfig_MissingBaseURL(t *testing.T) {
	defer func() { opts = Opts{} }()

	opts = Opts{}
	cfg, err := loadConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "base URL is not set")
}

func TestLoadConfig_FileWithOverrides(t *testing.T) {
	defer func() { opts = Opts{} }()

	configContent := `
api:
  base_url: https://from-file.example.com
  page_size: 7
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "floectl.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	opts = Opts{Config: configPath, BaseURL: "https://override.example.com", DBPath: "file:override.db"}
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", cfg.API.BaseURL, "flag wins over file")
	assert.Equal(t, 7, cfg.API.PageSize, "file value kept where no flag given")
	assert.Equal(t, "file:override.db", cfg.State.DSN)
}

func TestLoadConfig_BadFile(t *testing.T) {
	defer func() { opts = Opts{} }()

	opts = Opts{Config: "/non/existent/floectl.yml"}
	cfg, err := loadConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestSetupLog(t *testing.T) {
	t.Run("debug mode enabled", func(t *testing.T) {
		setupLog(true)
	})

	t.Run("debug mode disabled", func(t *testing.T) {
		setupLog(false)
	})

	t.Run("with secrets", func(t *testing.T) {
		setupLog(true, "secret1", "secret2")
	})
}

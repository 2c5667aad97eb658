package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.ImportTTL)
	assert.Equal(t, 10*1024*1024, cfg.UploadLimit)
	assert.False(t, cfg.DebugLines)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XPLEDGER_ADDR", ":9090")
	t.Setenv("XPLEDGER_LOG_LEVEL", "debug")
	t.Setenv("XPLEDGER_IMPORT_TTL", "5m")
	t.Setenv("XPLEDGER_DEBUG_LINES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.ImportTTL)
	assert.True(t, cfg.DebugLines)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("xpledger.yml", []byte("addr: \":7070\"\nupload_limit: 2048\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 2048, cfg.UploadLimit)
}

func TestLoadInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XPLEDGER_UPLOAD_LIMIT", "0")

	_, err := Load()
	assert.Error(t, err)
}

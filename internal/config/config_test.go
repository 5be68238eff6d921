package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PGBRIDGE_DSN", "PGBRIDGE_TIMEOUT", "PGBRIDGE_CHANNELS", "PGBRIDGE_WASM", "DATABASE_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "", cfg.DSN)
	assert.Equal(t, 1000, cfg.Timeout)
	assert.Empty(t, cfg.Channels)
	assert.Equal(t, "", cfg.Wasm)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := "dsn: host=db dbname=app\ntimeout: 250\nchannels:\n  - jobs\n  - audit\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pgbridge.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "host=db dbname=app", cfg.DSN)
	assert.Equal(t, 250, cfg.Timeout)
	assert.Equal(t, []string{"jobs", "audit"}, cfg.Channels)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pgbridge.yaml"), []byte("timeout: 250\n"), 0o600))
	t.Setenv("PGBRIDGE_TIMEOUT", "50")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Timeout)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PGBRIDGE_DSN=host=from-env\nPGBRIDGE_WASM=guest.wasm\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("PGBRIDGE_DSN=host=from-local\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PGBRIDGE_DSN")
		os.Unsetenv("PGBRIDGE_WASM")
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "host=from-local", cfg.DSN)
	assert.Equal(t, "guest.wasm", cfg.Wasm)
}

func TestLoadFallsBackToDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/app")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", cfg.DSN)
}

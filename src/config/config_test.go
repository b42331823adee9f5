package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("HOTKEY", "Ctrl+Shift+S")
	t.Setenv("SURFACE_ADDR", "127.0.0.1:50000")
	t.Setenv("SURFACE_DIR", "/opt/surface")
	t.Setenv("LANGUAGE", "en-US")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("SINGLE_WINDOW", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+Shift+S", cfg.Hotkey)
	assert.Equal(t, "127.0.0.1:50000", cfg.SurfaceAddr)
	assert.Equal(t, "/opt/surface", cfg.SurfaceDir)
	assert.Equal(t, "en-US", cfg.Language)
	assert.True(t, cfg.EnableFileLogging)
	assert.False(t, cfg.SingleWindow)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HOTKEY", "SURFACE_ADDR", "SINGLE_WINDOW", "LOG_LEVEL", "ENABLE_FILE_LOGGING"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHotkey, cfg.Hotkey)
	assert.Equal(t, DefaultSurfaceAddr, cfg.SurfaceAddr)
	assert.True(t, cfg.SingleWindow)
	assert.False(t, cfg.EnableFileLogging)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LANGUAGE", "zh-CN")
	t.Setenv("SURFACE_ADDR", "127.0.0.1:50000")

	cfg, err := LoadWithOptions(LoadOptions{
		LanguageOverride:    "en",
		SurfaceAddrOverride: " 127.0.0.1:60000 ",
		LogLevelOverride:    "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "127.0.0.1:60000", cfg.SurfaceAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestAltEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "screenshots.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SAVE_DIR=/shots\nLANG_FILE=strings.yaml\n"), 0o644))
	t.Setenv(AltEnvPathVar, envFile)
	t.Setenv("SAVE_DIR", "")
	t.Setenv(LangFileEnvVar, "")
	// godotenv.Load does not override variables that are already set
	os.Unsetenv("SAVE_DIR")
	os.Unsetenv(LangFileEnvVar)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/shots", cfg.SaveDir)
	assert.Equal(t, filepath.Join(dir, "strings.yaml"), cfg.LangFile)
}

func TestParseBool(t *testing.T) {
	tests := map[string]bool{"true": true, "TRUE": true, "1": true, "yes": true, "on": true, "false": false, "": false, "nope": false}
	for in, want := range tests {
		assert.Equal(t, want, parseBool(in), in)
	}
}

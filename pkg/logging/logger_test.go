package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sightline/pkg/config"
)

func TestInitWritesAndRotates(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{
		Server:   config.LogSettings{Path: filepath.Join(dir, "server.log"), Level: "INFO"},
		Requests: config.LogSettings{Path: filepath.Join(dir, "requests.log"), Level: "INFO"},
	}

	cleanup, err := Init(cfg)
	require.NoError(t, err)

	slog.Info("first run message")
	RequestLogger.Info("request entry", "path", "/api/horizon")
	cleanup()

	data, err := os.ReadFile(cfg.Server.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run message")

	reqData, err := os.ReadFile(cfg.Requests.Path)
	require.NoError(t, err)
	assert.Contains(t, string(reqData), "/api/horizon")

	// A second Init rotates the previous files to .old.
	cleanup2, err := Init(cfg)
	require.NoError(t, err)
	cleanup2()

	old, err := os.ReadFile(cfg.Server.Path + ".old")
	require.NoError(t, err)
	assert.Contains(t, string(old), "first run message")
}

func TestSetupHandlerLevels(t *testing.T) {
	dir := t.TempDir()
	h, f, err := setupHandler(filepath.Join(dir, "x.log"), "WARN", false)
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}

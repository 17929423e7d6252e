package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookupd.yaml")
	body := []byte("log_level: debug\nchunk_size: 8\ndebug:\n  enabled: false\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int32(8), cfg.ChunkSize)
	assert.False(t, cfg.Debug.Enabled)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Debug.Port, cfg.Debug.Port)
	assert.Equal(t, Default().EventQueue, cfg.EventQueue)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

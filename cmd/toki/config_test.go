package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toki.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"ephemeris: analytic\nlat: 43.06\nlon: 141.35\naddr: \":9000\"\n"), 0o644))

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "analytic", cfg.Ephemeris)
	assert.Equal(t, 43.06, cfg.Lat)
	assert.Equal(t, 141.35, cfg.Lon)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestLoadConfig_MissingDefaultIsFine(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "toki.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, fileConfig{}, cfg)
}

func TestLoadConfig_MissingExplicitFails(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "toki.yaml"), true)
	assert.Error(t, err)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toki.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lat: [not a number"), 0o644))
	_, err := loadConfig(path, true)
	assert.Error(t, err)
}

// config_test.go: Configuration loading tests
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	raw := []byte(`
plugins:
  enabled: true
  auto_load:
    - weather
    - markdown_format
  search_paths:
    - /opt/dracfetch/plugins
  cache_file: /var/cache/dracfetch/plugins.db
`)

	cfg, err := ParseConfig("config.yaml", raw)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"weather", "markdown_format"}, cfg.AutoLoad)
	assert.Equal(t, []string{"/opt/dracfetch/plugins"}, cfg.SearchPaths)
	assert.Equal(t, "/var/cache/dracfetch/plugins.db", cfg.CacheFile)
}

func TestParseConfigDefaultsToDisabled(t *testing.T) {
	cfg, err := ParseConfig("config.yaml", []byte(`other_section: {}`))
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.AutoLoad)
	assert.Empty(t, cfg.SearchPaths)
}

func TestParseConfigRejectsInvalidYAML(t *testing.T) {
	_, err := ParseConfig("config.yaml", []byte("plugins: [not: a: mapping"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plugins:\n  enabled: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// config.go: Host configuration for the plugin system
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config supplies the plugin-system section of the host configuration.
type Config struct {
	// Enabled switches the whole plugin system on or off. Disabled means
	// Initialize succeeds with nothing discovered or loaded.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// AutoLoad names the plugins loaded automatically at Initialize.
	AutoLoad []string `json:"auto_load" yaml:"auto_load"`

	// SearchPaths are host-configured plugin directories, consulted
	// before the platform defaults.
	SearchPaths []string `json:"search_paths" yaml:"search_paths"`

	// CacheFile, when set, backs the plugin cache facade with the
	// persistent SQLite store at this path instead of process memory.
	CacheFile string `json:"cache_file,omitempty" yaml:"cache_file,omitempty"`
}

// configFile is the on-disk layout; the plugin section sits under its
// own key so the host can keep unrelated settings in the same file.
type configFile struct {
	Plugins Config `yaml:"plugins"`
}

// LoadConfig reads the plugin configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, NewConfigReadError(path, err)
	}
	return ParseConfig(path, raw)
}

// ParseConfig decodes YAML configuration bytes. The path is only used
// for error context.
func ParseConfig(path string, raw []byte) (Config, error) {
	var file configFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Config{}, NewConfigParseError(path, err)
	}
	return file.Plugins, nil
}

// DefaultConfigPath returns the host's plugin configuration file
// location under the user configuration directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", NewConfigReadError("", err)
	}
	return filepath.Join(dir, "dracfetch", "config.yaml"), nil
}

// discovery.go: Plugin search paths and module file discovery
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AddSearchPath appends a directory to the plugin search path list. The
// append is idempotent: a path already present keeps its original
// position, so earlier paths keep winning discovery conflicts.
func (m *Manager) AddSearchPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.searchPaths {
		if existing == path {
			return
		}
	}
	m.searchPaths = append(m.searchPaths, path)
	m.logger.Debug("Added plugin search path", "path", path)
}

// SearchPaths returns the configured search paths in registration order.
func (m *Manager) SearchPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.searchPaths))
	copy(out, m.searchPaths)
	return out
}

// ScanForPlugins rebuilds the discovered-plugin map by listing every
// search path, in registration order, for files carrying the platform
// module extension. The first occurrence of a derived name wins — later
// search paths cannot shadow earlier ones, mirroring PATH lookup.
//
// The map carries no ownership: rescanning never affects plugins that
// are already loaded. Missing or unreadable directories are skipped.
func (m *Manager) ScanForPlugins() error {
	ext := ModuleExtension()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.discovered = make(map[string]string)

	for _, searchPath := range m.searchPaths {
		entries, err := os.ReadDir(searchPath)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
				continue
			}

			name := strings.TrimSuffix(entry.Name(), ext)
			if _, taken := m.discovered[name]; taken {
				continue
			}
			m.discovered[name] = filepath.Join(searchPath, entry.Name())
		}
	}

	m.logger.Debug("Plugin scan complete",
		"search_paths", len(m.searchPaths),
		"discovered", len(m.discovered))
	return nil
}

// DefaultSearchPaths returns the platform default plugin directories:
// the system-wide locations, the user-local location, and a ./plugins
// fallback relative to the working directory. They are appended after,
// never instead of, host-configured paths.
func DefaultSearchPaths() []string {
	var paths []string

	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			paths = append(paths, filepath.Join(dir, "dracfetch", "plugins"))
		}
		if dir := os.Getenv("APPDATA"); dir != "" {
			paths = append(paths, filepath.Join(dir, "dracfetch", "plugins"))
		}
	} else {
		paths = append(paths,
			filepath.Join("/usr/local/lib", "dracfetch", "plugins"),
			filepath.Join("/usr/lib", "dracfetch", "plugins"),
		)
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, ".local", "lib", "dracfetch", "plugins"))
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, "plugins"))
	}
	return paths
}

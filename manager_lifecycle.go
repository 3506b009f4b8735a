// manager_lifecycle.go: Process-level initialize and shutdown
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

// Initialize brings the plugin system up: it appends the platform default
// search paths after any host-configured ones, scans once, and auto-loads
// every plugin named in the configuration. Auto-loading is best-effort —
// one plugin's failure is logged and the rest still load.
//
// Initialize is idempotent; a second call before Shutdown is a no-op
// success. When the plugin system is disabled by configuration the
// Manager still reports initialized, with nothing loaded.
func (m *Manager) Initialize(cfg Config) error {
	if m.initialized.Load() {
		return nil
	}

	if !cfg.Enabled {
		m.logger.Debug("Plugin system disabled by configuration")
		m.initialized.Store(true)
		return nil
	}

	if cfg.CacheFile != "" {
		store, err := NewSQLiteCache(cfg.CacheFile, m.logger)
		if err != nil {
			m.logger.Warn("Failed to open persistent plugin cache; using in-memory cache",
				"path", cfg.CacheFile, "error", err)
		} else {
			m.mu.Lock()
			m.cache = store
			m.ownsCache = true
			m.mu.Unlock()
		}
	}

	for _, path := range cfg.SearchPaths {
		m.AddSearchPath(path)
	}
	for _, path := range DefaultSearchPaths() {
		m.AddSearchPath(path)
	}

	if err := m.ScanForPlugins(); err != nil {
		// Static and explicitly loaded plugins still work without a scan.
		m.logger.Warn("Plugin scan failed", "error", err)
	}

	for _, name := range cfg.AutoLoad {
		m.logger.Debug("Auto-loading plugin", "plugin", name)
		if err := m.LoadPlugin(name); err != nil {
			m.logger.Warn("Failed to auto-load plugin", "plugin", name, "error", err)
		}
	}

	m.initialized.Store(true)
	m.logger.Info("Plugin system initialized",
		"discovered", len(m.ListDiscoveredPlugins()),
		"loaded", len(m.ListLoadedPlugins()))
	return nil
}

// Shutdown unloads every loaded plugin, best-effort, and resets the
// Manager so Initialize can be called again in the same process. Unload
// failures are logged and do not prevent the remaining plugins from being
// attempted.
func (m *Manager) Shutdown() {
	if !m.initialized.Load() {
		return
	}

	m.mu.RLock()
	names := make([]string, 0, len(m.records))
	for name, rec := range m.records {
		if rec.IsLoaded {
			names = append(names, name)
		}
	}
	m.mu.RUnlock()

	for _, name := range names {
		if err := m.UnloadPlugin(name); err != nil {
			m.logger.Error("Failed to unload plugin during shutdown",
				"plugin", name, "error", err)
		}
	}

	m.mu.Lock()
	for name, rec := range m.records {
		if rec.IsLoaded {
			m.logger.Warn("Discarding record for plugin that failed to unload",
				"plugin", name, "path", rec.Path)
		}
	}
	m.records = make(map[string]*LoadedPluginRecord)
	m.discovered = make(map[string]string)
	m.searchPaths = nil
	m.infoProviders = nil
	m.outputFormats = nil
	if m.ownsCache {
		if closer, ok := m.cache.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				m.logger.Warn("Failed to close plugin cache", "error", err)
			}
		}
		m.cache = NewMemoryCache()
		m.ownsCache = false
	}
	m.mu.Unlock()

	m.initialized.Store(false)
	m.logger.Info("Plugin system shut down")
}

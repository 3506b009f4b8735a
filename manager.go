// manager.go: Plugin registry and lifecycle orchestrator
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// StaticPluginPath is the sentinel origin recorded for plugins that were
// compiled into the binary instead of loaded from a module file.
const StaticPluginPath = "<static>"

// LoadedPluginRecord is the authoritative ownership record for one loaded
// plugin. The Manager holds exactly one record per plugin name; the
// instance is owned by its record and is only ever aliased by the
// type-indexed views while the record is loaded and ready.
type LoadedPluginRecord struct {
	// ID uniquely identifies this load of the plugin.
	ID string

	// Instance is the plugin behavior, owned by this record.
	Instance Plugin

	// Handle is the dynamic module handle; nil for static plugins.
	Handle ModuleHandle

	// Path is the module file the plugin was loaded from, or
	// StaticPluginPath.
	Path string

	// Metadata is a copy of the plugin's descriptor taken at load time.
	Metadata PluginMetadata

	// LoadedAt records when the instance was created.
	LoadedAt time.Time

	// IsLoaded is true from successful instance creation until unload.
	IsLoaded bool

	// IsInitialized guards against double initialization.
	IsInitialized bool

	// IsReady mirrors the instance's post-initialize readiness; only
	// ready records appear in the type-indexed views.
	IsReady bool
}

// Manager discovers, loads, and unloads plugins and answers all queries
// about them. One reader/writer lock guards every piece of registry
// state; read-only queries share it, mutations hold it exclusively.
//
// Foreign plugin code (create, initialize, shutdown, destroy) is never
// invoked while the lock is held — a plugin that re-enters the Manager
// from its own lifecycle hooks must not deadlock the host. An in-flight
// name set keeps the one-record-per-name invariant across the unlocked
// window.
type Manager struct {
	mu         sync.RWMutex
	flightCond *sync.Cond
	inFlight   map[string]struct{}

	records     map[string]*LoadedPluginRecord
	discovered  map[string]string
	searchPaths []string

	// Type-indexed views: non-owning references into loaded+ready
	// records, one slice per capability, so per-run dispatch never scans
	// the registry.
	infoProviders []InfoProvider
	outputFormats []OutputFormat

	loader  ModuleLoader
	statics *StaticRegistry
	cache   PluginCache
	logger  Logger

	// ownsCache marks a cache the Manager opened itself (from
	// Config.CacheFile) and must close on Shutdown.
	ownsCache bool

	initialized atomic.Bool
}

// ManagerOptions configures a Manager. Zero values get sensible
// defaults: the platform module loader, the process-wide static
// registry, an in-memory cache, and a silent logger.
type ManagerOptions struct {
	// Loader resolves and loads dynamic plugin modules.
	Loader ModuleLoader

	// Statics is the static plugin registry consulted before dynamic
	// loading.
	Statics *StaticRegistry

	// Cache is the facade handed to plugins at initialization.
	Cache PluginCache

	// Logger receives operational events.
	Logger Logger
}

// NewManager creates a Manager. Construct one per host; there is no
// ambient singleton, so tests can run independent managers in isolation.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Loader == nil {
		opts.Loader = NewPlatformLoader()
	}
	if opts.Statics == nil {
		opts.Statics = DefaultStaticRegistry()
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}

	m := &Manager{
		inFlight:   make(map[string]struct{}),
		records:    make(map[string]*LoadedPluginRecord),
		discovered: make(map[string]string),
		loader:     opts.Loader,
		statics:    opts.Statics,
		cache:      opts.Cache,
		logger:     NewLogger(opts.Logger),
	}
	m.flightCond = sync.NewCond(&m.mu)
	return m
}

// Cache returns the cache facade handed to plugins.
func (m *Manager) Cache() PluginCache {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache
}

// IsInitialized reports whether Initialize completed.
func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

// Plugin returns the named plugin's instance, or false when it is not
// loaded. The caller must not retain the instance across an unload.
func (m *Manager) Plugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[name]
	if !ok || !rec.IsLoaded {
		return nil, false
	}
	return rec.Instance, true
}

// Record returns a copy of the named plugin's record so callers can
// inspect lifecycle state, including why initialization failed.
func (m *Manager) Record(name string) (LoadedPluginRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[name]
	if !ok {
		return LoadedPluginRecord{}, false
	}
	return *rec, true
}

// InfoProviders returns the loaded-and-ready info provider plugins.
func (m *Manager) InfoProviders() []InfoProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]InfoProvider, len(m.infoProviders))
	copy(out, m.infoProviders)
	return out
}

// OutputFormats returns the loaded-and-ready output format plugins.
func (m *Manager) OutputFormats() []OutputFormat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]OutputFormat, len(m.outputFormats))
	copy(out, m.outputFormats)
	return out
}

// OutputFormatByName returns the ready output format plugin supporting
// formatName.
func (m *Manager) OutputFormatByName(formatName string) (OutputFormat, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.outputFormats {
		for _, name := range p.FormatNames() {
			if name == formatName {
				return p, true
			}
		}
	}
	return nil, false
}

// ListLoadedPlugins returns the metadata of every loaded plugin, sorted
// by name. Records whose initialization failed are included; readiness
// is visible through Record.
func (m *Manager) ListLoadedPlugins() []PluginMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]PluginMetadata, 0, len(m.records))
	for _, rec := range m.records {
		if rec.IsLoaded {
			out = append(out, rec.Metadata)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadedPluginNames returns the registry names of all loaded plugins,
// sorted. These are the names LoadPlugin and UnloadPlugin accept, which
// can differ from the self-reported Metadata.Name.
func (m *Manager) LoadedPluginNames() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.records))
	for name, rec := range m.records {
		if rec.IsLoaded {
			names = append(names, name)
		}
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names
}

// ListDiscoveredPlugins returns the names found by the last scan, sorted.
func (m *Manager) ListDiscoveredPlugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.discovered))
	for name := range m.discovered {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsPluginLoaded reports whether the named plugin is currently loaded.
func (m *Manager) IsPluginLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[name]
	return ok && rec.IsLoaded
}

// addToViews publishes a ready record into its capability view. The
// capability conversion happens once here, not on every query. Caller
// holds the exclusive lock.
func (m *Manager) addToViews(rec *LoadedPluginRecord) {
	switch rec.Metadata.Type {
	case TypeInfoProvider:
		if p, ok := rec.Instance.(InfoProvider); ok {
			m.infoProviders = append(m.infoProviders, p)
		} else {
			m.logger.Warn("Plugin declares info-provider type but lacks the capability",
				"plugin", rec.Metadata.Name)
		}
	case TypeOutputFormat:
		if p, ok := rec.Instance.(OutputFormat); ok {
			m.outputFormats = append(m.outputFormats, p)
		} else {
			m.logger.Warn("Plugin declares output-format type but lacks the capability",
				"plugin", rec.Metadata.Name)
		}
	}
}

// removeFromViews drops a record's instance from whichever view holds
// it. Caller holds the exclusive lock.
func (m *Manager) removeFromViews(rec *LoadedPluginRecord) {
	switch rec.Metadata.Type {
	case TypeInfoProvider:
		kept := m.infoProviders[:0]
		for _, p := range m.infoProviders {
			if Plugin(p) != rec.Instance {
				kept = append(kept, p)
			}
		}
		m.infoProviders = kept
	case TypeOutputFormat:
		kept := m.outputFormats[:0]
		for _, p := range m.outputFormats {
			if Plugin(p) != rec.Instance {
				kept = append(kept, p)
			}
		}
		m.outputFormats = kept
	}
}

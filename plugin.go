// plugin.go: Core plugin capability interfaces
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

// Plugin is the base lifecycle contract every plugin must implement.
//
// Contract rules:
//   - Metadata must be callable before Initialize and has no side effects.
//   - Initialize is called at most once per instance by the Manager; it may
//     perform I/O and receives the cache facade for persisting expensive
//     results. A plugin must not retain the facade beyond its own Shutdown.
//   - Shutdown must be safe to call even if Initialize never succeeded and
//     must not panic.
//   - Ready is cheap, has no side effects, and reflects post-Initialize
//     state.
type Plugin interface {
	// Metadata returns the plugin's identity record.
	Metadata() PluginMetadata

	// Initialize prepares the plugin for use. The cache facade may be used
	// to persist expensive results across runs.
	Initialize(cache PluginCache) error

	// Shutdown releases the plugin's resources.
	Shutdown()

	// Ready reports whether the plugin can serve queries.
	Ready() bool
}

// InfoProvider is implemented by plugins that contribute additional
// information fields to the host's output.
//
// CollectData and DisplayValue must fail cleanly, never panic, when called
// while !Ready().
type InfoProvider interface {
	Plugin

	// CollectData pulls or refreshes the plugin's data. Implementations
	// should consult the cache facade to avoid redundant expensive fetches.
	CollectData(cache PluginCache) error

	// Fields returns the collected key/value pairs.
	Fields() map[string]string

	// DisplayValue returns the single value the host shows for this
	// provider, or a NotFound error when there is nothing to show.
	DisplayValue() (string, error)

	// DisplayIcon returns the icon glyph shown next to the value.
	DisplayIcon() string

	// DisplayLabel returns the label shown next to the value.
	DisplayLabel() string

	// LastError returns a human-readable description of the most recent
	// collection failure, if any.
	LastError() (string, bool)

	// Enabled reports whether the provider is enabled by its own
	// configuration.
	Enabled() bool
}

// OutputFormat is implemented by plugins that contribute additional output
// formats beyond the host's built-in ones.
type OutputFormat interface {
	Plugin

	// FormatOutput renders the collected data in the named format. data
	// holds the host's own fields; pluginData holds per-provider field
	// maps keyed by plugin name. It fails when the plugin is not ready or
	// the format name is unknown.
	FormatOutput(formatName string, data map[string]string, pluginData map[string]map[string]string) (string, error)

	// FormatNames returns every format name this plugin supports.
	FormatNames() []string

	// FileExtension returns the file extension (without dot) for the
	// named format.
	FileExtension(formatName string) string
}

// PluginCache is the narrow key/value-with-TTL facade handed to plugins at
// initialization. Plugins must not assume any particular backing store and
// must not retain the facade past their own Shutdown call.
type PluginCache interface {
	// Get returns the cached value for key, or false when absent or
	// expired.
	Get(key string) (string, bool)

	// Set stores value under key for ttlSeconds seconds.
	Set(key, value string, ttlSeconds uint32)
}

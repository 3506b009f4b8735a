// types.go: Common data types shared across the plugin runtime
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

// PluginType categorizes plugins for type-indexed lookup and dispatch.
//
// The Manager keeps one fast-access view per category so per-run queries
// never scan the full registry:
//   - TypeInfoProvider: contributes additional information fields
//   - TypeOutputFormat: contributes additional output formats
type PluginType uint8

const (
	// TypeUnknown is the zero value; a plugin must declare a real category.
	TypeUnknown PluginType = iota
	// TypeInfoProvider marks plugins that add new information fields.
	TypeInfoProvider
	// TypeOutputFormat marks plugins that add new output formats.
	TypeOutputFormat
)

// String returns a human-readable representation of the plugin type.
func (t PluginType) String() string {
	switch t {
	case TypeInfoProvider:
		return "info-provider"
	case TypeOutputFormat:
		return "output-format"
	default:
		return "unknown"
	}
}

// PluginDependencies declares what a plugin needs from the host environment.
//
// All four flags are advisory metadata for display and diagnostics only.
// Nothing in the runtime enforces them; a plugin declaring RequiresNetwork
// false may still open sockets.
type PluginDependencies struct {
	RequiresNetwork    bool `json:"requires_network" yaml:"requires_network"`
	RequiresFilesystem bool `json:"requires_filesystem" yaml:"requires_filesystem"`
	RequiresElevated   bool `json:"requires_elevated" yaml:"requires_elevated"`
	RequiresCaching    bool `json:"requires_caching" yaml:"requires_caching"`
}

// PluginMetadata is the read-only identity record a plugin exposes about
// itself. It must be obtainable before the plugin is initialized and is
// immutable once obtained; the Manager copies it into the plugin's record
// at load time.
//
// Fields:
//   - Name: unique identifier used as the registry key
//   - Version: semantic version string for display and diagnostics
//   - Author: plugin maintainer
//   - Description: free-text summary of what the plugin contributes
//   - Type: capability category for type-indexed dispatch
//   - Dependencies: advisory environment requirements
type PluginMetadata struct {
	Name         string             `json:"name" yaml:"name"`
	Version      string             `json:"version" yaml:"version"`
	Author       string             `json:"author,omitempty" yaml:"author,omitempty"`
	Description  string             `json:"description,omitempty" yaml:"description,omitempty"`
	Type         PluginType         `json:"type" yaml:"type"`
	Dependencies PluginDependencies `json:"dependencies" yaml:"dependencies"`
}

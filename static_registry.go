// static_registry.go: Registry of plugins compiled into the host binary
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"sort"
	"sync"
)

// StaticPluginEntry is the create/destroy factory pair for one statically
// linked plugin. It mirrors the dynamic module ABI without ever touching
// the OS module loader.
type StaticPluginEntry struct {
	Create  CreateFunc
	Destroy DestroyFunc
}

// StaticRegistry is a table of plugins linked directly into the binary.
// The Manager consults it before falling back to dynamic loading, so a
// single-binary distribution needs no shared-object files at all.
//
// The process-wide instance is reached through DefaultStaticRegistry;
// tests construct their own with NewStaticRegistry.
type StaticRegistry struct {
	mu      sync.RWMutex
	entries map[string]StaticPluginEntry
}

// NewStaticRegistry creates an empty static plugin registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{entries: make(map[string]StaticPluginEntry)}
}

// Register adds a plugin's factory pair under name. Registering the same
// name twice keeps the first entry; self-registration must be stable
// regardless of package initialization order.
func (r *StaticRegistry) Register(name string, entry StaticPluginEntry) error {
	if name == "" || entry.Create == nil || entry.Destroy == nil {
		return NewStaticEntryError(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return nil
	}
	r.entries[name] = entry
	return nil
}

// Contains reports whether name is registered.
func (r *StaticRegistry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Create instantiates the named static plugin, or nil when the name is
// unknown or the factory declined.
func (r *StaticRegistry) Create(name string) Plugin {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil
	}
	return entry.Create()
}

// Destroy releases an instance previously created by the named entry's
// factory. Unknown names and nil instances are ignored.
func (r *StaticRegistry) Destroy(name string, p Plugin) {
	if p == nil {
		return
	}

	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if ok {
		entry.Destroy(p)
	}
}

// Names returns the registered plugin names, sorted.
func (r *StaticRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// The default registry is constructed on first use so it exists before
// any plugin package's init runs, regardless of link order.
var (
	defaultStaticOnce sync.Once
	defaultStatic     *StaticRegistry
)

// DefaultStaticRegistry returns the process-wide static plugin registry.
func DefaultStaticRegistry() *StaticRegistry {
	defaultStaticOnce.Do(func() {
		defaultStatic = NewStaticRegistry()
	})
	return defaultStatic
}

// RegisterStaticPlugin registers a plugin with the default registry. It
// is meant to be called from a plugin package's init function:
//
//	func init() {
//	    dracplug.RegisterStaticPlugin("weather", dracplug.StaticPluginEntry{
//	        Create:  func() dracplug.Plugin { return New() },
//	        Destroy: func(dracplug.Plugin) {},
//	    })
//	}
func RegisterStaticPlugin(name string, entry StaticPluginEntry) error {
	return DefaultStaticRegistry().Register(name, entry)
}

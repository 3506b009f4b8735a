// Package dracplug implements the plugin runtime for the dracfetch
// system-information tool. It discovers, loads, initializes, queries, and
// unloads extension modules that contribute additional information fields
// or additional output formats.
//
// Two kinds of plugins are supported:
//   - Dynamic plugins: shared objects built with the Go plugin build mode
//     and loaded at runtime through the platform module loader. Every
//     dynamic plugin must export the CreatePlugin/DestroyPlugin factory
//     pair.
//   - Static plugins: ordinary packages compiled into the host binary that
//     self-register with the static registry at init time. This is the
//     single-binary distribution mode.
//
// The Manager is the orchestrator. It owns the authoritative table of
// loaded plugins, keeps type-indexed views for fast dispatch, and drives
// every plugin through its lifecycle:
//
//	Unloaded -> Loaded -> Initialized -> {Ready | InitFailed} -> Unloaded
//
// Basic usage:
//
//	mgr := dracplug.NewManager(dracplug.ManagerOptions{
//		Cache: dracplug.NewMemoryCache(),
//	})
//	if err := mgr.Initialize(dracplug.Config{
//		Enabled:  true,
//		AutoLoad: []string{"weather", "markdown_format"},
//	}); err != nil {
//		log.Fatal(err)
//	}
//	defer mgr.Shutdown()
//
//	for _, p := range mgr.InfoProviders() {
//		fields := p.Fields()
//		// render fields
//	}
//
// Plugin failures are never fatal to the host: a plugin whose Initialize
// fails stays observable in ListLoadedPlugins but is excluded from the
// type-indexed views, and panics escaping plugin code are recovered and
// converted into structured errors.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0
package dracplug

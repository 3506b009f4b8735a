// module_loader.go: Dynamic module loading abstraction
//
// This is the one place the runtime crosses the plugin ABI boundary. A
// dynamic plugin module must export exactly two factory symbols, named by
// SymbolCreate and SymbolDestroy. Destruction must always go back through
// the same module's destroy function — never a generic release — and an
// instance is always destroyed before its module handle is released, so
// plugin code never runs after its module is gone.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"runtime"
)

// Exported symbol names forming the ABI contract every dynamic plugin
// module must satisfy.
const (
	// SymbolCreate names the no-argument factory returning a new Plugin.
	SymbolCreate = "CreatePlugin"

	// SymbolDestroy names the destructor taking the instance SymbolCreate
	// returned.
	SymbolDestroy = "DestroyPlugin"
)

// CreateFunc is the resolved create factory: returns a newly allocated
// plugin instance, or nil on failure.
type CreateFunc func() Plugin

// DestroyFunc is the resolved destroy factory: releases an instance
// previously returned by the same module's CreateFunc.
type DestroyFunc func(Plugin)

// ModuleHandle is an opaque reference to a loaded plugin module. Static
// plugins carry a nil handle.
type ModuleHandle any

// ModuleLoader abstracts the platform mechanism for loading plugin
// modules and resolving their factory symbols. The Manager is written
// against this interface so tests can substitute a fake.
type ModuleLoader interface {
	// Load opens the module at path.
	Load(path string) (ModuleHandle, error)

	// Unload releases a module handle. The caller guarantees the module's
	// plugin instance was already destroyed through DestroyFunc.
	Unload(handle ModuleHandle) error

	// ResolveCreate resolves the SymbolCreate factory.
	ResolveCreate(handle ModuleHandle) (CreateFunc, error)

	// ResolveDestroy resolves the SymbolDestroy factory.
	ResolveDestroy(handle ModuleHandle) (DestroyFunc, error)
}

// ModuleExtension returns the plugin module file extension for the
// current platform, including the leading dot.
func ModuleExtension() string {
	return moduleExtensionFor(runtime.GOOS)
}

func moduleExtensionFor(goos string) string {
	switch goos {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		return ".so"
	}
}

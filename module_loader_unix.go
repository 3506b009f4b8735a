// module_loader_unix.go: Platform loader built on the Go plugin package
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin || freebsd

package dracplug

import (
	"plugin"
)

// platformLoader implements ModuleLoader with the standard library plugin
// package, which is the OS dlopen/dlsym mechanism on the platforms that
// support it.
type platformLoader struct{}

// NewPlatformLoader returns the dynamic module loader for this platform.
func NewPlatformLoader() ModuleLoader {
	return platformLoader{}
}

// Load implements ModuleLoader.
func (platformLoader) Load(path string) (ModuleHandle, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, NewModuleLoadError(path, err)
	}
	return p, nil
}

// Unload implements ModuleLoader. The Go runtime never unmaps plugin
// code, so releasing the handle is dropping our reference; the ordering
// guarantee (instance destroyed first) is still enforced by the Manager
// so the contract holds on platforms that do unmap.
func (platformLoader) Unload(handle ModuleHandle) error {
	return nil
}

// ResolveCreate implements ModuleLoader.
func (platformLoader) ResolveCreate(handle ModuleHandle) (CreateFunc, error) {
	mod, ok := handle.(*plugin.Plugin)
	if !ok {
		return nil, NewSymbolWrongTypeError(SymbolCreate)
	}

	sym, err := mod.Lookup(SymbolCreate)
	if err != nil {
		return nil, NewSymbolNotFoundError(SymbolCreate, err)
	}

	create, ok := sym.(func() Plugin)
	if !ok {
		return nil, NewSymbolWrongTypeError(SymbolCreate)
	}
	return CreateFunc(create), nil
}

// ResolveDestroy implements ModuleLoader.
func (platformLoader) ResolveDestroy(handle ModuleHandle) (DestroyFunc, error) {
	mod, ok := handle.(*plugin.Plugin)
	if !ok {
		return nil, NewSymbolWrongTypeError(SymbolDestroy)
	}

	sym, err := mod.Lookup(SymbolDestroy)
	if err != nil {
		return nil, NewSymbolNotFoundError(SymbolDestroy, err)
	}

	destroy, ok := sym.(func(Plugin))
	if !ok {
		return nil, NewSymbolWrongTypeError(SymbolDestroy)
	}
	return DestroyFunc(destroy), nil
}

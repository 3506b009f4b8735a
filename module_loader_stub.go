// module_loader_stub.go: Stub loader for platforms without plugin support
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

//go:build !(linux || darwin || freebsd)

package dracplug

// platformLoader is the stub used where the Go plugin build mode is not
// available. Every operation fails with NotSupported; static plugins
// remain fully functional.
type platformLoader struct{}

// NewPlatformLoader returns the dynamic module loader for this platform.
func NewPlatformLoader() ModuleLoader {
	return platformLoader{}
}

// Load implements ModuleLoader.
func (platformLoader) Load(path string) (ModuleHandle, error) {
	return nil, NewPlatformUnsupportedError("load")
}

// Unload implements ModuleLoader.
func (platformLoader) Unload(handle ModuleHandle) error {
	return NewPlatformUnsupportedError("unload")
}

// ResolveCreate implements ModuleLoader.
func (platformLoader) ResolveCreate(handle ModuleHandle) (CreateFunc, error) {
	return nil, NewPlatformUnsupportedError("resolve-create")
}

// ResolveDestroy implements ModuleLoader.
func (platformLoader) ResolveDestroy(handle ModuleHandle) (DestroyFunc, error) {
	return nil, NewPlatformUnsupportedError("resolve-destroy")
}

// panic_recovery.go: Panic containment at the plugin call boundary
//
// A panic escaping foreign plugin code must never take down the host, so
// every call into a plugin instance goes through one of these guards and
// comes back as a structured error instead.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"runtime"
)

// withStackRecover returns a deferred recovery function that logs panic
// details with a full stack trace. Used for goroutines whose panics have
// no caller to return an error to.
//
//	go func() {
//	    defer withStackRecover(logger)()
//	    // potentially panicking code
//	}()
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)

			logger.Error("Panic recovered in goroutine",
				"panic", r,
				"stack", string(buf[:n]))
		}
	}
}

// guardedCall invokes fn and converts a panic into a structured plugin
// error attributed to pluginName/operation. The plugin's own error return
// passes through unchanged.
func guardedCall(pluginName, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPluginPanicError(pluginName, operation, r)
		}
	}()
	return fn()
}

// guardedShutdown invokes a plugin's Shutdown, which by contract must not
// panic; if it does anyway the panic is contained and logged.
func guardedShutdown(p Plugin, name string, logger Logger) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			logger.Error("Panic recovered during plugin shutdown",
				"plugin", name,
				"panic", r,
				"stack", string(buf[:n]))
		}
	}()
	p.Shutdown()
}

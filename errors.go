// errors.go: structured error definitions for the plugin runtime
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	stderrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the plugin runtime.
//
// The taxonomy has four kinds: NotFound (unknown plugin name or absent
// capability), Internal (ABI/symbol/allocation failure), NotSupported
// (platform or build lacks a capability), and ApiUnavailable/Other for
// failures surfaced by plugin code itself.
const (
	// NotFound errors (1000-1099)
	ErrCodePluginNotFound = "PLUGIN_1001"
	ErrCodeFormatNotFound = "PLUGIN_1002"
	ErrCodeNoDisplayValue = "PLUGIN_1003"

	// Internal errors (1100-1199): ABI boundary, symbol resolution,
	// instance creation
	ErrCodeModuleLoadFailed  = "ABI_1101"
	ErrCodeSymbolNotFound    = "ABI_1102"
	ErrCodeSymbolWrongType   = "ABI_1103"
	ErrCodeCreateFailed      = "ABI_1104"
	ErrCodeModuleUnload      = "ABI_1105"
	ErrCodeStaticEntryBroken = "ABI_1106"

	// NotSupported errors (1200-1299)
	ErrCodePlatformUnsupported = "PLATFORM_1201"

	// Plugin-reported failures (1300-1399)
	ErrCodePluginFailure  = "PLUGIN_1301"
	ErrCodePluginPanic    = "PLUGIN_1302"
	ErrCodePluginNotReady = "PLUGIN_1303"
	ErrCodeApiUnavailable = "PLUGIN_1304"

	// Configuration errors (1400-1499)
	ErrCodeConfigRead     = "CONFIG_1401"
	ErrCodeConfigParse    = "CONFIG_1402"
	ErrCodeConfigWatcher  = "CONFIG_1403"
	ErrCodeManagerStopped = "CONFIG_1404"

	// Cache errors (1500-1599)
	ErrCodeCacheStore = "CACHE_1501"
)

// NotFound error constructors

func NewPluginNotFoundError(name string) *errors.Error {
	return errors.New(ErrCodePluginNotFound, "Plugin not found").
		WithUserMessage("The requested plugin is not loaded and was not found in any search path").
		WithContext("plugin_name", name).
		WithSeverity("error")
}

func NewFormatNotFoundError(pluginName, formatName string) *errors.Error {
	return errors.New(ErrCodeFormatNotFound, "Format not found").
		WithUserMessage("The plugin does not support the requested output format").
		WithContext("plugin_name", pluginName).
		WithContext("format_name", formatName).
		WithSeverity("error")
}

func NewNoDisplayValueError(pluginName string) *errors.Error {
	return errors.New(ErrCodeNoDisplayValue, "No display value").
		WithUserMessage("The provider has nothing to show").
		WithContext("plugin_name", pluginName).
		WithSeverity("info")
}

// Internal error constructors (ABI boundary)

func NewModuleLoadError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeModuleLoadFailed, "Module load failed").
		WithUserMessage("The platform loader rejected the plugin module").
		WithContext("module_path", path).
		WithSeverity("error")
}

func NewSymbolNotFoundError(symbol string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSymbolNotFound, "Required symbol not found").
		WithUserMessage("The plugin module does not export a required factory symbol").
		WithContext("symbol", symbol).
		WithSeverity("error")
}

func NewSymbolWrongTypeError(symbol string) *errors.Error {
	return errors.New(ErrCodeSymbolWrongType, "Symbol has wrong type").
		WithUserMessage("An exported factory symbol does not match the plugin ABI contract").
		WithContext("symbol", symbol).
		WithSeverity("error")
}

func NewCreateFailedError(name string) *errors.Error {
	return errors.New(ErrCodeCreateFailed, "Plugin creation returned nil").
		WithUserMessage("The plugin factory returned a nil instance").
		WithContext("plugin_name", name).
		WithSeverity("error")
}

func NewModuleUnloadError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeModuleUnload, "Module unload failed").
		WithUserMessage("The platform loader failed to release the plugin module").
		WithContext("module_path", path).
		WithSeverity("error")
}

func NewStaticEntryError(name string) *errors.Error {
	return errors.New(ErrCodeStaticEntryBroken, "Static plugin entry is incomplete").
		WithUserMessage("A statically registered plugin is missing a factory function").
		WithContext("plugin_name", name).
		WithSeverity("error")
}

// NotSupported error constructor

func NewPlatformUnsupportedError(operation string) *errors.Error {
	return errors.New(ErrCodePlatformUnsupported, "Operation not supported on this platform").
		WithUserMessage("Dynamic plugin loading is not available in this build").
		WithContext("operation", operation).
		WithSeverity("warning")
}

// Plugin-reported failure constructors

func NewPluginFailureError(name, operation string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodePluginFailure, "Plugin operation failed").
		WithUserMessage("The plugin reported a failure").
		WithContext("plugin_name", name).
		WithContext("operation", operation).
		WithSeverity("warning")
}

func NewPluginPanicError(name, operation string, recovered any) *errors.Error {
	return errors.New(ErrCodePluginPanic, "Panic recovered in plugin code").
		WithUserMessage("The plugin panicked; it has been isolated from the host").
		WithContext("plugin_name", name).
		WithContext("operation", operation).
		WithContext("panic", recovered).
		WithSeverity("error")
}

func NewPluginNotReadyError(name string) *errors.Error {
	return errors.New(ErrCodePluginNotReady, "Plugin is not ready").
		WithUserMessage("The plugin was queried before it became ready").
		WithContext("plugin_name", name).
		WithSeverity("warning")
}

func NewApiUnavailableError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeApiUnavailable, "Upstream API unavailable").
		WithUserMessage("The plugin's upstream data source did not respond").
		WithContext("plugin_name", name).
		WithSeverity("warning").
		AsRetryable()
}

// Configuration error constructors

func NewConfigReadError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigRead, "Configuration file read failed").
		WithUserMessage("The configuration file could not be read").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParse, "Configuration parse error").
		WithUserMessage("Failed to parse the configuration file").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigWatcher, "Configuration watcher error: "+message).
		WithUserMessage("Configuration monitoring failed").
		WithSeverity("error")
}

func NewManagerStoppedError() *errors.Error {
	return errors.New(ErrCodeManagerStopped, "Manager is not initialized").
		WithUserMessage("The plugin manager has not been initialized or was shut down").
		WithSeverity("error")
}

// Cache error constructor

func NewCacheStoreError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeCacheStore, "Cache store error: "+message).
		WithUserMessage("The persistent cache store failed").
		WithSeverity("warning")
}

// IsNotFound reports whether err carries a NotFound code.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodePluginNotFound, ErrCodeFormatNotFound, ErrCodeNoDisplayValue)
}

// IsInternal reports whether err carries an ABI/internal failure code.
func IsInternal(err error) bool {
	return hasCode(err,
		ErrCodeModuleLoadFailed, ErrCodeSymbolNotFound, ErrCodeSymbolWrongType,
		ErrCodeCreateFailed, ErrCodeModuleUnload, ErrCodeStaticEntryBroken)
}

// IsNotSupported reports whether err carries the NotSupported code.
func IsNotSupported(err error) bool {
	return hasCode(err, ErrCodePlatformUnsupported)
}

func hasCode(err error, codes ...string) bool {
	var structured *errors.Error
	if !stderrors.As(err, &structured) {
		return false
	}
	for _, code := range codes {
		if string(structured.Code) == code {
			return true
		}
	}
	return false
}

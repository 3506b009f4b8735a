// config_watcher.go: Hot reload of the plugin configuration with Argus
//
// The watcher keeps a running Manager in sync with the configuration
// file: when the auto-load list changes it loads the added plugins and
// unloads the removed ones, and it rescans so newly dropped-in module
// files become loadable without a restart.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// ConfigWatcher watches the plugin configuration file and reconciles the
// Manager against every change.
type ConfigWatcher struct {
	manager    *Manager
	logger     Logger
	configPath string

	watcher *argus.Watcher
	current atomic.Pointer[Config]

	running atomic.Bool
	mu      sync.Mutex
}

// ConfigWatcherOptions customizes watcher behavior.
type ConfigWatcherOptions struct {
	// PollInterval is how often the file is checked for changes.
	// Defaults to 5 seconds.
	PollInterval time.Duration

	// Logger receives watcher events; defaults to the manager's silent
	// default.
	Logger Logger
}

// NewConfigWatcher creates a watcher for the configuration file at
// configPath, reconciling changes into manager.
func NewConfigWatcher(manager *Manager, configPath string, opts ConfigWatcherOptions) *ConfigWatcher {
	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Second
	}
	logger := NewLogger(opts.Logger)

	argusConfig := argus.Config{
		PollInterval:         opts.PollInterval,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filepath string) {
			logger.Error("Config file watching error", "error", err, "file", filepath)
		},
	}

	return &ConfigWatcher{
		manager:    manager,
		logger:     logger,
		configPath: configPath,
		watcher:    argus.New(argusConfig),
	}
}

// Start loads the current configuration as the reconciliation baseline
// and begins watching the file.
func (cw *ConfigWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running.Load() {
		return nil
	}

	// Reconciliation targets a running plugin system; watching before
	// Manager.Initialize would race its search-path and auto-load setup.
	if !cw.manager.IsInitialized() {
		return NewManagerStoppedError()
	}

	initial, err := LoadConfig(cw.configPath)
	if err != nil {
		return err
	}
	cw.current.Store(&initial)

	if err := cw.watcher.Watch(cw.configPath, cw.handleChange); err != nil {
		return NewConfigWatcherError("failed to watch config file", err)
	}
	if err := cw.watcher.Start(); err != nil {
		return NewConfigWatcherError("failed to start config watcher", err)
	}

	cw.running.Store(true)
	cw.logger.Info("Plugin config watcher started", "config_path", cw.configPath)
	return nil
}

// Stop stops watching. Safe to call multiple times.
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running.Load() {
		return nil
	}
	cw.running.Store(false)

	if err := cw.watcher.Stop(); err != nil {
		return NewConfigWatcherError("failed to stop config watcher", err)
	}
	cw.logger.Info("Plugin config watcher stopped")
	return nil
}

// handleChange is the Argus change callback.
func (cw *ConfigWatcher) handleChange(event argus.ChangeEvent) {
	defer withStackRecover(cw.logger)()

	if event.IsDelete {
		cw.logger.Warn("Plugin config file deleted; keeping last applied configuration",
			"config_path", cw.configPath)
		return
	}

	next, err := LoadConfig(cw.configPath)
	if err != nil {
		cw.logger.Error("Failed to reload plugin config", "error", err)
		return
	}

	previous := cw.current.Load()
	cw.current.Store(&next)
	cw.Reconcile(*previous, next)
}

// Reconcile applies the difference between two configurations to the
// Manager: added search paths are registered, the plugin list is
// rescanned, auto-load names that are not currently loaded are loaded,
// and plugins no longer named are unloaded. Loading keys off the
// Manager's actual state rather than the previous list, so re-enabling
// the system restores an unchanged auto-load list after a disable
// emptied it. All of it is best-effort, matching the Initialize
// auto-load loop.
func (cw *ConfigWatcher) Reconcile(previous, next Config) {
	if !next.Enabled {
		cw.logger.Info("Plugin system disabled by config change; unloading all plugins")
		for _, name := range cw.manager.LoadedPluginNames() {
			if err := cw.manager.UnloadPlugin(name); err != nil {
				cw.logger.Warn("Failed to unload plugin", "plugin", name, "error", err)
			}
		}
		return
	}

	for _, path := range next.SearchPaths {
		cw.manager.AddSearchPath(path)
	}
	if err := cw.manager.ScanForPlugins(); err != nil {
		cw.logger.Warn("Plugin rescan failed", "error", err)
	}

	nextSet := make(map[string]struct{}, len(next.AutoLoad))
	for _, name := range next.AutoLoad {
		nextSet[name] = struct{}{}
	}

	for _, name := range next.AutoLoad {
		if cw.manager.IsPluginLoaded(name) {
			continue
		}
		if err := cw.manager.LoadPlugin(name); err != nil {
			cw.logger.Warn("Failed to load auto-load plugin",
				"plugin", name, "error", err)
		}
	}

	for _, name := range previous.AutoLoad {
		if _, still := nextSet[name]; still {
			continue
		}
		if !cw.manager.IsPluginLoaded(name) {
			continue
		}
		if err := cw.manager.UnloadPlugin(name); err != nil {
			cw.logger.Warn("Failed to unload plugin removed from auto-load list",
				"plugin", name, "error", err)
		}
	}
}

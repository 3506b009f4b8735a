// manager_loading.go: Plugin load and unload paths
//
// Both paths follow the same locking discipline: registry state is only
// touched under the exclusive lock, foreign plugin code only runs outside
// it, and the in-flight set bridges the gap so a name has at most one
// load or unload in progress at a time.
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"github.com/agilira/go-timecache"
	"github.com/google/uuid"
)

// LoadPlugin loads and initializes the named plugin. Loading an already
// loaded name is a no-op success. Static plugins take priority over
// discovered module files of the same name.
//
// On any module/symbol/creation failure the error propagates and no
// record is inserted. When the instance is created but its initialization
// fails, the record is kept — excluded from the type-indexed views — so
// the host can still inspect the failure, and the initialization error is
// returned.
func (m *Manager) LoadPlugin(name string) error {
	m.mu.Lock()
	m.waitInFlightLocked(name)

	if rec, ok := m.records[name]; ok && rec.IsLoaded {
		m.mu.Unlock()
		m.logger.Debug("Plugin already loaded", "plugin", name)
		return nil
	}

	isStatic := m.statics.Contains(name)
	path := StaticPluginPath
	if !isStatic {
		discovered, ok := m.discovered[name]
		if !ok {
			m.mu.Unlock()
			return NewPluginNotFoundError(name)
		}
		path = discovered
	}

	m.inFlight[name] = struct{}{}
	// Snapshot the cache facade while the lock is held; Initialize and
	// Shutdown may swap m.cache concurrently with the unlocked window.
	cache := m.cache
	m.mu.Unlock()

	// Foreign code from here to the re-lock: factory, metadata,
	// initialize.
	rec, err := m.createRecord(name, isStatic, path)
	if err != nil {
		m.clearInFlight(name)
		return err
	}

	initErr := m.initializePluginInstance(rec, cache)

	m.mu.Lock()
	delete(m.inFlight, name)
	m.records[name] = rec
	if rec.IsReady {
		m.addToViews(rec)
	}
	m.flightCond.Broadcast()
	m.mu.Unlock()

	if initErr != nil {
		m.logger.Warn("Plugin failed to initialize", "plugin", name, "error", initErr)
		return initErr
	}

	m.logger.Debug("Plugin loaded", "plugin", name, "path", path, "ready", rec.IsReady)
	return nil
}

// createRecord creates the plugin instance from its static entry or its
// module file and wraps it in a fresh record. No lock is held.
func (m *Manager) createRecord(name string, isStatic bool, path string) (*LoadedPluginRecord, error) {
	rec := &LoadedPluginRecord{
		ID:       uuid.NewString(),
		Path:     path,
		LoadedAt: timecache.CachedTime(),
	}

	if isStatic {
		instance, err := m.createGuarded(name, func() Plugin { return m.statics.Create(name) })
		if err != nil {
			return nil, err
		}
		rec.Instance = instance
	} else {
		handle, err := m.loader.Load(path)
		if err != nil {
			return nil, err
		}

		create, err := m.loader.ResolveCreate(handle)
		if err != nil {
			_ = m.loader.Unload(handle)
			return nil, err
		}

		instance, err := m.createGuarded(name, create)
		if err != nil {
			_ = m.loader.Unload(handle)
			return nil, err
		}

		rec.Instance = instance
		rec.Handle = handle
	}

	if err := guardedCall(name, "metadata", func() error {
		rec.Metadata = rec.Instance.Metadata()
		return nil
	}); err != nil {
		if destroyErr := m.destroyInstance(name, rec); destroyErr != nil {
			m.logger.Error("Failed to destroy instance after metadata failure",
				"plugin", name, "error", destroyErr)
		}
		return nil, err
	}

	rec.IsLoaded = true
	return rec, nil
}

// createGuarded runs a create factory under a panic guard and converts a
// nil result into an internal error.
func (m *Manager) createGuarded(name string, create CreateFunc) (Plugin, error) {
	var instance Plugin
	if err := guardedCall(name, "create", func() error {
		instance = create()
		return nil
	}); err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, NewCreateFailedError(name)
	}
	return instance, nil
}

// initializePluginInstance drives a record through initialization exactly
// once, handing it the cache facade the caller snapshotted under the
// lock. On failure the record survives with IsReady false so the failure
// stays observable. No lock is held; the record is not yet published.
func (m *Manager) initializePluginInstance(rec *LoadedPluginRecord, cache PluginCache) error {
	if rec.IsInitialized {
		return nil
	}

	name := rec.Metadata.Name
	if err := guardedCall(name, "initialize", func() error {
		return rec.Instance.Initialize(cache)
	}); err != nil {
		rec.IsReady = false
		return err
	}

	rec.IsInitialized = true

	ready := false
	if err := guardedCall(name, "ready", func() error {
		ready = rec.Instance.Ready()
		return nil
	}); err != nil {
		rec.IsReady = false
		return err
	}

	rec.IsReady = ready
	if !ready {
		m.logger.Warn("Plugin initialized but is not ready", "plugin", name)
	}
	return nil
}

// UnloadPlugin shuts down, destroys, and removes the named plugin. It
// fails with NotFound when the name is unknown. Destruction goes through
// the path that created the instance: the static registry's destroy
// factory for static plugins, the module's DestroyPlugin symbol
// otherwise. The instance is always destroyed before the module handle is
// released.
//
// If the module's destroy symbol cannot be resolved the unload fails with
// an internal error and the record remains — degraded, out of the views —
// rather than risking a mismatched-allocator free.
func (m *Manager) UnloadPlugin(name string) error {
	m.mu.Lock()
	m.waitInFlightLocked(name)

	rec, ok := m.records[name]
	if !ok {
		m.mu.Unlock()
		return NewPluginNotFoundError(name)
	}

	wasReady := rec.IsReady
	rec.IsReady = false
	m.removeFromViews(rec)
	m.inFlight[name] = struct{}{}
	m.mu.Unlock()

	if wasReady {
		guardedShutdown(rec.Instance, name, m.logger)
	}

	destroyErr := m.destroyInstance(name, rec)

	m.mu.Lock()
	delete(m.inFlight, name)
	if destroyErr == nil {
		delete(m.records, name)
	}
	m.flightCond.Broadcast()
	m.mu.Unlock()

	if destroyErr != nil {
		m.logger.Error("Plugin unload failed", "plugin", name, "error", destroyErr)
		return destroyErr
	}

	m.logger.Debug("Plugin unloaded", "plugin", name)
	return nil
}

// destroyInstance releases rec's instance through the matching destroy
// path, then the module handle. No lock is held.
func (m *Manager) destroyInstance(name string, rec *LoadedPluginRecord) error {
	if rec.Handle == nil {
		// Static plugins are identified by the nil module handle.
		m.statics.Destroy(name, rec.Instance)
		return nil
	}

	destroy, err := m.loader.ResolveDestroy(rec.Handle)
	if err != nil {
		return err
	}

	if err := guardedCall(name, "destroy", func() error {
		destroy(rec.Instance)
		return nil
	}); err != nil {
		return err
	}

	// Instance gone; only now is the module allowed to go away.
	if err := m.loader.Unload(rec.Handle); err != nil {
		return NewModuleUnloadError(rec.Path, err)
	}
	return nil
}

// waitInFlightLocked blocks while name has a load or unload in progress.
// Caller holds the exclusive lock; the lock is released while waiting.
func (m *Manager) waitInFlightLocked(name string) {
	for {
		if _, busy := m.inFlight[name]; !busy {
			return
		}
		m.flightCond.Wait()
	}
}

// clearInFlight removes name from the in-flight set after a failed load.
func (m *Manager) clearInFlight(name string) {
	m.mu.Lock()
	delete(m.inFlight, name)
	m.flightCond.Broadcast()
	m.mu.Unlock()
}

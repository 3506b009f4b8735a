// cache.go: In-memory TTL cache backing the plugin cache facade
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// MemoryCache is a process-local PluginCache. Entries expire lazily on
// read; there is no background sweeper because the host is a short-lived
// CLI process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value     string
	expiresAt int64 // unix nanoseconds
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryCacheEntry)}
}

// Get implements PluginCache.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if timecache.CachedTimeNano() >= entry.expiresAt {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced us.
		if current, still := c.entries[key]; still && timecache.CachedTimeNano() >= current.expiresAt {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

// Set implements PluginCache.
func (c *MemoryCache) Set(key, value string, ttlSeconds uint32) {
	expiresAt := timecache.CachedTimeNano() + int64(ttlSeconds)*int64(time.Second)

	c.mu.Lock()
	c.entries[key] = memoryCacheEntry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Len returns the number of entries currently stored, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

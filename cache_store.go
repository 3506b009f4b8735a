// cache_store.go: Persistent SQLite-backed plugin cache
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"database/sql"
	"time"

	"github.com/agilira/go-timecache"
	_ "modernc.org/sqlite"
)

// SQLiteCache is a PluginCache persisted to a SQLite database so plugin
// results survive across runs of the short-lived host process. Expiry is
// lazy: stale rows are dropped when read.
//
// The facade's Set has no error return; a broken cache degrades to
// cache misses rather than breaking the plugin, with failures logged.
type SQLiteCache struct {
	db     *sql.DB
	logger Logger
}

// NewSQLiteCache opens (creating if needed) the cache database at path.
func NewSQLiteCache(path string, logger Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, NewCacheStoreError("failed to open cache database", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, NewCacheStoreError("failed to create cache schema", err)
	}

	return &SQLiteCache{db: db, logger: NewLogger(logger)}, nil
}

// Get implements PluginCache.
func (c *SQLiteCache) Get(key string) (string, bool) {
	var value string
	var expiresAt int64

	row := c.db.QueryRow(`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key)
	if err := row.Scan(&value, &expiresAt); err != nil {
		if err != sql.ErrNoRows {
			c.logger.Warn("Cache read failed", "key", key, "error", err)
		}
		return "", false
	}

	if timecache.CachedTimeNano() >= expiresAt {
		if _, err := c.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
			c.logger.Warn("Failed to evict expired cache entry", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// Set implements PluginCache.
func (c *SQLiteCache) Set(key, value string, ttlSeconds uint32) {
	expiresAt := timecache.CachedTimeNano() + int64(ttlSeconds)*int64(time.Second)

	_, err := c.db.Exec(
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		c.logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

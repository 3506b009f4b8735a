// cache_test.go: In-memory plugin cache tests
//
// Copyright (c) 2025 DracLabs
// SPDX-License-Identifier: MPL-2.0

package dracplug

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	cache := NewMemoryCache()

	if _, ok := cache.Get("missing"); ok {
		t.Error("Expected miss for an unknown key")
	}

	cache.Set("key", "value", 60)
	got, ok := cache.Get("key")
	if !ok || got != "value" {
		t.Errorf("Expected hit with 'value', got %q (hit=%v)", got, ok)
	}

	cache.Set("key", "updated", 60)
	got, _ = cache.Get("key")
	if got != "updated" {
		t.Errorf("Expected overwrite to 'updated', got %q", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()

	// A zero TTL entry is expired on the next read.
	cache.Set("ephemeral", "value", 0)
	time.Sleep(10 * time.Millisecond)
	if _, ok := cache.Get("ephemeral"); ok {
		t.Error("Expected the zero-TTL entry to expire")
	}

	cache.Set("durable", "value", 3600)
	if _, ok := cache.Get("durable"); !ok {
		t.Error("Expected the long-TTL entry to survive")
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set("shared", "value", 60)
				cache.Get("shared")
			}
		}()
	}
	wg.Wait()

	if got, ok := cache.Get("shared"); !ok || got != "value" {
		t.Errorf("Expected 'value' after concurrent churn, got %q (hit=%v)", got, ok)
	}
}

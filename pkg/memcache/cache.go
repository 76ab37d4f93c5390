// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package memcache wraps the autobrr ttlcache with the bookkeeping the
// stream pipeline needs: hit/miss counters, a live key index for
// pattern-based lookup and eviction, and per-entry TTL overrides.
package memcache

import (
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
)

// Entry is a key/value pair returned by pattern lookups.
type Entry[V any] struct {
	Key   string
	Value V
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Size    int    `json:"size"`
	MaxSize int    `json:"maxSize"`
}

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL key/value store safe for concurrent use. Set and Delete
// always replace the whole entry, so readers never observe partial state.
// Expiry is checked lazily on read; the ttlcache sweep reclaims entries
// that are never read again.
type Cache[V any] struct {
	inner      *ttlcache.Cache[string, item[V]]
	defaultTTL time.Duration
	maxSize    int

	mu   sync.RWMutex
	keys map[string]struct{}

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a cache with the given default TTL. maxSize is advisory and
// only reported through Stats; callers that care about bounding the cache
// are expected to check it.
func New[V any](defaultTTL time.Duration, maxSize int) *Cache[V] {
	c := &Cache[V]{
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		keys:       make(map[string]struct{}),
	}

	opts := ttlcache.Options[string, item[V]]{}.
		SetDefaultTTL(defaultTTL).
		SetDeallocationFunc(func(key string, _ item[V], _ ttlcache.DeallocationReason) {
			c.mu.Lock()
			delete(c.keys, key)
			c.mu.Unlock()
		})

	c.inner = ttlcache.New(opts)
	return c
}

// Get returns the value for key. An entry past its TTL behaves as a miss
// and is removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	it, found := c.inner.Get(key)
	if found && time.Now().After(it.expiresAt) {
		c.Delete(key)
		found = false
	}

	if !found {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	return it.value, true
}

// Set stores value under key with the cache's default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache[V]) SetTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()

	c.inner.Set(key, item[V]{value: value, expiresAt: time.Now().Add(ttl)}, ttl)
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.keys, key)
	c.mu.Unlock()

	c.inner.Delete(key)
}

// GetByPattern returns all live entries whose key matches the pattern.
// Entries that expired between indexing and lookup are skipped.
func (c *Cache[V]) GetByPattern(pattern *regexp.Regexp) []Entry[V] {
	now := time.Now()

	var entries []Entry[V]
	for _, key := range c.matchingKeys(pattern) {
		if it, found := c.inner.Get(key); found && now.Before(it.expiresAt) {
			entries = append(entries, Entry[V]{Key: key, Value: it.value})
		}
	}
	return entries
}

// DeletePattern evicts every entry whose key matches the pattern and
// returns the number of evicted keys.
func (c *Cache[V]) DeletePattern(pattern *regexp.Regexp) int {
	keys := c.matchingKeys(pattern)
	for _, key := range keys {
		c.Delete(key)
	}
	return len(keys)
}

func (c *Cache[V]) matchingKeys(pattern *regexp.Regexp) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []string
	for key := range c.keys {
		if pattern.MatchString(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Stats returns current counters. Size reflects the key index, which may
// briefly include entries the expiry sweep has not deallocated yet.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	size := len(c.keys)
	c.mu.RUnlock()

	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Size:    size,
		MaxSize: c.maxSize,
	}
}

// Close stops the underlying expiry timer.
func (c *Cache[V]) Close() {
	c.inner.Close()
}

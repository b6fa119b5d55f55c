package service

import (
	"sync"
	"time"
)

type cacheEntry struct {
	data    any
	fetched time.Time
}

// ttlCache is a short-lived response cache. A fresh entry is served as-is;
// a stale entry is refreshed through the fetch callback, and if the refresh
// fails the stale entry is served instead of the error.
//
// This sits in front of reconstruction, which is expensive. It is distinct
// from the projection memo inside the timeline package: that one never
// expires, this one turns over every TTL.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newTTLCache(ttl time.Duration, now func() time.Time) *ttlCache {
	if now == nil {
		now = time.Now
	}
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// get returns the cached value for key, refreshing it via fetch when the
// entry is missing or older than the TTL.
func (c *ttlCache) get(key string, fetch func() (any, error)) (any, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.fetched) < c.ttl {
		return entry.data, nil
	}

	data, err := fetch()
	if err != nil {
		if ok {
			return entry.data, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, fetched: c.now()}
	c.mu.Unlock()
	return data, nil
}

// hit reports whether key currently holds a fresh entry.
func (c *ttlCache) hit(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return ok && c.now().Sub(entry.fetched) < c.ttl
}

// clear drops all entries.
func (c *ttlCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

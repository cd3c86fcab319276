// Package cache provides the process-local TTL cache for resolved account
// hierarchies. Entries disappear on restart; that is acceptable, the source
// of truth is always the Ads API.
package cache

import (
	"sync"
	"time"

	"github.com/campaignlabs/ads-console/internal/models"
)

// DefaultTTL is the default time-to-live for cached hierarchies.
const DefaultTTL = time.Hour

// entry is a cached hierarchy with its fetch time.
type entry struct {
	hierarchy *models.Hierarchy
	fetchedAt time.Time
}

// HierarchyCache caches resolved hierarchies keyed by (user email, MCC ID).
// Expired entries are kept until overwritten or flushed so they can be
// served stale when every live resolution strategy fails.
type HierarchyCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a hierarchy cache with the given TTL.
func New(ttl time.Duration) *HierarchyCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &HierarchyCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// key builds the cache key. The separator cannot appear in an email and an
// MCC ID is digits only, so keys cannot collide.
func key(userEmail, mccID string) string {
	return userEmail + "\x00" + mccID
}

// Get returns the cached hierarchy for the key if present and fresh.
func (c *HierarchyCache) Get(userEmail, mccID string) (*models.Hierarchy, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key(userEmail, mccID)]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.hierarchy, true
}

// GetStale returns the cached hierarchy even if expired. Callers use this
// only after every live strategy failed.
func (c *HierarchyCache) GetStale(userEmail, mccID string) (*models.Hierarchy, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key(userEmail, mccID)]
	if !ok {
		return nil, false
	}
	return e.hierarchy, true
}

// Put stores a hierarchy for the key.
func (c *HierarchyCache) Put(userEmail, mccID string, h *models.Hierarchy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(userEmail, mccID)] = entry{hierarchy: h, fetchedAt: c.now()}
}

// Invalidate removes the entry for the key, forcing a live resolution on
// next access.
func (c *HierarchyCache) Invalidate(userEmail, mccID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key(userEmail, mccID))
}

// Flush removes every entry.
func (c *HierarchyCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of cached entries, fresh or stale.
func (c *HierarchyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

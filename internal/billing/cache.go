package billing

import (
	"sync"
	"time"
)

type cacheEntry struct {
	entitlement	*Entitlement
	expiresAt	time.Time
}

// entitlementCache — процессный кэш с ограниченным TTL. Состояние биллинга
// меняется редко, но должно наблюдаться не позже чем через ttl.
type entitlementCache struct {
	mu	sync.Mutex
	ttl	time.Duration
	entries	map[string]cacheEntry
	now	func() time.Time
}

func newEntitlementCache(ttl time.Duration) *entitlementCache {
	return &entitlementCache{
		ttl:		ttl,
		entries:	make(map[string]cacheEntry),
		now:		time.Now,
	}
}

func (c *entitlementCache) get(userKey string) (*Entitlement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userKey]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, userKey)
		return nil, false
	}
	return entry.entitlement, true
}

func (c *entitlementCache) put(userKey string, ent *Entitlement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[userKey] = cacheEntry{
		entitlement:	ent,
		expiresAt:	c.now().Add(c.ttl),
	}
}

package handshake

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache maps handshake tokens to item IDs. Tokens never change once minted,
// so an entry can only go stale when its item is deleted.
type Cache struct {
	c *cache.Cache
}

// NewCache returns a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// Get returns the item ID cached for token.
func (c *Cache) Get(token string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.c.Get(token)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Set caches the item ID for token.
func (c *Cache) Set(token, itemID string) {
	if c == nil {
		return
	}
	c.c.SetDefault(token, itemID)
}

// Forget drops token from the cache.
func (c *Cache) Forget(token string) {
	if c == nil {
		return
	}
	c.c.Delete(token)
}

package auth

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// IdentityCache keeps resolved identities for a short TTL so the auth
// middleware does not hit the store on every request. Permission changes
// made elsewhere become visible once the entry expires.
type IdentityCache struct {
	cache *lru.LRU[int64, *Identity]
}

func NewIdentityCache(size int, ttl time.Duration) *IdentityCache {
	if size <= 0 {
		size = 1024
	}
	return &IdentityCache{
		cache: lru.NewLRU[int64, *Identity](size, nil, ttl),
	}
}

func (c *IdentityCache) Get(userID int64) (*Identity, bool) {
	return c.cache.Get(userID)
}

func (c *IdentityCache) Add(id *Identity) {
	c.cache.Add(id.ID, id)
}

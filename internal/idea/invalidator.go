package idea

import (
	"context"
	"fmt"
	"idea-review-platform/redis"
)

func ownerVersionKey(ownerID uint64) string {
	return fmt.Sprintf("user:%d:ideas:version", ownerID)
}

// CacheInvalidator lets other services expire an owner's cached idea lists
// when they mutate an idea out of band (decisions, accepted proposals,
// rollbacks).
type CacheInvalidator struct {
	cache *redis.Cache
}

func NewCacheInvalidator(cache *redis.Cache) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

func (i *CacheInvalidator) InvalidateOwner(ctx context.Context, ownerID uint64) {
	i.cache.IncrementVersion(ctx, ownerVersionKey(ownerID))
}

// In file: internal/respcache/respcache.go

// Package respcache caches final direct replies in Redis so repeated
// identical prompts skip the model round-trip entirely. Only turns that ran
// NO remote action are ever stored here: an action has side effects (an
// email actually gets sent), and replaying its reply from cache would
// silently skip the action itself. Callers enforce that rule via the
// orchestrator's ToolUsed field.
package respcache

import (
	"context"
	"log"
	"time"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/version"

	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix = "chatcache"
	cacheTTL    = 24 * time.Hour
)

// Cache is a thin, optional layer over Redis. A nil redis client produces a
// cache where every lookup misses, so callers never branch on availability.
type Cache struct {
	rdb *redis.Client
}

// New creates a response cache. rdb may be nil.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Check looks for a previously stored reply to the same message under the
// current component versions. Redis errors are treated as misses.
func (c *Cache) Check(ctx context.Context, message string) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	key := version.CacheKey(cachePrefix, message)
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("Redis GET error for response cache: %v", err)
		return "", false
	}
	return val, true
}

// Store saves a final direct reply. Failures are logged and dropped; caching
// is an optimization, never a correctness concern.
func (c *Cache) Store(ctx context.Context, message, response string) {
	if c.rdb == nil {
		return
	}
	key := version.CacheKey(cachePrefix, message)
	if err := c.rdb.Set(ctx, key, response, cacheTTL).Err(); err != nil {
		log.Printf("Redis SET error for response cache: %v", err)
	}
}

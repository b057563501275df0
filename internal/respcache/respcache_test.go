// In file: internal/respcache/respcache_test.go
package respcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheWithoutRedis(t *testing.T) {
	cache := New(nil)

	// Every lookup misses and stores are no-ops; callers never branch on
	// whether Redis is configured.
	_, found := cache.Check(context.Background(), "hello")
	assert.False(t, found)

	cache.Store(context.Background(), "hello", "hi there")
	_, found = cache.Check(context.Background(), "hello")
	assert.False(t, found)
}

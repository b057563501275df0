// In file: internal/version/version_test.go
package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	key := CacheKey("chatcache", "what time is it?")

	parts := strings.Split(key, ":")
	assert.Len(t, parts, 3)
	assert.Equal(t, "chatcache", parts[0])
	assert.Len(t, parts[1], 64) // hex-encoded sha256
	assert.Equal(t, "pv"+ComponentVersions.PromptLogic+"_fv"+ComponentVersions.Formatter, parts[2])

	// Same message, same key; different message, different key.
	assert.Equal(t, key, CacheKey("chatcache", "what time is it?"))
	assert.NotEqual(t, key, CacheKey("chatcache", "what day is it?"))
}

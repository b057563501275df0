// In file: internal/version/version.go

// Package version centralizes the versioning of the gateway's logical
// components for cache-key construction. Including these strings in cache
// keys automatically invalidates stale cached replies whenever a piece of
// underlying logic changes: bump PromptLogic after editing a system prompt,
// Formatter after changing link rendering, and old keys simply stop matching.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the logical parts of the
// gateway whose behavior shapes a cached reply. Increment manually before
// deploying a change to that component.
var ComponentVersions = struct {
	// PromptLogic covers the system and summary prompt templates.
	PromptLogic string
	// Formatter covers the URL-to-markdown link rendering.
	Formatter string
}{
	PromptLogic: "v1.0",
	Formatter:   "v1.0",
}

// CacheKey creates a consistent, version-aware key for caching replies.
// It combines a prefix, a SHA-256 of the user's message, and the current
// component versions.
//
// Example output: "chatcache:a1b2c3d4...:pv1.0_fv1.0"
func CacheKey(prefix, message string) string {
	hasher := sha256.New()
	hasher.Write([]byte(message))
	messageHash := hex.EncodeToString(hasher.Sum(nil))

	versionString := fmt.Sprintf("pv%s_fv%s",
		ComponentVersions.PromptLogic,
		ComponentVersions.Formatter,
	)

	return fmt.Sprintf("%s:%s:%s", prefix, messageHash, versionString)
}

// In file: internal/catalog/catalog.go

// Package catalog owns the process-wide snapshot of tools discovered from
// the automation service. Reads are lock-free against an atomically replaced
// snapshot pointer, so a refresh can never tear a snapshot an in-flight
// request is using.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/api"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/mcp"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/tools"

	"github.com/redis/go-redis/v9"
)

// redisKey is where refreshed snapshots are mirrored so that multiple
// gateway replicas share one catalog fetch.
const redisKey = "toolcatalog:snapshot"

// Lister is the single capability the cache needs from the automation
// client: a fresh list of raw tool records.
type Lister interface {
	ListTools(ctx context.Context) ([]mcp.ToolRecord, error)
}

// Snapshot is one immutable view of the remote tool catalog. Tool names are
// unique within a snapshot; the model selects tools by name.
type Snapshot struct {
	Tools     []tools.Tool `json:"tools"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Cache fetches, normalizes, and caches catalog snapshots. A nil redis
// client disables the shared tier; the in-process atomic snapshot alone
// still satisfies every caller.
type Cache struct {
	lister Lister
	ttl    time.Duration
	rdb    *redis.Client

	mu       sync.Mutex // guards refresh; reads never take it
	snapshot atomic.Pointer[Snapshot]
}

// NewCache creates a catalog cache refreshing through lister at most once
// per ttl. rdb may be nil.
func NewCache(lister Lister, ttl time.Duration, rdb *redis.Client) *Cache {
	return &Cache{lister: lister, ttl: ttl, rdb: rdb}
}

// Get returns the current snapshot, refreshing first if none exists or the
// TTL has expired. When discovery fails and no fresh snapshot is available,
// the error wraps api.ErrCatalogUnavailable so the HTTP layer can map it.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	if snap := c.snapshot.Load(); snap != nil && c.fresh(snap) {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another request may have refreshed while we waited for the lock.
	if snap := c.snapshot.Load(); snap != nil && c.fresh(snap) {
		return snap, nil
	}
	return c.refreshLocked(ctx, true)
}

// Refresh forces a fetch from the automation service, bypassing both cache
// tiers. The background refresher uses it to renew the snapshot before the
// TTL lapses.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.refreshLocked(ctx, false)
	return err
}

// refreshLocked populates the snapshot, consulting the shared redis tier
// first when allowed. Callers must hold c.mu.
func (c *Cache) refreshLocked(ctx context.Context, useShared bool) (*Snapshot, error) {
	if useShared {
		if snap := c.loadShared(ctx); snap != nil {
			c.snapshot.Store(snap)
			return snap, nil
		}
	}

	records, err := c.lister.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrCatalogUnavailable, err)
	}

	snap := &Snapshot{
		Tools:     Normalize(records),
		FetchedAt: time.Now(),
	}
	c.snapshot.Store(snap)
	c.storeShared(ctx, snap)
	log.Printf("✅ Tool catalog refreshed: %d tools available.", len(snap.Tools))
	return snap, nil
}

func (c *Cache) fresh(snap *Snapshot) bool {
	return time.Since(snap.FetchedAt) < c.ttl
}

// loadShared returns a still-fresh snapshot from redis, or nil on any miss
// or failure. Shared-tier problems are never fatal; we just fetch remotely.
func (c *Cache) loadShared(ctx context.Context) *Snapshot {
	if c.rdb == nil {
		return nil
	}
	val, err := c.rdb.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Printf("Redis GET error for catalog snapshot: %v", err)
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		log.Printf("Error unmarshalling shared catalog snapshot: %v", err)
		return nil
	}
	if !c.fresh(&snap) {
		return nil
	}
	log.Println("Catalog cache HIT (shared)")
	return &snap
}

func (c *Cache) storeShared(ctx context.Context, snap *Snapshot) {
	if c.rdb == nil {
		return
	}
	snapBytes, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Error marshalling catalog snapshot for cache: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, redisKey, snapBytes, c.ttl).Err(); err != nil {
		log.Printf("Failed to set catalog snapshot in Redis: %v", err)
	}
}

// Normalize converts raw remote tool records into the model-facing function
// definitions. Records with unparseable schemas are skipped, and duplicate
// names are dropped (first record wins) to preserve the per-snapshot name
// uniqueness the model relies on for selection.
func Normalize(records []mcp.ToolRecord) []tools.Tool {
	normalized := make([]tools.Tool, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if record.Name == "" {
			log.Println("WARNING: Skipping tool record with empty name.")
			continue
		}
		if seen[record.Name] {
			log.Printf("WARNING: Dropping duplicate tool %q from catalog snapshot.", record.Name)
			continue
		}
		schema, err := tools.FromInputSchema(record.InputSchema)
		if err != nil {
			log.Printf("WARNING: Skipping tool %q: %v", record.Name, err)
			continue
		}
		seen[record.Name] = true
		normalized = append(normalized, tools.NewFunctionTool(record.Name, record.Description, schema))
	}
	return normalized
}

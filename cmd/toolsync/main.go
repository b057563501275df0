// In file: cmd/toolsync/main.go

// Package main implements the tool catalog sync utility.
// This is an offline command-line tool that connects to the configured
// automation server, fetches the current tool catalog, validates every
// tool's schema, and prints a report. With -prime it also writes the
// normalized snapshot into the shared Redis cache so a freshly started
// gateway can serve /tools before its first remote fetch.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/catalog"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/mcp"
)

const syncTimeout = 60 * time.Second

// Config holds the small set of settings the sync tool needs.
type Config struct {
	MCPServerURL string
	RedisAddr    string
}

func loadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found. Relying on environment variables.")
	}
	cfg := &Config{
		MCPServerURL: os.Getenv("MCP_SERVER_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
	}
	if cfg.MCPServerURL == "" {
		return nil, errors.New("MCP_SERVER_URL must be set")
	}
	return cfg, nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	prime := flag.Bool("prime", false, "write the normalized catalog into the shared Redis cache")
	asJSON := flag.Bool("json", false, "print the normalized catalog as JSON instead of a table")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("❌ Configuration Error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	client, err := mcp.NewClient(cfg.MCPServerURL)
	if err != nil {
		log.Fatalf("❌ Failed to create automation client: %v", err)
	}
	log.Printf("🚀 Fetching tool catalog from %s...", cfg.MCPServerURL)

	records, err := client.ListTools(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to fetch tool catalog: %v", err)
	}
	toolList := catalog.Normalize(records)
	log.Printf("✅ Fetched %d tools (%d after normalization).", len(records), len(toolList))

	if *asJSON {
		out, err := json.MarshalIndent(toolList, "", "  ")
		if err != nil {
			log.Fatalf("❌ Failed to encode catalog: %v", err)
		}
		fmt.Println(string(out))
	} else {
		for _, t := range toolList {
			desc := t.Function.Description
			if len(desc) > 80 {
				desc = desc[:77] + "..."
			}
			fmt.Printf("  %-50s %s\n", t.Function.Name, desc)
		}
	}

	if *prime {
		if cfg.RedisAddr == "" {
			log.Fatalf("❌ -prime requires REDIS_ADDR to be set")
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("❌ Could not connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		cache := catalog.NewCache(client, 5*time.Minute, rdb)
		if err := cache.Refresh(ctx); err != nil {
			log.Fatalf("❌ Failed to prime shared catalog cache: %v", err)
		}
		log.Println("✅ Shared catalog cache primed.")
	}
}

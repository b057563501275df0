// In file: cmd/gateway/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/actions"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/catalog"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/llm"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/mcp"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/orchestrator"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/respcache"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// main is the entry point for the application.
// Its primary role is the "Composition Root": it loads configuration,
// initializes all services, injects dependencies, and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Automation Chat Gateway | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Printf("✅ Configuration loaded (model=%s, catalog TTL=%s).", cfg.ModelID, cfg.CatalogTTL)

	// 2. INITIALIZE SERVICES
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Fatalf("❌ FATAL: Could not connect to Redis: %v", err)
		}
		log.Println("✅ Redis connected: shared catalog tier and response cache enabled.")
	} else {
		log.Println("⚠️ REDIS_ADDR not set: running with in-process catalog cache only.")
	}

	chatClient, err := initializeChatClient(cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}

	mcpClient, err := mcp.NewClient(cfg.MCPServerURL)
	if err != nil {
		log.Fatalf("❌ FATAL: Could not create automation client: %v", err)
	}

	catalogCache := catalog.NewCache(mcpClient, cfg.CatalogTTL, rdb)
	executor := actions.NewExecutor(mcpClient)
	orch := orchestrator.New(chatClient, executor, cfg.Generation, cfg.SystemPrompt, cfg.SummaryPrompt)
	gatewayHandler := NewGatewayHandler(catalogCache, orch, respcache.New(rdb), mcpClient)
	log.Println("✅ All services initialized.")

	// 3. START BACKGROUND PROCESSES
	go startCatalogRefresher(catalogCache, cfg.CatalogTTL)

	// 4. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	engine.POST("/chat", gatewayHandler.HandleChat)
	engine.GET("/tools", gatewayHandler.HandleListTools)
	engine.GET("/healthz", gatewayHandler.HandleHealthz)

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// initializeChatClient creates the model client matching the configured
// model id's provider prefix.
func initializeChatClient(cfg *AppConfig) (llm.ChatClient, error) {
	var (
		client llm.ChatClient
		err    error
	)
	switch {
	case strings.HasPrefix(cfg.ModelID, "gpt"), strings.HasPrefix(cfg.ModelID, "o1"), strings.HasPrefix(cfg.ModelID, "o3"):
		client, err = llm.NewOpenAIClient(cfg.APIKey, "")
	case strings.HasPrefix(cfg.ModelID, "claude"):
		client, err = llm.NewAnthropicClient(cfg.APIKey, "")
	case strings.HasPrefix(cfg.ModelID, "gemini"):
		client, err = llm.NewGeminiClient(cfg.APIKey, cfg.ModelID)
	default:
		return nil, fmt.Errorf("unknown model provider for %q", cfg.ModelID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.ModelID, err)
	}
	log.Printf("✅ Chat client initialized for model %s.", cfg.ModelID)
	return client, nil
}

// startCatalogRefresher renews the tool catalog snapshot in the background
// so most requests never pay the discovery round-trip. A failed refresh is
// not fatal: the next request falls back to an on-demand fetch.
func startCatalogRefresher(cache *catalog.Cache, ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	log.Println("🗂️ Catalog refresher started.")

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := cache.Refresh(ctx); err != nil {
			log.Printf("⚠️ Background catalog refresh failed: %v", err)
		}
	}

	refresh()
	for range ticker.C {
		refresh()
	}
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Gateway is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}

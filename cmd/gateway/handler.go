// In file: cmd/gateway/handler.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/api"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/catalog"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/format"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/orchestrator"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/respcache"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/tools"

	"github.com/gin-gonic/gin"
)

// Public error messages. Internal failure detail is logged but never leaked
// to the caller.
const (
	msgCatalogUnavailable = "The automation tools are currently unavailable. Please try again later."
	msgModelUnavailable   = "The language model is currently unavailable. Please try again later."
	msgInternalError      = "An unexpected error occurred while handling the request."
)

// catalogProvider yields the current tool catalog snapshot.
type catalogProvider interface {
	Get(ctx context.Context) (*catalog.Snapshot, error)
}

// converser runs one orchestrated chat turn.
type converser interface {
	Converse(ctx context.Context, message string, available []tools.Tool) (*orchestrator.Outcome, error)
}

// pinger checks the automation service for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// GatewayHandler wires the HTTP surface to the core components. Each request
// flows: catalog snapshot → orchestrated model turn(s) → formatting, with a
// response-cache fast path for repeated direct-reply prompts.
type GatewayHandler struct {
	catalog      catalogProvider
	orchestrator converser
	respCache    *respcache.Cache
	health       pinger
}

// NewGatewayHandler assembles the handler from its injected collaborators.
func NewGatewayHandler(cat catalogProvider, orch converser, respCache *respcache.Cache, health pinger) *GatewayHandler {
	return &GatewayHandler{
		catalog:      cat,
		orchestrator: orch,
		respCache:    respCache,
		health:       health,
	}
}

// bindChatRequest parses the inbound body, classifying a missing or
// unparseable message as api.ErrMalformedRequest.
func bindChatRequest(c *gin.Context, req *api.ChatRequest) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("%w: %v", api.ErrMalformedRequest, err)
	}
	return nil
}

// HandleChat serves POST /chat.
func (h *GatewayHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()

	var req api.ChatRequest
	if err := bindChatRequest(c, &req); err != nil {
		// Rejected immediately, zero network calls.
		log.Printf("⚠️ %v", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "No message provided"})
		return
	}

	log.Printf("--- New Chat Request (Prompt: '%.40s...') ---", req.Message)

	if cached, found := h.respCache.Check(c.Request.Context(), req.Message); found {
		log.Println("✅ Response cache HIT")
		c.JSON(http.StatusOK, api.ChatResponse{Response: cached})
		return
	}

	// Discovery comes first: if the catalog cannot be fetched the turn is
	// aborted before any model call, since the model cannot reason about
	// undiscoverable tools.
	snapshot, err := h.catalog.Get(c.Request.Context())
	if err != nil {
		log.Printf("❌ Catalog fetch failed: %v", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: msgCatalogUnavailable})
		return
	}

	outcome, err := h.orchestrator.Converse(c.Request.Context(), req.Message, snapshot.Tools)
	if err != nil {
		if errors.Is(err, api.ErrModelUnavailable) {
			log.Printf("❌ Model turn failed: %v", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: msgModelUnavailable})
			return
		}
		log.Printf("❌ Chat turn failed: %v", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: msgInternalError})
		return
	}

	text := format.Markdown(outcome.Text)

	// Only direct replies are cacheable; a turn that ran a remote action has
	// side effects that must not be replayed from cache.
	if outcome.ToolUsed == "" {
		h.respCache.Store(c.Request.Context(), req.Message, text)
	}

	log.Printf("✅ Chat turn complete (tool=%q, tokens=%d, latency=%dms)",
		outcome.ToolUsed, outcome.Usage.TotalTokens, time.Since(startTime).Milliseconds())
	c.JSON(http.StatusOK, api.ChatResponse{Response: text})
}

// HandleListTools serves GET /tools.
func (h *GatewayHandler) HandleListTools(c *gin.Context) {
	snapshot, err := h.catalog.Get(c.Request.Context())
	if err != nil {
		log.Printf("❌ Catalog fetch failed: %v", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: msgCatalogUnavailable})
		return
	}
	c.JSON(http.StatusOK, api.ToolsResponse{
		Tools: snapshot.Tools,
		Count: len(snapshot.Tools),
	})
}

// HandleHealthz serves GET /healthz: build info plus a bounded liveness
// check against the automation service.
func (h *GatewayHandler) HandleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	buildInfo := GetBuildInfo()
	if err := h.health.Ping(ctx); err != nil {
		log.Printf("🩺 Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"mcp":     "unreachable",
			"version": buildInfo.Version,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"mcp":     "reachable",
		"version": buildInfo.Version,
	})
}

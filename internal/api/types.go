// In file: internal/api/types.go

// Package api defines the public request/response shapes served by the
// gateway's HTTP surface, plus the error kinds shared across the core
// packages. Keeping these in one place makes the wire contract easy to
// audit and keeps the internal packages from importing each other's types.
package api

import (
	"errors"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/tools"
)

// ChatRequest is the inbound body for POST /chat.
// The message field is mandatory; gin's binding tag rejects empty bodies
// before any network call is made.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the successful outbound body for POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body returned with any non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToolsResponse is the body for GET /tools: the current catalog snapshot in
// the same function-definition shape the model receives, plus its length.
type ToolsResponse struct {
	Tools []tools.Tool `json:"tools"`
	Count int          `json:"count"`
}

// Usage holds token accounting returned by a model provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates usage across multiple model turns in one request.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// =================================================================================
// Error Kinds
// =================================================================================
// These sentinels classify request-scoped failures so the HTTP layer can map
// them to status codes with errors.Is, without inspecting error strings.
// Note there is deliberately no sentinel for a failed remote action: the
// executor reports failure as data (actions.Result.Success=false), never as
// an error, so the model can explain the failure to the user.

var (
	// ErrCatalogUnavailable means tool discovery against the automation
	// service failed and no usable cached snapshot exists. A chat turn
	// aborts on this before any model call is made.
	ErrCatalogUnavailable = errors.New("tool catalog unavailable")

	// ErrModelUnavailable means the chat-completion API was unreachable or
	// rejected the request (auth, rate limit). The whole turn aborts.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMalformedRequest means the inbound body was missing the required
	// message field. Rejected immediately, no network calls.
	ErrMalformedRequest = errors.New("malformed request")
)

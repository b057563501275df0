// In file: internal/llm/client.go

// Package llm contains the chat-completion capability interface the
// orchestrator speaks, plus one client per supported provider. Any model
// service offering equivalent function-calling semantics can sit behind
// ChatClient; the orchestrator never sees provider-specific wire formats.
package llm

import (
	"context"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/api"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/tools"
)

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single message in the (request-scoped) conversation the
// orchestrator builds: system context, the user's message, the model's
// tool-call directive, and the tool result fed back for summarizing.
type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolName is set alongside ToolCallID on RoleTool messages; some
	// providers (Gemini) key function results by name rather than call id.
	ToolName  string            `json:"tool_name,omitempty"`
	ToolCalls []*tools.ToolCall `json:"tool_calls,omitempty"`
}

// GenerationConfig holds the parameters controlling one completion request.
type GenerationConfig struct {
	// Model is the provider-specific model identifier (e.g., "gpt-4o").
	Model string
	// Temperature controls randomness. A pointer distinguishes an explicit
	// 0.0 from an unset value.
	Temperature *float32
	// MaxTokens caps the response length; 0 means provider default.
	MaxTokens int
}

// GenerationResult is the complete output of one model turn: either direct
// text, or one or more tool-call directives (of which this gateway honors
// only the first).
type GenerationResult struct {
	Content   string
	ToolCalls []*tools.ToolCall
	Usage     api.Usage
}

// ChatClient is the universal interface every provider client implements.
type ChatClient interface {
	// Generate performs a blocking chat-completion request carrying the
	// conversation so far and the tools the model may call. Transport and
	// auth failures come back as errors; callers map them to
	// api.ErrModelUnavailable.
	Generate(
		ctx context.Context,
		messages []Message,
		config *GenerationConfig,
		availableTools []tools.Tool,
	) (*GenerationResult, error)
}

// In file: internal/orchestrator/orchestrator.go

// Package orchestrator drives one chat turn: send the user's message plus
// the tool catalog to the model, run at most one remote action if the model
// asks for one, then ask the model to summarize the outcome. The flow is an
// explicit state machine rather than nested branching, which keeps the
// single-tool-call limitation and the failure routing auditable.
package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/actions"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/api"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/llm"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/tools"
)

// Default system prompts. The first frames the whole conversation; the
// second is appended before the summarizing turn so the model renders the
// tool result for a human instead of echoing JSON.
const (
	DefaultSystemPrompt = "You are a helpful assistant that can use various tools to help users. " +
		"When a user asks for something that matches available tools, use the appropriate function. " +
		"Always provide clear, friendly responses with proper formatting. " +
		"If you create or access any links, format them as clickable markdown links."

	DefaultSummaryPrompt = "Format your response in a user-friendly way. " +
		"If there are any URLs in the tool result, format them as clickable markdown links. " +
		"Provide a clear, concise summary of what was accomplished. " +
		"Don't show raw JSON or technical details unless specifically requested."
)

// turnState enumerates the conversation states of one chat turn.
type turnState int

const (
	// stateStart: first model round-trip with the catalog attached.
	stateStart turnState = iota
	// stateExecuting: the model issued a tool-call directive; run it.
	stateExecuting
	// stateSummarizing: second model round-trip carrying the tool result.
	stateSummarizing
	// stateDone: final text is ready.
	stateDone
)

// ActionRunner executes one remote automation and reports the outcome as
// data. A failed action is not an error here: it becomes model context.
type ActionRunner interface {
	Execute(ctx context.Context, name, arguments string) actions.Result
}

// Outcome is the result of one orchestrated chat turn.
type Outcome struct {
	// Text is the model's final, user-facing reply.
	Text string
	// ToolUsed names the remote action that ran, or "" for a direct reply.
	// Callers use it to decide cacheability: tool turns have side effects.
	ToolUsed string
	// Usage accumulates token accounting across both model round-trips.
	Usage api.Usage
}

// Orchestrator coordinates the model and the action executor for one turn.
type Orchestrator struct {
	client        llm.ChatClient
	runner        ActionRunner
	config        *llm.GenerationConfig
	systemPrompt  string
	summaryPrompt string
}

// New creates an orchestrator. Empty prompt overrides fall back to the
// defaults above.
func New(client llm.ChatClient, runner ActionRunner, config *llm.GenerationConfig, systemPrompt, summaryPrompt string) *Orchestrator {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if summaryPrompt == "" {
		summaryPrompt = DefaultSummaryPrompt
	}
	return &Orchestrator{
		client:        client,
		runner:        runner,
		config:        config,
		systemPrompt:  systemPrompt,
		summaryPrompt: summaryPrompt,
	}
}

// Converse runs one chat turn against the given catalog snapshot. It
// terminates within at most two model round-trips. A model failure on either
// round-trip aborts the turn with api.ErrModelUnavailable; an action failure
// does not; it is summarized for the user instead.
func (o *Orchestrator) Converse(ctx context.Context, message string, available []tools.Tool) (*Outcome, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: o.systemPrompt},
		{Role: llm.RoleUser, Content: message},
	}

	outcome := &Outcome{}
	var directive *tools.ToolCall

	state := stateStart
	for state != stateDone {
		switch state {
		case stateStart:
			result, err := o.client.Generate(ctx, messages, o.config, available)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", api.ErrModelUnavailable, err)
			}
			outcome.Usage.Add(result.Usage)

			if len(result.ToolCalls) == 0 {
				outcome.Text = result.Content
				state = stateDone
				break
			}

			// Exactly one tool call per request is supported. When the model
			// requests several, only the first is honored.
			if len(result.ToolCalls) > 1 {
				log.Printf("⚠️ Model requested %d tool calls; honoring only the first.", len(result.ToolCalls))
			}
			directive = result.ToolCalls[0]
			messages = append(messages, llm.Message{
				Role:      llm.RoleAssistant,
				Content:   result.Content,
				ToolCalls: []*tools.ToolCall{directive},
			})
			state = stateExecuting

		case stateExecuting:
			log.Printf("🛠️ Executing tool: %s (ID: %s) with args: %s",
				directive.Function.Name, directive.ID, directive.Function.Arguments)
			result := o.runner.Execute(ctx, directive.Function.Name, directive.Function.Arguments)
			outcome.ToolUsed = directive.Function.Name

			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: directive.ID,
				ToolName:   directive.Function.Name,
				Content:    result.ModelContent(),
			})
			messages = append(messages, llm.Message{
				Role:    llm.RoleSystem,
				Content: o.summaryPrompt,
			})
			state = stateSummarizing

		case stateSummarizing:
			result, err := o.client.Generate(ctx, messages, o.config, nil)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", api.ErrModelUnavailable, err)
			}
			outcome.Usage.Add(result.Usage)
			outcome.Text = result.Content
			state = stateDone
		}
	}

	return outcome, nil
}

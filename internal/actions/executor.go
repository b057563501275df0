// In file: internal/actions/executor.go

// Package actions runs remote automations on behalf of the model. The
// executor's contract is deliberately one-sided: it never lets a remote
// failure escape as a Go error. Failure comes back as Result data so the
// orchestrator can hand it to the model for a natural-language explanation
// instead of aborting the user's request.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/mcp"
)

// Invoker is the single capability the executor needs from the automation
// client: invoking one named tool.
type Invoker interface {
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (*mcp.CallResult, error)
}

// Result is the outcome of one remote action. Payload is always a JSON
// value: the remote response body on success, or {"error": "..."} detail on
// failure. Either way it is fed back to the model verbatim.
type Result struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
}

// ModelContent renders the result as the JSON string placed in the tool
// message of the summarizing model turn.
func (r Result) ModelContent() string {
	return string(r.Payload)
}

// Executor invokes remote automations through the automation client.
type Executor struct {
	invoker Invoker
}

// NewExecutor creates an executor backed by the given automation client.
func NewExecutor(invoker Invoker) *Executor {
	return &Executor{invoker: invoker}
}

// Execute runs the named tool with the argument JSON the model produced.
// Arguments pass through verbatim: no additions, omissions, or coercions.
// There are no retries: a remote action may have side effects (sending an
// email, creating a row), and retrying risks running it twice.
func (e *Executor) Execute(ctx context.Context, name, arguments string) Result {
	args := json.RawMessage(strings.TrimSpace(arguments))
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	callResult, err := e.invoker.CallTool(ctx, name, args)
	if err != nil {
		log.Printf("Error executing tool %s: %v", name, err)
		return failure(fmt.Sprintf("failed to execute %s: %v", name, err))
	}

	text := joinTextContent(callResult.Content)
	if callResult.IsError {
		log.Printf("Tool %s reported an execution error: %s", name, text)
		if text == "" {
			text = fmt.Sprintf("tool %s reported an error", name)
		}
		return failure(text)
	}

	return Result{Success: true, Payload: successPayload(text)}
}

// successPayload normalizes the remote text into a JSON value: already-JSON
// text passes through untouched, anything else is wrapped as {"result": ...}.
func successPayload(text string) json.RawMessage {
	if text == "" {
		return mustMarshal(map[string]string{"result": "No result returned"})
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text)
	}
	return mustMarshal(map[string]string{"result": text})
}

func failure(detail string) Result {
	return Result{Success: false, Payload: mustMarshal(map[string]string{"error": detail})}
}

func joinTextContent(blocks []mcp.ContentBlock) string {
	var parts []string
	for _, block := range blocks {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// mustMarshal marshals values built from plain string maps, which cannot fail.
func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

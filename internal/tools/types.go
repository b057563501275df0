// In file: internal/tools/types.go

// Package tools defines the data structures for function calling (tool use).
// These types provide a universal, provider-agnostic representation of the
// remote actions discovered from the automation service, which can be
// translated into the specific format required by different LLM APIs
// (like OpenAI, Anthropic, or Gemini).
package tools

import (
	"encoding/json"
	"fmt"
)

// ToolTypeFunction is the standard type for function-based tools.
const ToolTypeFunction = "function"

// Tool defines the schema for a function that can be described to an LLM.
// This is the information you send *to* the model to make it aware of a tool's existence.
type Tool struct {
	Type string `json:"type"`
	// Function holds the detailed definition of the function.
	Function Function `json:"function"`
}

// Function defines the name, description, and parameters of a callable tool.
// This structure is based on the common JSON Schema format used by major LLM providers.
type Function struct {
	// Name is the name the model uses to select the tool. It must be unique
	// within one catalog snapshot.
	Name string `json:"name"`
	// Description is what the LLM reads to decide when to use the tool.
	Description string `json:"description"`
	// Parameters defines the arguments the function accepts, as a JSON Schema.
	Parameters JSONSchema `json:"parameters"`
}

// JSONSchema is a structured, type-safe representation of the JSON Schema
// subset the automation service publishes for its tools. Using this struct
// instead of map[string]interface{} keeps schema translation between
// providers explicit and checkable.
type JSONSchema struct {
	// Type is the data type of a schema node (e.g., "object", "string", "number").
	// For the top-level parameters object this is always "object".
	Type string `json:"type"`
	// Description explains what a specific parameter is for.
	Description string `json:"description,omitempty"`
	// Properties describes the parameters of an object, keyed by parameter name.
	Properties map[string]*JSONSchema `json:"properties,omitempty"`
	// Required lists the parameter names that are mandatory for a call.
	Required []string `json:"required,omitempty"`
	// Items describes the element schema when Type is "array".
	Items *JSONSchema `json:"items,omitempty"`
	// Enum restricts a string parameter to a fixed set of values.
	Enum []string `json:"enum,omitempty"`
}

// ToolCall represents a request *from* the LLM to execute a specific tool
// with given arguments. The orchestrator receives this, runs the remote
// action, and sends the result back to the LLM.
type ToolCall struct {
	// ID matches the tool's execution result back to the LLM's request in
	// the second model turn.
	ID string `json:"id"`
	// Type is almost always "function".
	Type string `json:"type"`
	// Function contains the name and arguments the LLM wants to execute.
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction holds the name and arguments of a function call requested by the LLM.
type ToolCallFunction struct {
	Name string `json:"name"`
	// Arguments is a JSON string produced by the model. It is forwarded to
	// the automation service verbatim: no additions, omissions, or coercions.
	Arguments string `json:"arguments"`
}

// NewFunctionTool creates a Tool with the correct "function" type set.
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// FromInputSchema translates the raw `inputSchema` JSON object attached to a
// remote tool record into our JSONSchema shape. The remote service defines
// its own wire schema, so unknown fields are ignored rather than rejected;
// a missing or empty schema normalizes to an empty "object" (a tool that
// takes no arguments).
func FromInputSchema(raw json.RawMessage) (JSONSchema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return JSONSchema{Type: "object"}, nil
	}
	var schema JSONSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return JSONSchema{}, fmt.Errorf("malformed tool input schema: %w", err)
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema, nil
}

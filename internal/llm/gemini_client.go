// In file: internal/llm/gemini_client.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/tools"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient calls Google's Gemini models through the official SDK.
// It implements ChatClient.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

var _ ChatClient = (*GeminiClient)(nil)

// NewGeminiClient creates a configured client for the given model id.
func NewGeminiClient(apiKey, modelID string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelID: modelID}, nil
}

// Generate performs a standard, blocking request to the Gemini API.
func (c *GeminiClient) Generate(
	ctx context.Context,
	messages []Message,
	config *GenerationConfig,
	availableTools []tools.Tool,
) (*GenerationResult, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages to send")
	}
	model := c.newRequestModel(messages, config, availableTools)

	history, lastParts, err := toGeminiConversation(messages)
	if err != nil {
		return nil, err
	}
	chat := model.StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, lastParts...)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return parseGeminiResponse(resp)
}

// newRequestModel builds a model instance scoped to one Generate call. The
// SDK's GenerativeModel carries per-request settings (tools, system
// instruction, generation knobs) as mutable fields, so concurrent requests
// must not share one instance.
func (c *GeminiClient) newRequestModel(messages []Message, config *GenerationConfig, availableTools []tools.Tool) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelID)

	if config.Temperature != nil {
		model.SetTemperature(*config.Temperature)
	}
	if config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(config.MaxTokens))
	} else {
		model.SetMaxOutputTokens(4096)
	}

	// Gemini takes system context as a model-level instruction rather than
	// a conversation message.
	var systemParts []genai.Part
	for _, msg := range messages {
		if msg.Role == RoleSystem && msg.Content != "" {
			systemParts = append(systemParts, genai.Text(msg.Content))
		}
	}
	if len(systemParts) > 0 {
		model.SystemInstruction = &genai.Content{Parts: systemParts}
	}

	if len(availableTools) > 0 {
		model.Tools = toGeminiTools(availableTools)
	}
	return model
}

// toGeminiConversation converts our messages (minus system context, handled
// separately) into SDK history plus the parts of the final message to send.
func toGeminiConversation(messages []Message) ([]*genai.Content, []genai.Part, error) {
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			continue
		}
		parts, role, err := toGeminiParts(msg)
		if err != nil {
			return nil, nil, err
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	if len(contents) == 0 {
		return nil, nil, errors.New("no messages to send")
	}
	last := contents[len(contents)-1]
	return contents[:len(contents)-1], last.Parts, nil
}

// toGeminiParts maps one generic message to SDK parts and a Gemini role.
func toGeminiParts(msg Message) ([]genai.Part, string, error) {
	switch msg.Role {
	case RoleAssistant:
		var parts []genai.Part
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			args, err := jsonToMap(tc.Function.Arguments)
			if err != nil {
				return nil, "", fmt.Errorf("malformed tool call arguments for %s: %w", tc.Function.Name, err)
			}
			parts = append(parts, genai.FunctionCall{Name: tc.Function.Name, Args: args})
		}
		return parts, "model", nil
	case RoleTool:
		response, err := jsonToMap(msg.Content)
		if err != nil {
			// Tool output that is not a JSON object still has to reach the
			// model; wrap it the way the executor wraps plain text.
			response = map[string]interface{}{"result": msg.Content}
		}
		return []genai.Part{genai.FunctionResponse{Name: msg.ToolName, Response: response}}, "function", nil
	default: // RoleUser
		return []genai.Part{genai.Text(msg.Content)}, "user", nil
	}
}

func jsonToMap(raw string) (map[string]interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// toGeminiTools converts our internal tool definitions to the SDK's format.
func toGeminiTools(toolsToConvert []tools.Tool) []*genai.Tool {
	var geminiTools []*genai.Tool
	for _, t := range toolsToConvert {
		funcDecl := &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  convertSchema(t.Function.Parameters),
		}
		geminiTools = append(geminiTools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{funcDecl},
		})
	}
	return geminiTools
}

// convertSchema converts our JSONSchema to the Gemini SDK's schema type.
func convertSchema(s tools.JSONSchema) *genai.Schema {
	genaiSchema := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
	}
	switch s.Type {
	case "object":
		genaiSchema.Type = genai.TypeObject
	case "string":
		genaiSchema.Type = genai.TypeString
	case "number":
		genaiSchema.Type = genai.TypeNumber
	case "integer":
		genaiSchema.Type = genai.TypeInteger
	case "boolean":
		genaiSchema.Type = genai.TypeBoolean
	case "array":
		genaiSchema.Type = genai.TypeArray
	}
	if s.Items != nil {
		genaiSchema.Items = convertSchema(*s.Items)
	}
	if s.Properties != nil {
		genaiSchema.Properties = make(map[string]*genai.Schema)
		for k, v := range s.Properties {
			genaiSchema.Properties[k] = convertSchema(*v)
		}
	}
	return genaiSchema
}

// parseGeminiResponse converts a Gemini API response into our internal result.
func parseGeminiResponse(resp *genai.GenerateContentResponse) (*GenerationResult, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no content returned from Gemini")
	}

	candidate := resp.Candidates[0]
	var contentBuilder strings.Builder
	var toolCalls []*tools.ToolCall

	for _, part := range candidate.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			contentBuilder.WriteString(string(v))
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				log.Printf("Warning: could not marshal tool call args: %v", err)
				continue
			}
			toolCalls = append(toolCalls, &tools.ToolCall{
				ID:   fmt.Sprintf("gemini-toolcall-%s", v.Name),
				Type: tools.ToolTypeFunction,
				Function: tools.ToolCallFunction{
					Name:      v.Name,
					Arguments: string(args),
				},
			})
		}
	}

	result := &GenerationResult{
		Content:   strings.TrimSpace(contentBuilder.String()),
		ToolCalls: toolCalls,
	}

	if resp.UsageMetadata != nil {
		result.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return result, nil
}

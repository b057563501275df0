// In file: internal/llm/openai_client_test.go
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/tools"
)

func float32Ptr(v float32) *float32 { return &v }

func openAITestConfig() *GenerationConfig {
	return &GenerationConfig{Model: "gpt-4o", Temperature: float32Ptr(0.2), MaxTokens: 1024}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "")
	require.Error(t, err)
}

func TestOpenAIGenerateDirectReply(t *testing.T) {
	var gotReq openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Hello there"}}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", server.URL)
	require.NoError(t, err)

	messages := []Message{
		{Role: RoleSystem, Content: "be helpful"},
		{Role: RoleUser, Content: "hi"},
	}
	result, err := client.Generate(context.Background(), messages, openAITestConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Hello there", result.Content)
	assert.Empty(t, result.ToolCalls)
	assert.Equal(t, 12, result.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o", gotReq.Model)
	assert.Equal(t, 1024, gotReq.MaxTokens)
	require.NotNil(t, gotReq.Temperature)
	assert.InDelta(t, 0.2, float64(*gotReq.Temperature), 1e-6)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	// No tools attached, so tool_choice stays unset.
	assert.Empty(t, gotReq.Tools)
	assert.Empty(t, gotReq.ToolChoice)
}

func TestOpenAIGenerateWithTools(t *testing.T) {
	var gotReq openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_abc",
					"type": "function",
					"function": {"name": "gmail_send_email", "arguments": "{\"to\":\"a@b.com\"}"}
				}]
			}}],
			"usage": {"prompt_tokens": 50, "completion_tokens": 10, "total_tokens": 60}
		}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", server.URL)
	require.NoError(t, err)

	catalog := []tools.Tool{
		tools.NewFunctionTool("gmail_send_email", "Sends an email", tools.JSONSchema{Type: "object"}),
	}
	result, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "email a@b.com"}}, openAITestConfig(), catalog)
	require.NoError(t, err)

	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_abc", result.ToolCalls[0].ID)
	assert.Equal(t, "gmail_send_email", result.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"to":"a@b.com"}`, result.ToolCalls[0].Function.Arguments)

	require.Len(t, gotReq.Tools, 1)
	assert.Equal(t, "function", gotReq.Tools[0].Type)
	assert.Equal(t, "gmail_send_email", gotReq.Tools[0].Function.Name)
	assert.Equal(t, "auto", gotReq.ToolChoice)
}

func TestOpenAIGenerateSendsToolResultMessage(t *testing.T) {
	var gotReq openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "All done"}}]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", server.URL)
	require.NoError(t, err)

	call := &tools.ToolCall{
		ID:   "call_abc",
		Type: tools.ToolTypeFunction,
		Function: tools.ToolCallFunction{Name: "gmail_send_email", Arguments: `{"to":"a@b.com"}`},
	}
	messages := []Message{
		{Role: RoleUser, Content: "email a@b.com"},
		{Role: RoleAssistant, ToolCalls: []*tools.ToolCall{call}},
		{Role: RoleTool, ToolCallID: "call_abc", ToolName: "gmail_send_email", Content: `{"status":"sent"}`},
	}
	_, err = client.Generate(context.Background(), messages, openAITestConfig(), nil)
	require.NoError(t, err)

	require.Len(t, gotReq.Messages, 3)
	assistant := gotReq.Messages[1]
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_abc", assistant.ToolCalls[0].ID)

	toolMsg := gotReq.Messages[2]
	assert.Equal(t, "tool", toolMsg.Role)
	assert.Equal(t, "call_abc", toolMsg.ToolCallID)
	assert.JSONEq(t, `{"status":"sent"}`, toolMsg.Content)
}

func TestOpenAIGenerateDoesNotRetryClientErrors(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"error": {"message": "invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewOpenAIClient("bad-key", server.URL)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, openAITestConfig(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, requests)
}

func TestOpenAIGenerateStopsAfterFinalAttempt(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the real backoff delays")
	}

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, `{"error": {"message": "upstream overloaded"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", server.URL)
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, openAITestConfig(), nil)
	require.Error(t, err)

	assert.Equal(t, maxRetries, requests)
	// Backoff runs between attempts only (2s + 4s), never after the last one.
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestOpenAIGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", server.URL)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, openAITestConfig(), nil)
	require.Error(t, err)
}

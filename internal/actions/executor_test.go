// In file: internal/actions/executor_test.go
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/mcp"
)

// fakeInvoker records the call it received and returns a scripted result.
type fakeInvoker struct {
	gotName string
	gotArgs json.RawMessage
	result  *mcp.CallResult
	err     error
	calls   int
}

func (f *fakeInvoker) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*mcp.CallResult, error) {
	f.calls++
	f.gotName = name
	f.gotArgs = arguments
	return f.result, f.err
}

func textResult(text string, isError bool) *mcp.CallResult {
	return &mcp.CallResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: text}},
		IsError: isError,
	}
}

func TestExecutePassesArgumentsVerbatim(t *testing.T) {
	invoker := &fakeInvoker{result: textResult("done", false)}
	executor := NewExecutor(invoker)

	args := `{"to":"a@b.com","subject":"hi","count":3}`
	result := executor.Execute(context.Background(), "gmail_send_email", args)

	assert.True(t, result.Success)
	assert.Equal(t, "gmail_send_email", invoker.gotName)
	// Byte-for-byte: no additions, omissions, or coercions.
	assert.Equal(t, args, string(invoker.gotArgs))
}

func TestExecuteEmptyArgumentsBecomeEmptyObject(t *testing.T) {
	invoker := &fakeInvoker{result: textResult("done", false)}
	executor := NewExecutor(invoker)

	executor.Execute(context.Background(), "fetch_time", "")
	assert.Equal(t, `{}`, string(invoker.gotArgs))

	executor.Execute(context.Background(), "fetch_time", "   ")
	assert.Equal(t, `{}`, string(invoker.gotArgs))
}

func TestExecuteTransportFailureIsData(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("connection refused")}
	executor := NewExecutor(invoker)

	result := executor.Execute(context.Background(), "gmail_send_email", `{}`)

	assert.False(t, result.Success)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(result.Payload, &payload))
	assert.Contains(t, payload["error"], "gmail_send_email")
	assert.Contains(t, payload["error"], "connection refused")
	assert.Equal(t, 1, invoker.calls)
}

func TestExecuteRemoteErrorFlagIsData(t *testing.T) {
	invoker := &fakeInvoker{result: textResult("missing required field: to", true)}
	executor := NewExecutor(invoker)

	result := executor.Execute(context.Background(), "gmail_send_email", `{}`)

	assert.False(t, result.Success)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(result.Payload, &payload))
	assert.Equal(t, "missing required field: to", payload["error"])
}

func TestExecuteSuccessPayloadNormalization(t *testing.T) {
	t.Run("json text passes through untouched", func(t *testing.T) {
		invoker := &fakeInvoker{result: textResult(`{"row_id": 42}`, false)}
		result := NewExecutor(invoker).Execute(context.Background(), "sheets_add_row", `{}`)

		assert.True(t, result.Success)
		assert.JSONEq(t, `{"row_id": 42}`, string(result.Payload))
	})

	t.Run("plain text is wrapped as result", func(t *testing.T) {
		invoker := &fakeInvoker{result: textResult("Row appended to Sheet1", false)}
		result := NewExecutor(invoker).Execute(context.Background(), "sheets_add_row", `{}`)

		assert.JSONEq(t, `{"result": "Row appended to Sheet1"}`, string(result.Payload))
	})

	t.Run("empty content gets a placeholder", func(t *testing.T) {
		invoker := &fakeInvoker{result: &mcp.CallResult{}}
		result := NewExecutor(invoker).Execute(context.Background(), "sheets_add_row", `{}`)

		assert.True(t, result.Success)
		assert.JSONEq(t, `{"result": "No result returned"}`, string(result.Payload))
	})

	t.Run("multiple text blocks are joined", func(t *testing.T) {
		invoker := &fakeInvoker{result: &mcp.CallResult{
			Content: []mcp.ContentBlock{
				{Type: "text", Text: "line one"},
				{Type: "image", Text: "ignored"},
				{Type: "text", Text: "line two"},
			},
		}}
		result := NewExecutor(invoker).Execute(context.Background(), "sheets_add_row", `{}`)

		assert.JSONEq(t, `{"result": "line one\nline two"}`, string(result.Payload))
	})
}

func TestModelContent(t *testing.T) {
	result := Result{Success: true, Payload: json.RawMessage(`{"ok":true}`)}
	assert.Equal(t, `{"ok":true}`, result.ModelContent())
}

// In file: internal/mcp/client.go

// Package mcp implements a minimal JSON-RPC-over-HTTP client for the remote
// automation-execution service. The gateway needs exactly two capabilities
// from it: listing the available tools and invoking one by name. The wire
// schema beyond those two calls belongs to the connected service; everything
// it returns is treated as an opaque payload.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	protocolVersion = "2025-03-26"
	clientName      = "chatbot-zapier-automation"

	sessionHeader = "Mcp-Session-Id"

	requestTimeout    = 60 * time.Second
	maxListRetries    = 3
	initialRetryDelay = 2 * time.Second
)

// ToolRecord is one raw tool entry as returned by the tools/list call.
// InputSchema is kept as raw JSON; normalization into the model-facing
// schema shape happens in the tools package.
type ToolRecord struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ContentBlock is one entry of a tool call result's content array.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the remote service's answer to a tools/call invocation.
type CallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError"`
}

// --- JSON-RPC envelopes ---

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// Client talks to one automation-execution server over streamable HTTP.
// It is safe for concurrent use; the lazy initialize handshake happens at
// most once.
type Client struct {
	serverURL  string
	httpClient *http.Client
	nextID     atomic.Int64

	mu          sync.Mutex
	sessionID   string
	initialized bool
}

// NewClient creates a client for the automation service at serverURL.
func NewClient(serverURL string) (*Client, error) {
	if serverURL == "" {
		return nil, errors.New("automation server URL cannot be empty")
	}
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

// ListTools fetches a fresh snapshot of the tools the remote service exposes.
// Transient server-side failures are retried with exponential backoff, since
// listing has no side effects.
func (c *Client) ListTools(ctx context.Context) ([]ToolRecord, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}

	result, err := c.call(ctx, "tools/list", nil, maxListRetries)
	if err != nil {
		return nil, fmt.Errorf("tools/list failed: %w", err)
	}

	var listed struct {
		Tools []ToolRecord `json:"tools"`
	}
	if err := json.Unmarshal(result, &listed); err != nil {
		return nil, fmt.Errorf("malformed tools/list result: %w", err)
	}
	return listed.Tools, nil
}

// CallTool invokes one remote action by name. The arguments object is passed
// through verbatim. There is deliberately NO retry here: a remote action may
// have side effects (sending an email, creating a row), and retrying
// automatically risks running it twice.
func (c *Client) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*CallResult, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}

	params := struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}{Name: name, Arguments: arguments}

	result, err := c.call(ctx, "tools/call", params, 1)
	if err != nil {
		return nil, fmt.Errorf("tools/call %q failed: %w", name, err)
	}

	var callResult CallResult
	if err := json.Unmarshal(result, &callResult); err != nil {
		return nil, fmt.Errorf("malformed tools/call result: %w", err)
	}
	return &callResult, nil
}

// Ping performs a lightweight liveness check against the remote service.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.ensureInitialized(ctx); err != nil {
		return err
	}
	_, err := c.call(ctx, "ping", nil, 1)
	return err
}

// ensureInitialized performs the one-time initialize handshake and captures
// the session identifier the server may hand back.
func (c *Client) ensureInitialized(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}

	params := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]string{
			"name":    clientName,
			"version": "1.0",
		},
	}
	req := rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: "initialize", Params: params}
	body, session, err := c.post(ctx, req, "")
	if err != nil {
		return fmt.Errorf("initialize handshake failed: %w", err)
	}
	if _, err := decodeRPC(body); err != nil {
		return fmt.Errorf("initialize handshake failed: %w", err)
	}
	c.sessionID = session

	// The server expects an initialized notification before serving calls.
	// Notifications carry no id and get no JSON-RPC reply.
	note := rpcRequest{JSONRPC: "2.0", Method: "notifications/initialized"}
	if _, _, err := c.post(ctx, note, c.sessionID); err != nil {
		return fmt.Errorf("initialized notification failed: %w", err)
	}

	c.initialized = true
	return nil
}

// call performs one JSON-RPC method call, retrying transient failures up to
// attempts times with exponential backoff. Client-side (4xx) errors and
// JSON-RPC errors are never retried.
func (c *Client) call(ctx context.Context, method string, params interface{}, attempts int) (json.RawMessage, error) {
	c.mu.Lock()
	session := c.sessionID
	c.mu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params}

	var lastErr error
	delay := initialRetryDelay
	for i := 0; i < attempts; i++ {
		body, _, err := c.post(ctx, req, session)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", i+1, attempts, err)
			var httpErr *statusError
			if errors.As(err, &httpErr) && httpErr.code >= 400 && httpErr.code < 500 {
				return nil, lastErr // Do not retry on client errors.
			}
			if i+1 < attempts {
				time.Sleep(delay)
				delay *= 2
			}
			continue
		}
		return decodeRPC(body)
	}
	return nil, lastErr
}

// statusError carries a non-2xx HTTP status so callers can distinguish
// retryable server failures from client errors.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("automation server returned status %d: %s", e.code, e.body)
}

// post sends one JSON-RPC payload and returns the raw response body and any
// session id the server assigned. Streamable HTTP servers may answer either
// with plain JSON or with a single-event SSE stream; both are handled.
func (c *Client) post(ctx context.Context, payload rpcRequest, session string) ([]byte, string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal rpc payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	newSession := resp.Header.Get(sessionHeader)
	if newSession == "" {
		newSession = session
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newSession, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newSession, &statusError{code: resp.StatusCode, body: string(body)}
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		data, err := firstEventData(body)
		if err != nil {
			return nil, newSession, err
		}
		return data, newSession, nil
	}
	return body, newSession, nil
}

// firstEventData extracts the first data payload from an SSE body. Request/
// response calls over streamable HTTP carry exactly one JSON-RPC message, so
// the first data line is the whole answer.
func firstEventData(body []byte) ([]byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data != "" {
			return []byte(data), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading event stream: %w", err)
	}
	return nil, errors.New("event stream contained no data")
}

// decodeRPC unpacks a JSON-RPC response envelope, surfacing server-reported
// errors as Go errors.
func decodeRPC(body []byte) (json.RawMessage, error) {
	// Notification acknowledgements have empty bodies.
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rpc response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return resp.Result, nil
}

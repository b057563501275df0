// In file: internal/catalog/catalog_test.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/api"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/mcp"
)

// fakeLister returns a scripted tool list and counts fetches.
type fakeLister struct {
	mu      sync.Mutex
	records []mcp.ToolRecord
	err     error
	fetches int
}

func (f *fakeLister) ListTools(ctx context.Context) ([]mcp.ToolRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeLister) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func record(name string) mcp.ToolRecord {
	return mcp.ToolRecord{
		Name:        name,
		Description: "does " + name,
		InputSchema: json.RawMessage(`{"type":"object"}`),
	}
}

func TestCacheGetFetchesOnce(t *testing.T) {
	lister := &fakeLister{records: []mcp.ToolRecord{record("gmail_send_email"), record("sheets_add_row")}}
	cache := NewCache(lister, time.Minute, nil)

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Tools, 2)

	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	// The snapshot is served from memory within the TTL.
	assert.Equal(t, 1, lister.fetchCount())
	assert.Same(t, first, second)
}

func TestCacheGetRefetchesAfterTTL(t *testing.T) {
	lister := &fakeLister{records: []mcp.ToolRecord{record("gmail_send_email")}}
	cache := NewCache(lister, time.Nanosecond, nil)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lister.fetchCount())
}

func TestCacheGetDiscoveryFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}
	cache := NewCache(lister, time.Minute, nil)

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrCatalogUnavailable))
}

func TestCacheRefreshBypassesTTL(t *testing.T) {
	lister := &fakeLister{records: []mcp.ToolRecord{record("gmail_send_email")}}
	cache := NewCache(lister, time.Hour, nil)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, cache.Refresh(context.Background()))

	assert.Equal(t, 2, lister.fetchCount())
}

func TestNormalize(t *testing.T) {
	t.Run("converts records to function definitions", func(t *testing.T) {
		toolList := Normalize([]mcp.ToolRecord{record("gmail_send_email")})
		require.Len(t, toolList, 1)
		assert.Equal(t, "function", toolList[0].Type)
		assert.Equal(t, "gmail_send_email", toolList[0].Function.Name)
		assert.Equal(t, "does gmail_send_email", toolList[0].Function.Description)
		assert.Equal(t, "object", toolList[0].Function.Parameters.Type)
	})

	t.Run("drops duplicate names keeping the first", func(t *testing.T) {
		first := record("sheets_add_row")
		second := record("sheets_add_row")
		second.Description = "a different duplicate"

		toolList := Normalize([]mcp.ToolRecord{first, second})
		require.Len(t, toolList, 1)
		assert.Equal(t, "does sheets_add_row", toolList[0].Function.Description)
	})

	t.Run("skips records with empty names", func(t *testing.T) {
		toolList := Normalize([]mcp.ToolRecord{record(""), record("gmail_send_email")})
		require.Len(t, toolList, 1)
		assert.Equal(t, "gmail_send_email", toolList[0].Function.Name)
	})

	t.Run("skips records with malformed schemas", func(t *testing.T) {
		bad := record("broken_tool")
		bad.InputSchema = json.RawMessage(`{"type":`)

		toolList := Normalize([]mcp.ToolRecord{bad, record("gmail_send_email")})
		require.Len(t, toolList, 1)
		assert.Equal(t, "gmail_send_email", toolList[0].Function.Name)
	})

	t.Run("missing schema becomes empty object", func(t *testing.T) {
		noArgs := mcp.ToolRecord{Name: "fetch_time", Description: "returns the current time"}
		toolList := Normalize([]mcp.ToolRecord{noArgs})
		require.Len(t, toolList, 1)
		assert.Equal(t, "object", toolList[0].Function.Parameters.Type)
	})
}

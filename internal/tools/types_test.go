// In file: internal/tools/types_test.go
package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromInputSchema(t *testing.T) {
	t.Run("full schema round-trips", func(t *testing.T) {
		raw := json.RawMessage(`{
			"type": "object",
			"properties": {
				"spreadsheet": {"type": "string", "description": "Target sheet name"},
				"values": {"type": "array", "items": {"type": "string"}},
				"mode": {"type": "string", "enum": ["append", "overwrite"]}
			},
			"required": ["spreadsheet"]
		}`)

		schema, err := FromInputSchema(raw)
		require.NoError(t, err)

		assert.Equal(t, "object", schema.Type)
		assert.Equal(t, []string{"spreadsheet"}, schema.Required)
		require.Contains(t, schema.Properties, "spreadsheet")
		assert.Equal(t, "string", schema.Properties["spreadsheet"].Type)
		assert.Equal(t, "Target sheet name", schema.Properties["spreadsheet"].Description)
		require.Contains(t, schema.Properties, "values")
		require.NotNil(t, schema.Properties["values"].Items)
		assert.Equal(t, "string", schema.Properties["values"].Items.Type)
		assert.Equal(t, []string{"append", "overwrite"}, schema.Properties["mode"].Enum)
	})

	t.Run("empty schema defaults to object", func(t *testing.T) {
		schema, err := FromInputSchema(nil)
		require.NoError(t, err)
		assert.Equal(t, "object", schema.Type)
		assert.Empty(t, schema.Properties)
	})

	t.Run("null schema defaults to object", func(t *testing.T) {
		schema, err := FromInputSchema(json.RawMessage(`null`))
		require.NoError(t, err)
		assert.Equal(t, "object", schema.Type)
	})

	t.Run("missing type defaults to object", func(t *testing.T) {
		schema, err := FromInputSchema(json.RawMessage(`{"properties": {}}`))
		require.NoError(t, err)
		assert.Equal(t, "object", schema.Type)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		schema, err := FromInputSchema(json.RawMessage(`{"type": "object", "$schema": "http://json-schema.org/draft-07/schema#"}`))
		require.NoError(t, err)
		assert.Equal(t, "object", schema.Type)
	})

	t.Run("malformed json is rejected", func(t *testing.T) {
		_, err := FromInputSchema(json.RawMessage(`{"type": `))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed tool input schema")
	})
}

func TestNewFunctionTool(t *testing.T) {
	schema := JSONSchema{Type: "object"}
	tool := NewFunctionTool("gmail_send_email", "Sends an email via Gmail", schema)

	assert.Equal(t, ToolTypeFunction, tool.Type)
	assert.Equal(t, "gmail_send_email", tool.Function.Name)
	assert.Equal(t, "Sends an email via Gmail", tool.Function.Description)
	assert.Equal(t, schema, tool.Function.Parameters)
}

package mcp

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
)

func makeInputSchema(
	schema mcp.ToolInputSchema,
) (*jsonschema.Schema, error) {
	var inputSchema jsonschema.Schema

	schemaJson, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(schemaJson, &inputSchema); err != nil {
		return nil, err
	}

	return &inputSchema, nil
}

// toOutput decodes the joined text content as JSON when possible so the
// model sees structured results.
func toOutput(contents []mcp.Content) any {
	text := ""
	for _, c := range contents {
		if t, ok := c.(mcp.TextContent); ok {
			text += t.Text
		}
	}
	text = strings.TrimSpace(text)

	var out any
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out
	}
	return text
}

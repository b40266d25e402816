package mcpserver_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/habiliai/agenteat/tool"
	"github.com/habiliai/agenteat/tool/mcpserver"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *mcpclient.Client {
	t.Helper()
	ctx := context.Background()

	s, err := mcpserver.New(tool.NewManager(nil, tool.NewOrders(), slog.Default()), "test", slog.Default())
	require.NoError(t, err)

	c, err := mcpclient.NewInProcessClient(s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Start(ctx))

	initRequest := mcpgo.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcpgo.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}
	_, err = c.Initialize(ctx, initRequest)
	require.NoError(t, err)

	return c
}

func callTool(t *testing.T, c *mcpclient.Client, name string, args map[string]any) *mcpgo.CallToolResult {
	t.Helper()

	req := mcpgo.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func textOf(t *testing.T, res *mcpgo.CallToolResult) string {
	t.Helper()
	text, ok := res.Content[0].(mcpgo.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestListTools(t *testing.T) {
	c := newClient(t)

	res, err := c.ListTools(context.Background(), mcpgo.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tl := range res.Tools {
		names = append(names, tl.Name)
	}
	assert.Len(t, names, 9)
	assert.Contains(t, names, "GenerateOrderSummary")
}

func TestCallTool(t *testing.T) {
	c := newClient(t)

	res := callTool(t, c, "CalculateTotal", map[string]any{
		"cart_items": []map[string]any{{"name": "Kung Pao Chicken", "price": 20}},
	})
	assert.False(t, res.IsError)

	var totals map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &totals))
	assert.Equal(t, 18.69, totals["total"])
}

func TestCallToolErrorRecord(t *testing.T) {
	c := newClient(t)

	res := callTool(t, c, "SearchRestaurants", map[string]any{"postal_code": "N1"})
	assert.True(t, res.IsError)
	assert.JSONEq(t, `[{"error":"Missing postal code or cuisine type"}]`, textOf(t, res))
}

package mcp

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/errors"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefineTool exposes a remote MCP tool as a genkit tool. Text results that
// hold JSON are decoded so the model sees structured output.
func DefineTool(g *genkit.Genkit, client MCPClient, mcpTool mcp.Tool, cb func(ctx *ai.ToolContext, input any, output any) error) (ai.Tool, error) {
	schema, err := makeInputSchema(mcpTool.InputSchema)
	if err != nil {
		return nil, err
	}

	tool := genkit.DefineToolWithInputSchema(
		g,
		mcpTool.Name,
		mcpTool.Description,
		schema,
		func(ctx *ai.ToolContext, in any) (any, error) {
			req := mcp.CallToolRequest{}
			req.Params.Name = mcpTool.Name
			req.Params.Arguments = in

			res, err := client.CallTool(ctx, req)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to call mcp tool %s", mcpTool.Name)
			}

			out := toOutput(res.Content)
			if cb != nil {
				if err := cb(ctx, in, out); err != nil {
					return nil, err
				}
			}

			return out, nil
		},
	)

	return tool, nil
}

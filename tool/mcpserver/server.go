package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/tool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "agent-eat"

// New exposes every food ordering tool as an MCP tool.
func New(manager *tool.Manager, version string, logger *slog.Logger) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, spec := range manager.Specs() {
		schema, err := json.Marshal(spec.InputSchema)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal input schema of %s", spec.Name)
		}

		s.AddTool(
			mcp.NewToolWithRawSchema(spec.Name, spec.Description, schema),
			newHandler(manager, spec.Name, logger),
		)
	}

	return s, nil
}

func newHandler(manager *tool.Manager, name string, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := manager.Call(ctx, name, args)
		if err != nil {
			logger.WarnContext(ctx, "mcp tool call failed", slog.String("tool", name), mylog.Err(err))
			return mcp.NewToolResultError(errors.DetailOf(err)), nil
		}

		result, err := json.Marshal(out)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal result of %s", name)
		}

		res := mcp.NewToolResultText(string(result))
		res.IsError = tool.IsErrorResult(result)
		return res, nil
	}
}

func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

package tool

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/errors"
	internalmcp "github.com/habiliai/agenteat/internal/genkit/plugins/mcp"
	"github.com/habiliai/agenteat/internal/mylog"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	mcpClientName    = "agent-eat"
	mcpClientVersion = "0.1.0"
)

// RegisterMCPServer starts an external MCP server over stdio and defines
// its tools. A server already registered under the same name is reused.
func (m *Manager) RegisterMCPServer(ctx context.Context, conf internalmcp.ServerConfig) error {
	m.mtx.Lock()
	_, ok := m.mcpClients[conf.Name]
	m.mtx.Unlock()
	if ok {
		return nil
	}

	c, err := internalmcp.Connect(ctx, conf, mcpClientName, mcpClientVersion)
	if err != nil {
		return err
	}

	if stderr, ok := mcpclient.GetStderr(c); ok {
		go m.copyStderr(conf.Name, stderr)
	}

	return m.RegisterMCPClient(ctx, conf.Name, c)
}

func (m *Manager) copyStderr(serverName string, stderr io.Reader) {
	rd := bufio.NewReader(stderr)
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			if err != io.EOF && !strings.Contains(err.Error(), "already closed") {
				m.logger.Error("failed to copy stderr", mylog.Err(err), slog.String("serverName", serverName))
			}
			return
		}
		m.logger.Warn("[MCP] "+strings.TrimSpace(line), slog.String("serverName", serverName))
	}
}

// RegisterMCPClient defines the tools of an initialized MCP client on the
// model runtime. Calls made through them are recorded like local tools.
func (m *Manager) RegisterMCPClient(ctx context.Context, serverName string, c internalmcp.MCPClient) error {
	if m.genkit == nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "tools are not bound to a model runtime")
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	listToolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return errors.Wrapf(err, "failed to list tools of %s", serverName)
	}
	for _, t := range listToolsResult.Tools {
		if genkit.LookupTool(m.genkit, t.Name) != nil {
			m.logger.InfoContext(ctx, "tool already registered", slog.String("tool", t.Name))
			continue
		}
		name := t.Name
		if _, err := internalmcp.DefineTool(m.genkit, c, t, func(ctx *ai.ToolContext, in any, out any) error {
			appendCallData(ctx, CallData{
				Name:      name,
				Arguments: in,
				Result:    out,
			})
			return nil
		}); err != nil {
			return errors.Wrapf(err, "failed to define tool %s", t.Name)
		}
	}

	m.mcpClients[serverName] = c
	return nil
}

func (m *Manager) GetMCPTools(ctx context.Context, serverName string) ([]ai.Tool, error) {
	m.mtx.Lock()
	c, ok := m.mcpClients[serverName]
	m.mtx.Unlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "mcp server %s", serverName)
	}

	listToolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tools of %s", serverName)
	}

	var tools []ai.Tool
	for _, t := range listToolsResult.Tools {
		if tool := genkit.LookupTool(m.genkit, t.Name); tool != nil {
			tools = append(tools, tool)
		}
	}
	return tools, nil
}

func (m *Manager) Close() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	var errs []error
	for name, c := range m.mcpClients {
		if err := c.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "failed to close mcp client %s", name))
		}
	}
	clear(m.mcpClients)
	return errors.Join(errs...)
}

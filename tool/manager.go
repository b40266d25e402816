package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/errors"
	internalmcp "github.com/habiliai/agenteat/internal/genkit/plugins/mcp"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/jcooky/go-din"
	"github.com/samber/lo"
)

type Manager struct {
	logger     *mylog.Logger
	genkit     *genkit.Genkit
	specs      []Spec
	tools      map[string]ai.Tool
	mtx        sync.Mutex
	mcpClients map[string]internalmcp.MCPClient
}

// NewManager builds the tool catalog. When g is non-nil every tool is also
// defined on it; a Genkit instance must only be handed to one Manager.
func NewManager(g *genkit.Genkit, orders *Orders, logger *slog.Logger) *Manager {
	m := &Manager{
		logger: logger,
		genkit: g,
		specs:  Catalog(orders),
		tools:  make(map[string]ai.Tool),

		mcpClients: make(map[string]internalmcp.MCPClient),
	}

	if g != nil {
		for _, spec := range m.specs {
			m.tools[spec.Name] = spec.register(g)
		}
	}

	return m
}

func (m *Manager) Specs() []Spec {
	return m.specs
}

func (m *Manager) GetSpec(name string) (Spec, bool) {
	return lo.Find(m.specs, func(s Spec) bool {
		return s.Name == name
	})
}

func (m *Manager) GetTool(toolName string) ai.Tool {
	return m.tools[toolName]
}

// GetTools resolves tool names for a crew. An empty list selects every tool.
func (m *Manager) GetTools(names []string) ([]ai.Tool, error) {
	if m.genkit == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "tools are not bound to a model runtime")
	}
	if len(names) == 0 {
		names = lo.Map(m.specs, func(s Spec, _ int) string { return s.Name })
	}

	tools := make([]ai.Tool, 0, len(names))
	for _, name := range names {
		t := m.GetTool(name)
		if t == nil {
			return nil, errors.Wrapf(errors.ErrNotFound, "invalid tool name %s", name)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// Call invokes a tool outside the model loop, as the MCP server does.
func (m *Manager) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	spec, ok := m.GetSpec(name)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "tool %s", name)
	}

	out, err := spec.Invoke(ctx, args)
	if err != nil {
		m.logger.WarnContext(ctx, "tool call failed", slog.String("tool", name), mylog.Err(err))
		return nil, err
	}
	m.logger.DebugContext(ctx, "tool called", slog.String("tool", name))

	return out, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*Manager, error) {
		logger := din.MustGetT[*mylog.Logger](c)
		m := NewManager(din.MustGetT[*genkit.Genkit](c), NewOrders(), logger)
		c.RegisterOnShutdown(func(_ context.Context) {
			if err := m.Close(); err != nil {
				logger.Warn("failed to close mcp clients", mylog.Err(err))
			}
		})
		return m, nil
	})
}

package crew

import (
	"context"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/session"
	"github.com/habiliai/agenteat/tool"
	"github.com/samber/lo"
)

type (
	GenkitCrew struct {
		def      *Definition
		genkit   *genkit.Genkit
		tools    []ai.Tool
		model    string
		settings *ModelSettings
		task     *template.Template
		expected *template.Template
		logger   *mylog.Logger
	}

	AvailableTool struct {
		Name        string
		Description string
	}

	TaskValues struct {
		ChatID      string
		UserMessage string
		Context     string
		Now         time.Time
	}

	SystemPromptValues struct {
		Agent          AgentDefinition
		Tools          []AvailableTool
		ExpectedOutput string
		Now            time.Time
	}
)

var _ Crew = (*GenkitCrew)(nil)

// NewGenkitCrew binds a definition to the model runtime. MCP servers named
// by the definition are started here; tool names of the form "server/*" or
// "server/tool" select tools from them.
func NewGenkitCrew(
	ctx context.Context,
	def *Definition,
	g *genkit.Genkit,
	toolManager *tool.Manager,
	defaultModel string,
	logger *mylog.Logger,
) (*GenkitCrew, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	settings, err := def.ModelSettings()
	if err != nil {
		return nil, err
	}
	task, err := parseTemplate("task", def.Task.Description)
	if err != nil {
		return nil, err
	}
	expected, err := parseTemplate("expected_output", def.Task.ExpectedOutput)
	if err != nil {
		return nil, err
	}

	for _, conf := range def.Agent.MCPServers {
		if err := toolManager.RegisterMCPServer(ctx, conf); err != nil {
			return nil, errors.Wrapf(err, "failed to register mcp server %s", conf.Name)
		}
	}

	tools, err := resolveTools(ctx, toolManager, def.Agent.Tools)
	if err != nil {
		return nil, errors.Wrapf(err, "crew %s", def.ID)
	}

	model := def.Agent.Model
	if model == "" {
		model = defaultModel
	}

	return &GenkitCrew{
		def:      def,
		genkit:   g,
		tools:    tools,
		model:    model,
		settings: settings,
		task:     task,
		expected: expected,
		logger:   logger,
	}, nil
}

func resolveTools(ctx context.Context, toolManager *tool.Manager, names []string) ([]ai.Tool, error) {
	var local []string
	var tools []ai.Tool
	for _, name := range names {
		serverName, toolName, ok := strings.Cut(name, "/")
		if !ok {
			local = append(local, name)
			continue
		}

		mcpTools, err := toolManager.GetMCPTools(ctx, serverName)
		if err != nil {
			return nil, err
		}
		if toolName != "*" {
			t, found := lo.Find(mcpTools, func(t ai.Tool) bool { return t.Name() == toolName })
			if !found {
				return nil, errors.Wrapf(errors.ErrInvalidConfig, "invalid tool name %s", name)
			}
			mcpTools = []ai.Tool{t}
		}
		tools = append(tools, mcpTools...)
	}

	if len(local) > 0 || len(names) == 0 {
		localTools, err := toolManager.GetTools(local)
		if err != nil {
			return nil, err
		}
		tools = append(localTools, tools...)
	}
	return tools, nil
}

// NewFactory returns a Factory creating GenkitCrews.
func NewFactory(g *genkit.Genkit, toolManager *tool.Manager, defaultModel string, logger *mylog.Logger) Factory {
	return func(ctx context.Context, def *Definition) (Crew, error) {
		return NewGenkitCrew(ctx, def, g, toolManager, defaultModel, logger)
	}
}

func (c *GenkitCrew) Definition() *Definition {
	return c.def
}

func (c *GenkitCrew) Tools() []ai.Tool {
	return c.tools
}

func (c *GenkitCrew) checkModel() error {
	if c.model == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "no model configured for crew %s", c.def.ID)
	}
	provider, name, ok := strings.Cut(c.model, "/")
	if !ok {
		provider, name = "openai", c.model
	}
	if genkit.LookupModel(c.genkit, provider, name) == nil {
		return errors.Wrapf(
			errors.ErrInvalidConfig,
			"model %s is not available, set OPENAI_API_KEY, GROQ_API_KEY or ANTHROPIC_API_KEY",
			c.model,
		)
	}
	return nil
}

func (c *GenkitCrew) modelName() string {
	if strings.Contains(c.model, "/") {
		return c.model
	}
	return "openai/" + c.model
}

func (c *GenkitCrew) SystemPrompt(now time.Time) (string, error) {
	expected, err := render(c.expected, TaskValues{Now: now})
	if err != nil {
		return "", err
	}

	return render(systemInstTmpl, SystemPromptValues{
		Agent: c.def.Agent,
		Tools: lo.Map(c.tools, func(t ai.Tool, _ int) AvailableTool {
			return AvailableTool{
				Name:        t.Name(),
				Description: t.Definition().Description,
			}
		}),
		ExpectedOutput: expected,
		Now:            now,
	})
}

func convertHistory(history []session.Message) []*ai.Message {
	messages := make([]*ai.Message, 0, len(history)+1)
	for _, msg := range history {
		switch msg.Role {
		case session.RoleUser:
			messages = append(messages, ai.NewUserTextMessage(msg.Content))
		case session.RoleAssistant:
			messages = append(messages, ai.NewModelTextMessage(msg.Content))
		}
	}
	return messages
}

func (c *GenkitCrew) Submit(ctx context.Context, turn Turn) (*Reply, error) {
	if err := c.checkModel(); err != nil {
		return nil, err
	}

	now := time.Now()
	system, err := c.SystemPrompt(now)
	if err != nil {
		return nil, err
	}
	task, err := render(c.task, TaskValues{
		ChatID:      turn.ChatID,
		UserMessage: turn.UserMessage,
		Context:     turn.Context,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}

	messages := append(convertHistory(turn.History), ai.NewUserTextMessage(task))

	opts := []ai.GenerateOption{
		ai.WithModelName(c.modelName()),
		ai.WithSystem(system),
		ai.WithMessages(messages...),
		ai.WithMaxTurns(c.def.MaxTurns()),
	}
	if len(c.tools) > 0 {
		opts = append(opts, ai.WithTools(lo.Map(c.tools, func(t ai.Tool, _ int) ai.ToolRef {
			return t
		})...))
	}
	if c.settings != nil {
		opts = append(opts, ai.WithConfig(c.settings))
	}

	ctx = tool.WithEmptyCallDataStore(ctx)
	resp, err := genkit.Generate(ctx, c.genkit, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate response")
	}

	reply := &Reply{
		Content:   strings.TrimSpace(resp.Text()),
		ToolCalls: tool.GetCallData(ctx),
	}
	c.logger.DebugContext(ctx, "crew replied",
		slog.String("crew", c.def.ID),
		slog.String("chat_id", turn.ChatID),
		slog.Int("tool_calls", len(reply.ToolCalls)),
	)

	return reply, nil
}

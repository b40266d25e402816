// Package crew runs the LLM agent that answers each chat turn.
package crew

import (
	"context"

	"github.com/habiliai/agenteat/session"
	"github.com/habiliai/agenteat/tool"
)

type (
	Turn struct {
		ChatID      string
		UserMessage string
		// Context holds remembered facts, one per line.
		Context string
		History []session.Message
	}

	Reply struct {
		Content   string          `json:"content"`
		ToolCalls []tool.CallData `json:"tool_calls"`
	}

	Crew interface {
		Submit(ctx context.Context, turn Turn) (*Reply, error)
	}

	// Factory builds the crew for a definition.
	Factory func(ctx context.Context, def *Definition) (Crew, error)
)

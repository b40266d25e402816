// Package chat turns user messages into crew turns and keeps the
// conversation threads, memories and order state in step.
package chat

import (
	"context"
	"log/slog"

	"github.com/habiliai/agenteat/crew"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/internal/stringutils"
	"github.com/habiliai/agenteat/memory"
	"github.com/habiliai/agenteat/order"
	"github.com/habiliai/agenteat/session"
	"github.com/habiliai/agenteat/tool"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	FallbackReply = "I'm sorry, but I couldn't generate a response. Please try again."

	DefaultHistoryLimit = 20
)

type (
	InitResult struct {
		Status          string       `json:"status"`
		Message         string       `json:"message"`
		RequiredInputs  []crew.Input `json:"required_inputs"`
		CrewID          string       `json:"crew_id"`
		CrewName        string       `json:"crew_name"`
		CrewDescription string       `json:"crew_description"`
		ChatID          string       `json:"chat_id"`
	}

	Response struct {
		Status     string          `json:"status"`
		Content    string          `json:"content"`
		ChatID     string          `json:"chat_id"`
		CrewID     string          `json:"crew_id"`
		OrderState string          `json:"order_state"`
		ToolCalls  []tool.CallData `json:"tool_calls"`
	}

	// Handler serves one crew. All per-conversation state lives in the
	// session service, so a Handler is safe for concurrent use.
	Handler struct {
		def          *crew.Definition
		crew         crew.Crew
		sessions     *session.Service
		memory       *memory.Service
		logger       *mylog.Logger
		historyLimit int
	}
)

func NewHandler(
	def *crew.Definition,
	c crew.Crew,
	sessions *session.Service,
	mem *memory.Service,
	logger *mylog.Logger,
	historyLimit int,
) *Handler {
	return &Handler{
		def:          def,
		crew:         c,
		sessions:     sessions,
		memory:       mem,
		logger:       logger,
		historyLimit: historyLimit,
	}
}

func (h *Handler) Definition() *crew.Definition {
	return h.def
}

// Initialize returns the crew greeting. A non-empty chatID gets its thread
// created when absent; an existing thread is left as it is.
func (h *Handler) Initialize(ctx context.Context, chatID string) (*InitResult, error) {
	if chatID != "" {
		if err := h.sessions.WithLock(ctx, chatID, h.def.ID, func(*session.Thread) error {
			return nil
		}); err != nil {
			return nil, err
		}
	}

	inputs := h.def.RequiredInputs
	if inputs == nil {
		inputs = []crew.Input{}
	}

	return &InitResult{
		Status:          StatusSuccess,
		Message:         h.def.Greeting,
		RequiredInputs:  inputs,
		CrewID:          h.def.ID,
		CrewName:        h.def.Name,
		CrewDescription: h.def.Description,
		ChatID:          chatID,
	}, nil
}

// Process runs one turn on the chatID thread. The user message stays in
// the thread even when the crew fails.
func (h *Handler) Process(ctx context.Context, chatID, message string) (*Response, error) {
	var res *Response
	err := h.sessions.WithLock(ctx, chatID, h.def.ID, func(thread *session.Thread) error {
		history := thread.History(h.historyLimit)
		if _, err := thread.Append(session.RoleUser, message); err != nil {
			return err
		}

		h.remember(ctx, chatID, memory.SourceUser, "User: "+message)
		memoryContext := h.recall(ctx, chatID, message)

		reply, err := h.crew.Submit(ctx, crew.Turn{
			ChatID:      chatID,
			UserMessage: message,
			Context:     memoryContext,
			History:     history,
		})
		if err != nil {
			return errors.Wrapf(err, "crew %s failed", h.def.ID)
		}

		content := stringutils.Sanitize(reply.Content)
		if content == "" {
			h.logger.WarnContext(ctx, "crew returned an empty reply", slog.String("chat_id", chatID))
			content = FallbackReply
		}
		if _, err := thread.Append(session.RoleAssistant, content); err != nil {
			return err
		}
		h.remember(ctx, chatID, memory.SourceAssistant, "Assistant: "+content)

		thread.OrderState = order.Advance(ctx, thread.OrderState, reply.ToolCalls, h.logger)

		toolCalls := reply.ToolCalls
		if toolCalls == nil {
			toolCalls = []tool.CallData{}
		}
		res = &Response{
			Status:     StatusSuccess,
			Content:    content,
			ChatID:     chatID,
			CrewID:     h.def.ID,
			OrderState: thread.OrderState,
			ToolCalls:  toolCalls,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (h *Handler) remember(ctx context.Context, chatID string, source memory.Source, text string) {
	if h.memory == nil {
		return
	}
	if _, err := h.memory.Store(ctx, memory.Entry{
		Scope:  chatID,
		Source: source,
		Text:   text,
	}); err != nil {
		h.logger.WarnContext(ctx, "failed to store memory", slog.String("chat_id", chatID), mylog.Err(err))
	}
}

func (h *Handler) recall(ctx context.Context, chatID, message string) string {
	if h.memory == nil {
		return ""
	}
	hits, err := h.memory.Search(ctx, memory.Query{
		Scope:   chatID,
		Text:    message,
		Sources: []memory.Source{memory.SourceUser},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to search memory", slog.String("chat_id", chatID), mylog.Err(err))
		return ""
	}
	return memory.FormatContext(hits)
}

package chat_test

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/crew"
	crewtest "github.com/habiliai/agenteat/crew/test"
	"github.com/habiliai/agenteat/memory"
	"github.com/habiliai/agenteat/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProcessRecallsFromSqliteMemory(t *testing.T) {
	embedder := memory.NewHashEmbedder(memory.HashEmbeddingDimension)
	store, err := memory.NewSqliteStore(filepath.Join(t.TempDir(), "memory.db"), embedder.Dimension())
	require.NoError(t, err)
	mem := memory.NewService(store, embedder, slog.Default())
	defer mem.Close()

	c := &crewtest.Crew{}
	defer c.AssertExpectations(t)

	handler := chat.NewHandler(
		crew.DefaultDefinition(),
		c,
		session.NewService(session.NewInMemoryStore(), slog.Default()),
		mem,
		slog.Default(),
		chat.DefaultHistoryLimit,
	)

	var contexts []string
	c.On("Submit", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		contexts = append(contexts, args.Get(1).(crew.Turn).Context)
	}).Return(&crew.Reply{Content: "Margherita Pizza from Pizza Place is £10.99."}, nil).Twice()

	ctx := t.Context()
	_, err = handler.Process(ctx, "chat-1", "I want pizza in SW1A 1AA")
	require.NoError(t, err)
	_, err = handler.Process(ctx, "chat-1", "make it two pizzas")
	require.NoError(t, err)

	require.Len(t, contexts, 2)
	assert.Contains(t, contexts[0], "User: I want pizza in SW1A 1AA")
	assert.Contains(t, contexts[1], "User: I want pizza in SW1A 1AA")
	assert.Contains(t, contexts[1], "User: make it two pizzas")
	assert.NotContains(t, contexts[1], "Assistant:")

	memories, err := mem.List(ctx, "chat-1")
	require.NoError(t, err)
	assert.Len(t, memories, 4)
}

package memory_test

import (
	"log/slog"
	"math"
	"testing"

	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder(t *testing.T) {
	e := memory.NewHashEmbedder(0)
	require.Equal(t, memory.HashEmbeddingDimension, e.Dimension())

	vecs, err := e.Embed(t.Context(), "Chinese food, please!", "chinese FOOD please", "")
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, vecs[0], vecs[1], "tokenization ignores case and punctuation")

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	for _, v := range vecs[2] {
		assert.Zero(t, v)
	}
}

func TestService_StoreAndSearch(t *testing.T) {
	s := memory.NewService(memory.NewInMemoryStore(), memory.NewHashEmbedder(0), slog.Default())
	ctx := t.Context()

	hits, err := s.Search(ctx, memory.Query{Scope: "chat-1", Text: "anything"})
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, "", memory.FormatContext(hits))

	_, err = s.Store(ctx, memory.Entry{Scope: "chat-1", Source: memory.SourceUser, Text: "I love spicy chinese food"})
	require.NoError(t, err)
	_, err = s.Store(ctx, memory.Entry{Scope: "chat-1", Source: memory.SourceAssistant, Text: "My postal code is SW1A 1AA"})
	require.NoError(t, err)
	_, err = s.Store(ctx, memory.Entry{Scope: "chat-2", Source: memory.SourceUser, Text: "chinese food tonight"})
	require.NoError(t, err)

	_, err = s.Store(ctx, memory.Entry{Scope: "chat-1", Source: memory.SourceUser, Text: "  "})
	assert.ErrorIs(t, err, errors.ErrInvalidParams)

	hits, err = s.Search(ctx, memory.Query{Scope: "chat-1", Text: "chinese food", Limit: 1})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "I love spicy chinese food", hits[0])

	hits, err = s.Search(ctx, memory.Query{Scope: "chat-1", Text: "chinese food"})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "I love spicy chinese food\nMy postal code is SW1A 1AA", memory.FormatContext(hits))

	list, err := s.List(ctx, "chat-2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, memory.SourceUser, list[0].Source)
}

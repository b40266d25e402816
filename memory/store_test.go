package memory_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T, e memory.Embedder, key, scope string, source memory.Source, text string) *memory.Memory {
	t.Helper()
	embeddings, err := e.Embed(t.Context(), text)
	require.NoError(t, err)
	return &memory.Memory{
		Key:       key,
		Scope:     scope,
		Source:    source,
		Value:     text,
		CreatedAt: time.Now(),
		Embedding: embeddings[0],
	}
}

func TestInMemoryStore_SetAndGet(t *testing.T) {
	store := memory.NewInMemoryStore()
	ctx := t.Context()

	mem := &memory.Memory{
		Key:       "test-key",
		Scope:     "chat-1",
		Value:     "test value",
		Source:    memory.SourceUser,
		Embedding: []float32{0.1, 0.2, 0.3},
	}
	require.NoError(t, store.Set(ctx, mem))

	stored, err := store.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, mem.Value, stored.Value)
	assert.Equal(t, mem.Source, stored.Source)
	assert.Equal(t, mem.Embedding, stored.Embedding)

	err = store.Set(ctx, mem)
	assert.Error(t, err, "duplicate keys are rejected")

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestInMemoryStore_SearchEmpty(t *testing.T) {
	store := memory.NewInMemoryStore()

	results, err := store.Search(t.Context(), []float32{1, 0, 0}, memory.Filter{}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = store.Search(t.Context(), nil, memory.Filter{}, 3)
	assert.ErrorIs(t, err, errors.ErrInvalidParams)
}

func TestInMemoryStore_SearchRanksAndFilters(t *testing.T) {
	store := memory.NewInMemoryStore()
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, &memory.Memory{Key: "a", Scope: "s1", Source: memory.SourceUser, Value: "a", Embedding: []float32{1, 0}}))
	require.NoError(t, store.Set(ctx, &memory.Memory{Key: "b", Scope: "s1", Source: memory.SourceAssistant, Value: "b", Embedding: []float32{0.6, 0.8}}))
	require.NoError(t, store.Set(ctx, &memory.Memory{Key: "c", Scope: "s1", Source: memory.SourceUser, Value: "c", Embedding: []float32{-1, 0}}))
	require.NoError(t, store.Set(ctx, &memory.Memory{Key: "d", Scope: "s2", Source: memory.SourceUser, Value: "d", Embedding: []float32{1, 0}}))

	results, err := store.Search(ctx, []float32{1, 0}, memory.Filter{Scope: "s1"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Key)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "b", results[1].Key)
	assert.InDelta(t, 0.8, results[1].Score, 1e-6)
	assert.Equal(t, "c", results[2].Key)
	assert.InDelta(t, 0.0, results[2].Score, 1e-6)

	results, err = store.Search(ctx, []float32{1, 0}, memory.Filter{Scope: "s1", Sources: []memory.Source{memory.SourceAssistant}}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Key)

	results, err = store.Search(ctx, []float32{1, 0}, memory.Filter{}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	store := memory.NewInMemoryStore()
	ctx := t.Context()
	now := time.Now()

	require.NoError(t, store.Set(ctx, &memory.Memory{Key: "second", Scope: "s1", CreatedAt: now.Add(time.Second), Embedding: []float32{1}}))
	require.NoError(t, store.Set(ctx, &memory.Memory{Key: "first", Scope: "s1", CreatedAt: now, Embedding: []float32{1}}))
	require.NoError(t, store.Set(ctx, &memory.Memory{Key: "other", Scope: "s2", CreatedAt: now, Embedding: []float32{1}}))

	list, err := store.List(ctx, memory.Filter{Scope: "s1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Key)
	assert.Equal(t, "second", list[1].Key)

	require.NoError(t, store.Delete(ctx, "first"))
	list, err = store.List(ctx, memory.Filter{Scope: "s1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSqliteStore(t *testing.T) {
	embedder := memory.NewHashEmbedder(memory.HashEmbeddingDimension)
	store, err := memory.NewSqliteStore(filepath.Join(t.TempDir(), "memory.db"), embedder.Dimension())
	require.NoError(t, err)
	defer store.Close()

	ctx := t.Context()

	results, err := store.Search(ctx, make([]float32, embedder.Dimension()), memory.Filter{Scope: "chat-1"}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, store.Set(ctx, newMemory(t, embedder, "m1", "chat-1", memory.SourceUser, "I would like some chinese food")))
	require.NoError(t, store.Set(ctx, newMemory(t, embedder, "m2", "chat-1", memory.SourceAssistant, "Your postal code is SW1A 1AA")))
	require.NoError(t, store.Set(ctx, newMemory(t, embedder, "m3", "chat-2", memory.SourceUser, "chinese food please")))

	query, err := embedder.Embed(ctx, "chinese food")
	require.NoError(t, err)

	results, err = store.Search(ctx, query[0], memory.Filter{Scope: "chat-1"}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m1", results[0].Key)
	assert.Equal(t, "I would like some chinese food", results[0].Value)
	assert.Greater(t, results[0].Score, 0.0)

	results, err = store.Search(ctx, query[0], memory.Filter{Scope: "chat-1", Sources: []memory.Source{memory.SourceAssistant}}, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m2", results[0].Key)

	got, err := store.Get(ctx, "m3")
	require.NoError(t, err)
	assert.Equal(t, "chat-2", got.Scope)

	require.NoError(t, store.Delete(ctx, "m3"))
	_, err = store.Get(ctx, "m3")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	list, err := store.List(ctx, memory.Filter{Scope: "chat-1"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSqliteStoreSearchSingleMemory(t *testing.T) {
	embedder := memory.NewHashEmbedder(memory.HashEmbeddingDimension)
	store, err := memory.NewSqliteStore(filepath.Join(t.TempDir(), "memory.db"), embedder.Dimension())
	require.NoError(t, err)
	defer store.Close()

	ctx := t.Context()
	require.NoError(t, store.Set(ctx, newMemory(t, embedder, "m1", "chat-1", memory.SourceUser, "User: I want pizza in SW1A 1AA")))

	query, err := embedder.Embed(ctx, "pizza")
	require.NoError(t, err)

	for _, limit := range []uint{0, 1, 2, 3} {
		results, err := store.Search(ctx, query[0], memory.Filter{Scope: "chat-1", Sources: []memory.Source{memory.SourceUser}}, limit)
		require.NoError(t, err, "limit %d", limit)
		require.Len(t, results, 1, "limit %d", limit)
		assert.Equal(t, "m1", results[0].Key)
	}

	results, err := store.Search(ctx, query[0], memory.Filter{Scope: "chat-1", Sources: []memory.Source{memory.SourceAssistant}}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSqliteStoreRejectsDimensionChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")

	store, err := memory.NewSqliteStore(path, memory.HashEmbeddingDimension)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = memory.NewSqliteStore(path, 1536)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	store, err = memory.NewSqliteStore(path, memory.HashEmbeddingDimension)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

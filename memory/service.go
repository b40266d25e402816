package memory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"
	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/jcooky/go-din"
)

type (
	Service struct {
		store    Store
		embedder Embedder
		logger   *mylog.Logger
		limit    uint
	}

	Entry struct {
		Scope  string
		Source Source
		Text   string
	}

	Query struct {
		Scope   string
		Text    string
		Limit   uint
		Sources []Source
	}
)

const defaultSearchLimit = 3

func NewService(store Store, embedder Embedder, logger *mylog.Logger) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		logger:   logger,
		limit:    defaultSearchLimit,
	}
}

func (s *Service) Store(ctx context.Context, entry Entry) (*Memory, error) {
	if strings.TrimSpace(entry.Text) == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "memory text is empty")
	}

	embeddings, err := s.embedder.Embed(ctx, entry.Text)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, errors.Wrapf(errors.ErrInternal, "expected 1 embedding, got %d", len(embeddings))
	}

	memory := &Memory{
		Key:       uuid.NewString(),
		Scope:     entry.Scope,
		Source:    entry.Source,
		Value:     entry.Text,
		CreatedAt: time.Now(),
		Embedding: embeddings[0],
	}
	if err := s.store.Set(ctx, memory); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "memory stored", slog.String("scope", entry.Scope), slog.String("source", string(entry.Source)))
	return memory, nil
}

// Search returns the texts of the memories most similar to q.Text, best
// first. No stored memories yields an empty result.
func (s *Service) Search(ctx context.Context, q Query) ([]string, error) {
	if strings.TrimSpace(q.Text) == "" {
		return []string{}, nil
	}

	limit := q.Limit
	if limit == 0 {
		limit = s.limit
	}

	embeddings, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, errors.Wrapf(errors.ErrInternal, "expected 1 embedding, got %d", len(embeddings))
	}

	results, err := s.store.Search(ctx, embeddings[0], Filter{Scope: q.Scope, Sources: q.Sources}, limit)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Value)
	}
	return texts, nil
}

func (s *Service) List(ctx context.Context, scope string) ([]*Memory, error) {
	return s.store.List(ctx, Filter{Scope: scope})
}

func (s *Service) Close() error {
	return s.store.Close()
}

// FormatContext renders search hits as the prompt's memory context.
func FormatContext(hits []string) string {
	if len(hits) == 0 {
		return ""
	}
	return strings.Join(hits, "\n")
}

// NewStoreFromConfig opens the configured backend sized for embedder.
func NewStoreFromConfig(conf *config.MemoryConfig, embedder Embedder) (Store, error) {
	switch conf.Store {
	case config.MemoryStoreInMemory:
		return NewInMemoryStore(), nil
	case config.MemoryStoreSqlite:
		return newSqliteStore(conf.Path(), embedder.Dimension())
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown memory store %q", conf.Store)
	}
}

// NewServiceFromConfig falls back to hash embeddings when no OpenAI key is
// configured.
func NewServiceFromConfig(conf *config.Config, g *genkit.Genkit, logger *mylog.Logger) (*Service, error) {
	var embedder Embedder
	if conf.Model.OpenAIAPIKey != "" {
		e, err := NewGenkitEmbedder(g, conf.Model.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		embedder = e
	} else {
		logger.Warn("OPENAI_API_KEY is not set, using hash embeddings for memory")
		embedder = NewHashEmbedder(HashEmbeddingDimension)
	}

	store, err := NewStoreFromConfig(&conf.Memory, embedder)
	if err != nil {
		return nil, err
	}

	s := NewService(store, embedder, logger)
	if conf.Memory.SearchLimit > 0 {
		s.limit = conf.Memory.SearchLimit
	}
	return s, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*Service, error) {
		logger := din.MustGetT[*mylog.Logger](c)

		s, err := NewServiceFromConfig(din.MustGetT[*config.Config](c), din.MustGetT[*genkit.Genkit](c), logger)
		if err != nil {
			return nil, err
		}
		c.RegisterOnShutdown(func(_ context.Context) {
			if err := s.Close(); err != nil {
				logger.Warn("failed to close memory store", mylog.Err(err))
			}
		})

		return s, nil
	})
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/habiliai/agenteat/errors"
	"gonum.org/v1/gonum/mat"
)

type (
	Store interface {
		Set(ctx context.Context, memory *Memory) error
		Get(ctx context.Context, key string) (*Memory, error)
		Search(ctx context.Context, queryEmbedding []float32, filter Filter, limit uint) ([]ScoredMemory, error)
		List(ctx context.Context, filter Filter) ([]*Memory, error)
		Delete(ctx context.Context, key string) error
		Close() error
	}

	InMemoryStore struct {
		mu       sync.RWMutex
		memories map[string]*Memory
	}
)

var (
	_ Store = (*InMemoryStore)(nil)
)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		memories: make(map[string]*Memory),
	}
}

func (s *InMemoryStore) Set(_ context.Context, memory *Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.memories[memory.Key]; exists {
		return errors.Errorf("memory with key '%s' already exists", memory.Key)
	}

	s.memories[memory.Key] = memory
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memory, exists := s.memories[key]
	if !exists {
		return nil, errors.Wrapf(errors.ErrNotFound, "memory with key '%s'", key)
	}
	return memory, nil
}

// Search ranks memories by inner product with the query. Embeddings are
// unit length, so scores are mapped from [-1,1] to [0,1].
func (s *InMemoryStore) Search(_ context.Context, queryEmbedding []float32, filter Filter, limit uint) ([]ScoredMemory, error) {
	if len(queryEmbedding) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "query embedding is empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*Memory
	for _, memory := range s.memories {
		if len(memory.Embedding) == len(queryEmbedding) && filter.Match(memory) {
			candidates = append(candidates, memory)
		}
	}
	if len(candidates) == 0 {
		return []ScoredMemory{}, nil
	}

	numMemories := len(candidates)
	dim := len(queryEmbedding)

	queryVec := make([]float64, dim)
	for i, v := range queryEmbedding {
		queryVec[i] = float64(v)
	}
	memoryData := make([]float64, numMemories*dim)
	for i, memory := range candidates {
		for j, v := range memory.Embedding {
			memoryData[i*dim+j] = float64(v)
		}
	}

	var scores mat.VecDense
	scores.MulVec(mat.NewDense(numMemories, dim, memoryData), mat.NewVecDense(dim, queryVec))

	results := make([]ScoredMemory, 0, numMemories)
	for i, memory := range candidates {
		results = append(results, ScoredMemory{
			Memory: memory,
			Score:  (scores.AtVec(i) + 1.0) * 0.5,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].Score > results[j].Score
	})

	if limit > 0 && uint(len(results)) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Memory, 0, len(s.memories))
	for _, memory := range s.memories {
		if filter.Match(memory) {
			results = append(results, memory)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})

	return results, nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memories, key)
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

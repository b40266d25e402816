package session

import (
	"context"
	"sort"
	"sync"

	"github.com/habiliai/agenteat/errors"
)

type (
	Store interface {
		Get(ctx context.Context, id string) (*Thread, error)
		Put(ctx context.Context, thread *Thread) error
		List(ctx context.Context) ([]Thread, error)
		Close() error
	}

	InMemoryStore struct {
		mu      sync.RWMutex
		threads map[string]*Thread
	}
)

var (
	_ Store = (*InMemoryStore)(nil)
)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		threads: make(map[string]*Thread),
	}
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "thread %s", id)
	}
	return thread.Clone(), nil
}

func (s *InMemoryStore) Put(_ context.Context, thread *Thread) error {
	if err := thread.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[thread.ID] = thread.Clone()
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		threads = append(threads, *t.Clone())
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].CreatedAt.Before(threads[j].CreatedAt)
	})
	return threads, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

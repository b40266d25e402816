package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/jcooky/go-din"
)

type (
	// Service hands out exclusive ownership of one thread at a time.
	Service struct {
		store  Store
		logger *mylog.Logger

		mtx   sync.Mutex
		locks map[string]*sessionLock
	}

	sessionLock struct {
		sem  chan struct{}
		refs int
	}
)

func NewService(store Store, logger *mylog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sessionLock),
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Thread, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Thread, error) {
	return s.store.List(ctx)
}

// WithLock runs fn on the thread with the given id, creating it for crewID
// when absent. Turns on one id run one at a time. The thread is persisted
// after fn returns, also when fn fails.
func (s *Service) WithLock(ctx context.Context, id, crewID string, fn func(thread *Thread) error) error {
	if id == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "session id is empty")
	}

	release, err := s.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	thread, err := s.store.Get(ctx, id)
	if errors.Is(err, errors.ErrNotFound) {
		thread = NewThread(id, crewID)
	} else if err != nil {
		return err
	}

	fnErr := fn(thread)

	// persist even if ctx was cancelled during fn
	if err := s.store.Put(context.WithoutCancel(ctx), thread); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist thread", slog.String("chat_id", id), mylog.Err(err))
		if fnErr == nil {
			return err
		}
	}

	return fnErr
}

func (s *Service) acquire(ctx context.Context, id string) (func(), error) {
	s.mtx.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{sem: make(chan struct{}, 1)}
		s.locks[id] = l
	}
	l.refs++
	s.mtx.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		s.unref(id, l)
		return nil, errors.Wrapf(ctx.Err(), "waiting for session %s", id)
	}

	return func() {
		<-l.sem
		s.unref(id, l)
	}, nil
}

func (s *Service) unref(id string, l *sessionLock) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

// lockCount is the number of session ids holding or waiting for a lock.
func (s *Service) lockCount() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.locks)
}

func (s *Service) Close() error {
	return s.store.Close()
}

// NewStoreFromConfig opens the sqlite store when a path is configured and
// keeps threads in memory otherwise.
func NewStoreFromConfig(conf *config.ServerConfig) (Store, error) {
	if conf.ThreadsDBPath == "" {
		return NewInMemoryStore(), nil
	}
	return NewGormStore(conf.ThreadsDBPath)
}

func init() {
	din.RegisterT(func(c *din.Container) (*Service, error) {
		conf := din.MustGetT[*config.Config](c)
		logger := din.MustGetT[*mylog.Logger](c)

		store, err := NewStoreFromConfig(&conf.Server)
		if err != nil {
			return nil, err
		}

		s := NewService(store, logger)
		c.RegisterOnShutdown(func(_ context.Context) {
			if err := s.Close(); err != nil {
				logger.Warn("failed to close thread store", mylog.Err(err))
			}
		})
		return s, nil
	})
}

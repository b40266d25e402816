package chat

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/crew"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/internal/stringutils"
	"github.com/habiliai/agenteat/memory"
	"github.com/habiliai/agenteat/session"
	"github.com/habiliai/agenteat/tool"
	"github.com/jcooky/go-din"
)

type (
	// Registry owns one Handler per crew, created on first use, and
	// remembers the one used last as the active handler.
	Registry struct {
		defs     []*crew.Definition
		factory  crew.Factory
		sessions *session.Service
		memory   *memory.Service
		logger   *mylog.Logger

		historyLimit int

		mtx      sync.Mutex
		handlers map[string]*Handler
		active   *Handler
	}

	RegistryOption func(*Registry)
)

func WithHistoryLimit(limit int) RegistryOption {
	return func(r *Registry) {
		r.historyLimit = limit
	}
}

func WithMemory(mem *memory.Service) RegistryOption {
	return func(r *Registry) {
		r.memory = mem
	}
}

func NewRegistry(
	defs []*crew.Definition,
	factory crew.Factory,
	sessions *session.Service,
	logger *mylog.Logger,
	opts ...RegistryOption,
) (*Registry, error) {
	if len(defs) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "no crews defined")
	}

	r := &Registry{
		defs:         defs,
		factory:      factory,
		sessions:     sessions,
		logger:       logger,
		historyLimit: DefaultHistoryLimit,
		handlers:     make(map[string]*Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) Crews() []crew.Info {
	infos := make([]crew.Info, 0, len(r.defs))
	for _, def := range r.defs {
		infos = append(infos, def.Info())
	}
	return infos
}

func (r *Registry) Definition(crewID string) (*crew.Definition, error) {
	idx := slices.IndexFunc(r.defs, func(d *crew.Definition) bool { return d.ID == crewID })
	if idx < 0 {
		return nil, errors.WithDetail(errors.ErrNotFound, "Crew with ID %s not found", crewID)
	}
	return r.defs[idx], nil
}

// activate returns the handler of crewID, building it on first use, and
// makes it active. The crew factory runs outside r.mtx so a slow model
// setup never stalls chats on crews that are already loaded.
func (r *Registry) activate(ctx context.Context, crewID string) (*Handler, error) {
	r.mtx.Lock()
	if h, ok := r.handlers[crewID]; ok {
		r.active = h
		r.mtx.Unlock()
		return h, nil
	}
	r.mtx.Unlock()

	def, err := r.Definition(crewID)
	if err != nil {
		return nil, err
	}
	c, err := r.factory(ctx, def)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load crew %s", crewID)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	// another caller may have loaded the same crew meanwhile
	h, ok := r.handlers[crewID]
	if !ok {
		h = NewHandler(def, c, r.sessions, r.memory, r.logger, r.historyLimit)
		r.handlers[crewID] = h
		r.logger.InfoContext(ctx, "crew loaded", slog.String("crew_id", crewID), slog.String("name", def.Name))
	}
	r.active = h
	return h, nil
}

// Preload creates the handler for crewID, or the first crew when empty,
// and makes it active.
func (r *Registry) Preload(ctx context.Context, crewID string) error {
	if crewID == "" {
		crewID = r.defs[0].ID
	}

	_, err := r.activate(ctx, crewID)
	return err
}

func (r *Registry) Initialize(ctx context.Context, crewID, chatID string) (*InitResult, error) {
	if crewID == "" {
		crewID = r.defs[0].ID
	}

	h, err := r.activate(ctx, crewID)
	if err != nil {
		return nil, err
	}

	return h.Initialize(ctx, chatID)
}

func (r *Registry) Chat(ctx context.Context, crewID, chatID, message string) (*Response, error) {
	message = stringutils.Sanitize(message)
	if message == "" {
		return nil, errors.WithDetail(errors.ErrInvalidParams, "No message provided")
	}
	if chatID == "" {
		return nil, errors.WithDetail(errors.ErrInvalidParams, "No chat ID provided. Unable to track conversation thread.")
	}

	r.mtx.Lock()
	if h, ok := r.handlers[crewID]; ok && crewID != "" {
		r.active = h
	}
	h := r.active
	r.mtx.Unlock()

	if h == nil {
		return nil, errors.WithDetail(errors.ErrNotInitialized, "No crew has been initialized. Please select a crew first.")
	}

	return h.Process(ctx, chatID, message)
}

// Thread returns the stored conversation of chatID.
func (r *Registry) Thread(ctx context.Context, chatID string) (*session.Thread, error) {
	thread, err := r.sessions.Get(ctx, chatID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.WithDetail(errors.ErrNotFound, "Chat thread %s not found", chatID)
	}
	return thread, err
}

func init() {
	din.RegisterT(func(c *din.Container) (*Registry, error) {
		conf := din.MustGetT[*config.Config](c)
		logger := din.MustGetT[*mylog.Logger](c)

		defs, err := crew.LoadDefinitions(conf.Crew.CrewDir)
		if err != nil {
			return nil, err
		}

		factory := crew.NewFactory(
			din.MustGetT[*genkit.Genkit](c),
			din.MustGetT[*tool.Manager](c),
			conf.Model.Model,
			logger,
		)

		return NewRegistry(
			defs,
			factory,
			din.MustGetT[*session.Service](c),
			logger,
			WithHistoryLimit(conf.Crew.HistoryLimit),
			WithMemory(din.MustGetT[*memory.Service](c)),
		)
	})
}

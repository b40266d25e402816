package agenteat

import (
	"context"
	"log/slog"
	"net/http"

	fgenkit "github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/crew"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/genkit"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/habiliai/agenteat/memory"
	"github.com/habiliai/agenteat/server"
	"github.com/habiliai/agenteat/session"
	"github.com/habiliai/agenteat/tool"
)

type (
	// AgentEat wires the crews, tools, memory and conversation threads of
	// one assistant. It is safe for concurrent use.
	AgentEat struct {
		conf         *config.Config
		logger       *slog.Logger
		genkit       *fgenkit.Genkit
		toolManager  *tool.Manager
		sessions     *session.Service
		sessionStore session.Store
		memory       *memory.Service
		registry     *chat.Registry

		defs    []*crew.Definition
		factory crew.Factory
		orders  *tool.Orders
	}
	Option func(*AgentEat)
)

// New builds every service. Services opened before a failing step are
// closed again.
func New(ctx context.Context, optionFuncs ...Option) (_ *AgentEat, err error) {
	e := &AgentEat{
		conf: config.Default(),
	}
	for _, f := range optionFuncs {
		f(e)
	}

	if err := e.conf.Validate(); err != nil {
		return nil, err
	}

	if e.logger == nil {
		e.logger = mylog.NewLogger(e.conf.Log.Level(), e.conf.Log.LogHandler)
	}

	defer func() {
		if err == nil {
			return
		}
		if closeErr := e.Close(); closeErr != nil {
			e.logger.Warn("failed to close services", mylog.Err(closeErr))
		}
	}()

	g, err := genkit.NewGenkit(ctx, &e.conf.Model, e.logger, e.conf.Log.TraceVerbose)
	if err != nil {
		return nil, err
	}
	e.genkit = g

	if e.orders == nil {
		e.orders = tool.NewOrders()
	}
	e.toolManager = tool.NewManager(g, e.orders, e.logger)

	if e.defs == nil {
		e.defs, err = crew.LoadDefinitions(e.conf.Crew.CrewDir)
		if err != nil {
			return nil, err
		}
	}

	if e.factory == nil {
		e.factory = crew.NewFactory(g, e.toolManager, e.conf.Model.Model, e.logger)
	}

	if e.sessionStore == nil {
		e.sessionStore, err = session.NewStoreFromConfig(&e.conf.Server)
		if err != nil {
			return nil, err
		}
	}
	e.sessions = session.NewService(e.sessionStore, e.logger)

	e.memory, err = memory.NewServiceFromConfig(e.conf, g, e.logger)
	if err != nil {
		return nil, err
	}

	e.registry, err = chat.NewRegistry(
		e.defs,
		e.factory,
		e.sessions,
		e.logger,
		chat.WithHistoryLimit(e.conf.Crew.HistoryLimit),
		chat.WithMemory(e.memory),
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (e *AgentEat) Crews() []crew.Info {
	return e.registry.Crews()
}

func (e *AgentEat) Initialize(ctx context.Context, crewID, chatID string) (*chat.InitResult, error) {
	return e.registry.Initialize(ctx, crewID, chatID)
}

func (e *AgentEat) Chat(ctx context.Context, crewID, chatID, message string) (*chat.Response, error) {
	return e.registry.Chat(ctx, crewID, chatID, message)
}

func (e *AgentEat) Thread(ctx context.Context, chatID string) (*session.Thread, error) {
	return e.registry.Thread(ctx, chatID)
}

func (e *AgentEat) Registry() *chat.Registry {
	return e.registry
}

func (e *AgentEat) ToolManager() *tool.Manager {
	return e.toolManager
}

func (e *AgentEat) Memory() *memory.Service {
	return e.memory
}

// Handler returns the HTTP API and web UI handler.
func (e *AgentEat) Handler() (http.Handler, error) {
	return server.New(e.registry, e.toolManager, e.conf.Server.UIDir, e.logger).Handler()
}

// Serve activates the first crew and serves HTTP until ctx is done.
func (e *AgentEat) Serve(ctx context.Context) error {
	if err := e.registry.Preload(ctx, ""); err != nil {
		return err
	}

	addr, err := server.Addr(&e.conf.Server)
	if err != nil {
		return err
	}

	return server.New(e.registry, e.toolManager, e.conf.Server.UIDir, e.logger).Serve(ctx, addr)
}

func (e *AgentEat) Close() error {
	var errs []error
	if e.toolManager != nil {
		errs = append(errs, e.toolManager.Close())
	}
	if e.memory != nil {
		errs = append(errs, e.memory.Close())
	}
	if e.sessions != nil {
		errs = append(errs, e.sessions.Close())
	} else if e.sessionStore != nil {
		errs = append(errs, e.sessionStore.Close())
	}
	return errors.Join(errs...)
}

// WithConfig replaces the whole configuration and must come before the
// options that adjust it.
func WithConfig(conf *config.Config) Option {
	return func(e *AgentEat) {
		e.conf = conf
	}
}

func WithOpenAIAPIKey(apiKey string) Option {
	return func(e *AgentEat) {
		e.conf.Model.OpenAIAPIKey = apiKey
	}
}

func WithGroqAPIKey(apiKey string) Option {
	return func(e *AgentEat) {
		e.conf.Model.GroqAPIKey = apiKey
	}
}

func WithAnthropicAPIKey(apiKey string) Option {
	return func(e *AgentEat) {
		e.conf.Model.AnthropicAPIKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(e *AgentEat) {
		e.conf.Model.Model = model
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *AgentEat) {
		e.logger = logger
	}
}

func WithTraceVerbose(traceVerbose bool) Option {
	return func(e *AgentEat) {
		e.conf.Log.TraceVerbose = traceVerbose
	}
}

// WithInMemoryStores keeps memories and threads in process memory only.
func WithInMemoryStores() Option {
	return func(e *AgentEat) {
		e.conf.Memory.Store = config.MemoryStoreInMemory
		e.conf.Server.ThreadsDBPath = ""
	}
}

// WithSessionStore keeps threads in store instead of the configured one.
func WithSessionStore(store session.Store) Option {
	return func(e *AgentEat) {
		e.sessionStore = store
	}
}

// WithCrews replaces the crew definitions. Passing none is an error at New.
func WithCrews(defs ...*crew.Definition) Option {
	return func(e *AgentEat) {
		e.defs = append([]*crew.Definition{}, defs...)
	}
}

// WithCrewFactory replaces the model backed crews, e.g. with a scripted one.
func WithCrewFactory(factory crew.Factory) Option {
	return func(e *AgentEat) {
		e.factory = factory
	}
}

func WithOrders(orders *tool.Orders) Option {
	return func(e *AgentEat) {
		e.orders = orders
	}
}

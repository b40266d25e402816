package config

import (
	"strings"

	"github.com/habiliai/agenteat/errors"
	"github.com/jcooky/go-din"
)

type (
	LogConfig struct {
		LogLevel     string `env:"LOG_LEVEL"`
		LogHandler   string `env:"LOG_HANDLER"`
		Debug        string `env:"DEBUG"`
		LogDir       string `env:"LOG_DIR"`
		TraceVerbose bool   `env:"TRACE_VERBOSE"`
	}

	ModelConfig struct {
		OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
		GroqAPIKey      string `env:"GROQ_API_KEY"`
		AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
		Model           string `env:"MODEL"`
		EmbeddingModel  string `env:"EMBEDDING_MODEL"`
	}

	MemoryConfig struct {
		// Store selects the vector memory backend: "sqlite" or "memory".
		Store        string `env:"MEMORY_STORE"`
		DBPath       string `env:"MEMORY_DB_PATH"`
		LegacyDBPath string `env:"CHROMA_DB_PATH"`
		SearchLimit  uint   `env:"MEMORY_SEARCH_LIMIT"`
	}

	ServerConfig struct {
		Host          string `env:"HOST"`
		Port          int    `env:"PORT"`
		StartPort     int    `env:"START_PORT"`
		PortAttempts  int    `env:"PORT_ATTEMPTS"`
		UIDir         string `env:"UI_DIR"`
		ThreadsDBPath string `env:"THREADS_DB_PATH"`
	}

	CrewConfig struct {
		CrewDir      string `env:"CREW_DIR"`
		HistoryLimit int    `env:"HISTORY_LIMIT"`
	}

	Config struct {
		Log    LogConfig
		Model  ModelConfig
		Memory MemoryConfig
		Server ServerConfig
		Crew   CrewConfig
	}
)

const (
	MemoryStoreSqlite   = "sqlite"
	MemoryStoreInMemory = "memory"
)

// IsDebug reports whether DEBUG holds one of true, 1 or yes.
func (c *LogConfig) IsDebug() bool {
	switch strings.ToLower(strings.TrimSpace(c.Debug)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Level returns the effective log level. Debug mode always wins.
func (c *LogConfig) Level() string {
	if c.IsDebug() {
		return "debug"
	}
	return strings.ToLower(c.LogLevel)
}

// Path returns the memory database path, honoring the legacy variable when
// the new one was left at its default.
func (c *MemoryConfig) Path() string {
	if c.LegacyDBPath != "" && c.DBPath == DefaultMemoryDBPath {
		return c.LegacyDBPath
	}
	return c.DBPath
}

const (
	DefaultModel          = "openai/gpt-4o-mini"
	DefaultEmbeddingModel = "openai/text-embedding-3-small"
	DefaultMemoryDBPath   = "data/memory.db"
	DefaultUIDir          = "frontend/ui/build/client"
)

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			LogLevel:   "info",
			LogHandler: "default",
			LogDir:     "logs",
		},
		Model: ModelConfig{
			Model:          DefaultModel,
			EmbeddingModel: DefaultEmbeddingModel,
		},
		Memory: MemoryConfig{
			Store:       MemoryStoreSqlite,
			DBPath:      DefaultMemoryDBPath,
			SearchLimit: 3,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			StartPort:    8000,
			PortAttempts: 100,
			UIDir:        DefaultUIDir,
		},
		Crew: CrewConfig{
			HistoryLimit: 20,
		},
	}
}

func NewConfig(testing bool) (*Config, error) {
	conf := Default()

	if err := resolveConfig(&conf.Log, testing); err != nil {
		return nil, err
	}
	if err := resolveConfig(&conf.Model, testing); err != nil {
		return nil, err
	}
	if err := resolveConfig(&conf.Memory, testing); err != nil {
		return nil, err
	}
	if err := resolveConfig(&conf.Server, testing); err != nil {
		return nil, err
	}
	if err := resolveConfig(&conf.Crew, testing); err != nil {
		return nil, err
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	switch c.Memory.Store {
	case MemoryStoreSqlite, MemoryStoreInMemory:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown memory store %q", c.Memory.Store)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Wrapf(errors.ErrInvalidConfig, "invalid port %d", c.Server.Port)
	}
	if c.Server.Port == 0 && c.Server.PortAttempts <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "port attempts must be positive")
	}
	if c.Crew.HistoryLimit < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "history limit must not be negative")
	}
	return nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*Config, error) {
		return NewConfig(c.Env == din.EnvTest)
	})
}

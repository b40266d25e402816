package genkit

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/config"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/genkit/plugins/anthropic"
	"github.com/habiliai/agenteat/internal/genkit/plugins/groq"
	"github.com/habiliai/agenteat/internal/genkit/plugins/openai"
	"github.com/habiliai/agenteat/internal/mylog"
	"github.com/jcooky/go-din"
)

// NewGenkit enables one plugin per configured API key. The default model
// must belong to an enabled provider.
func NewGenkit(ctx context.Context, conf *config.ModelConfig, logger *slog.Logger, traceVerbose bool) (*genkit.Genkit, error) {
	var (
		plugins   []genkit.Plugin
		providers []string
	)
	if conf.OpenAIAPIKey != "" {
		plugins = append(plugins, &openai.Plugin{APIKey: conf.OpenAIAPIKey})
		providers = append(providers, "openai")
	}
	if conf.GroqAPIKey != "" {
		plugins = append(plugins, &groq.Plugin{APIKey: conf.GroqAPIKey})
		providers = append(providers, "groq")
	}
	if conf.AnthropicAPIKey != "" {
		plugins = append(plugins, &anthropic.Plugin{APIKey: conf.AnthropicAPIKey})
		providers = append(providers, "anthropic")
	}

	var defaultModel string
	if provider, _, ok := strings.Cut(conf.Model, "/"); ok && slices.Contains(providers, provider) {
		defaultModel = conf.Model
	} else {
		logger.Warn("default model provider is not configured", slog.String("model", conf.Model))
	}

	var (
		g   *genkit.Genkit
		err error
	)
	if defaultModel != "" {
		g, err = genkit.Init(ctx, genkit.WithPlugins(plugins...), genkit.WithDefaultModel(defaultModel))
	} else {
		g, err = genkit.Init(ctx, genkit.WithPlugins(plugins...))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to init genkit")
	}

	genkit.RegisterSpanProcessor(g, &loggingSpanProcessor{
		verbose: traceVerbose,
		logger:  logger,
	})

	return g, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*genkit.Genkit, error) {
		conf := din.MustGetT[*config.Config](c)
		logger := din.MustGetT[*mylog.Logger](c)

		return NewGenkit(c, &conf.Model, logger, conf.Log.TraceVerbose)
	})
}

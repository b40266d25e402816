package anthropic

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/internal/genkit/plugins/internal/config"
)

const (
	provider    = "anthropic"
	labelPrefix = "Anthropic"
	apiKeyEnv   = "ANTHROPIC_API_KEY"
)

var (
	// model name exposed to genkit -> API model id
	knownModels = map[string]string{
		"claude-4-sonnet":   "claude-sonnet-4-20250514",
		"claude-3.7-sonnet": "claude-3-7-sonnet-latest",
		"claude-3.5-sonnet": "claude-3-5-sonnet-latest",
		"claude-3.5-haiku":  "claude-3-5-haiku-latest",
	}
	defaultRequestTimeout = 10 * time.Minute
)

type Plugin struct {
	// The API key to access the service for Anthropic.
	// If empty, the values of the environment variables ANTHROPIC_API_KEY will be consulted.
	APIKey string

	// The timeout for requests to the Anthropic API.
	// If empty, the default timeout of 10 minutes will be used.
	RequestTimeout time.Duration
}

var (
	_ genkit.Plugin = (*Plugin)(nil)
)

// Name implements genkit.Plugin.
func (o *Plugin) Name() string {
	return provider
}

// Init implements genkit.Plugin.
func (o *Plugin) Init(_ context.Context, g *genkit.Genkit) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%s.Init: %w", provider, err)
		}
	}()

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv)
		if apiKey == "" {
			return fmt.Errorf("Anthropic API key not found in environment variable: %s", apiKeyEnv)
		}
	}

	if o.RequestTimeout == 0 {
		o.RequestTimeout = defaultRequestTimeout
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(o.RequestTimeout),
	)

	for name, apiName := range knownModels {
		DefineModel(g, &client, labelPrefix, provider, name, apiName, config.Multimodal)
	}

	return nil
}

// Model returns the [ai.Model] with the given name.
// It returns nil if the model was not defined.
func Model(g *genkit.Genkit, name string) ai.Model {
	return genkit.LookupModel(g, provider, name)
}

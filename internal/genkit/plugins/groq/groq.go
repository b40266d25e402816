package groq

import (
	"context"
	"fmt"
	"os"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/internal/genkit/plugins/internal/config"
	"github.com/habiliai/agenteat/internal/genkit/plugins/internal/openaiapi"
	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	provider    = "groq"
	labelPrefix = "Groq"
	apiKeyEnv   = "GROQ_API_KEY"
	baseUrl     = "https://api.groq.com/openai/v1"
)

var (
	knownCaps = map[string]ai.ModelSupports{
		"llama-3.3-70b-versatile":       config.BasicText,
		"llama-3.1-8b-instant":          config.BasicText,
		"gemma2-9b-it":                  config.BasicText,
		"deepseek-r1-distill-llama-70b": config.BasicText,
	}
)

// Plugin serves Groq models through its OpenAI-compatible endpoint.
type Plugin struct {
	// If empty, the values of the environment variables GROQ_API_KEY will be consulted.
	APIKey  string
	BaseURL string
}

var (
	_ genkit.Plugin = (*Plugin)(nil)
)

func (o *Plugin) Name() string {
	return provider
}

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
			return fmt.Errorf("Groq API key not found in environment variable: %s", apiKeyEnv)
		}
	}

	url := o.BaseURL
	if url == "" {
		url = baseUrl
	}
	client := goopenai.NewClient(
		option.WithBaseURL(url),
		option.WithAPIKey(apiKey),
	)

	for model, caps := range knownCaps {
		openaiapi.DefineModel(g, &client, labelPrefix, provider, model, caps)
	}

	return nil
}

func Model(g *genkit.Genkit, name string) ai.Model {
	return genkit.LookupModel(g, provider, name)
}

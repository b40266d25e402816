package config

import "github.com/firebase/genkit/go/ai"

var (
	BasicText = ai.ModelSupports{
		Multiturn:  true,
		Tools:      true,
		SystemRole: true,
		Media:      false,
	}

	Multimodal = ai.ModelSupports{
		Multiturn:  true,
		Tools:      true,
		SystemRole: true,
		Media:      true,
	}
)

// GenerationReasoningConfig extends the common config with the reasoning
// effort accepted by OpenAI-compatible reasoning models. Temperature shadows
// the embedded field so an explicit zero survives decoding.
type GenerationReasoningConfig struct {
	ai.GenerationCommonConfig
	Temperature     *float64 `json:"temperature,omitempty"`
	ReasoningEffort string   `json:"reasoningEffort,omitempty"`
}

package openaiapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/habiliai/agenteat/internal/genkit/plugins/internal/config"
	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

func convertRequest(model string, input *ai.ModelRequest) (goopenai.ChatCompletionNewParams, error) {
	messages, err := convertMessages(input.Messages)
	if err != nil {
		return goopenai.ChatCompletionNewParams{}, err
	}

	params := goopenai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if tools := convertTools(input.Tools); len(tools) > 0 {
		params.Tools = tools
	}

	if input.Config != nil {
		jsonBytes, err := json.Marshal(input.Config)
		if err != nil {
			return goopenai.ChatCompletionNewParams{}, err
		}

		var c config.GenerationReasoningConfig
		if err := json.Unmarshal(jsonBytes, &c); err == nil {
			if c.MaxOutputTokens != 0 {
				params.MaxTokens = goopenai.Int(int64(c.MaxOutputTokens))
			}
			if len(c.StopSequences) > 0 {
				params.Stop = goopenai.ChatCompletionNewParamsStopUnion{
					OfStringArray: c.StopSequences,
				}
			}
			if c.Temperature != nil {
				params.Temperature = goopenai.Float(*c.Temperature)
			}
			if c.TopP != 0 {
				params.TopP = goopenai.Float(c.TopP)
			}
			if c.ReasoningEffort != "" {
				params.ReasoningEffort = shared.ReasoningEffort(c.ReasoningEffort)
			}
		}
	}

	if input.Output != nil && input.Output.Format != "" {
		switch input.Output.Format {
		case ai.OutputFormatJSON:
			params.ResponseFormat = goopenai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		case ai.OutputFormatText:
			params.ResponseFormat = goopenai.ChatCompletionNewParamsResponseFormatUnion{
				OfText: &shared.ResponseFormatTextParam{},
			}
		default:
			return goopenai.ChatCompletionNewParams{}, fmt.Errorf("unknown output format in a request: %s", input.Output.Format)
		}
	}

	return params, nil
}

func convertMessages(messages []*ai.Message) ([]goopenai.ChatCompletionMessageParamUnion, error) {
	var msgs []goopenai.ChatCompletionMessageParamUnion

	for _, m := range messages {
		switch m.Role {
		case ai.RoleSystem:
			msgs = append(msgs, goopenai.SystemMessage(textOf(m.Content)))
		case ai.RoleUser:
			var parts []goopenai.ChatCompletionContentPartUnionParam
			for _, p := range m.Content {
				part, err := convertPart(p)
				if err != nil {
					return nil, err
				}
				parts = append(parts, part)
			}
			msgs = append(msgs, goopenai.UserMessage(parts))
		case ai.RoleModel:
			toolCalls, err := convertToolCalls(m.Content)
			if err != nil {
				return nil, err
			}
			am := &goopenai.ChatCompletionAssistantMessageParam{}
			if text := textOf(m.Content); text != "" {
				am.Content.OfString = goopenai.String(text)
			}
			if len(toolCalls) > 0 {
				am.ToolCalls = toolCalls
			}
			msgs = append(msgs, goopenai.ChatCompletionMessageParamUnion{OfAssistant: am})
		case ai.RoleTool:
			for _, p := range m.Content {
				if !p.IsToolResponse() {
					continue
				}
				output, err := json.Marshal(p.ToolResponse.Output)
				if err != nil {
					return nil, err
				}
				msgs = append(msgs, goopenai.ToolMessage(string(output), toolCallID(p.ToolResponse.Ref, p.ToolResponse.Name)))
			}
		default:
			return nil, fmt.Errorf("unknown OpenAI role %s", m.Role)
		}
	}

	return msgs, nil
}

func textOf(parts []*ai.Part) string {
	var sb strings.Builder
	for _, p := range parts {
		if p.IsText() {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// toolCallID pairs tool requests with responses. Models that omit call ids
// fall back to the tool name.
func toolCallID(ref, name string) string {
	if ref != "" {
		return ref
	}
	return name
}

func convertPart(part *ai.Part) (goopenai.ChatCompletionContentPartUnionParam, error) {
	switch {
	case part.IsText():
		return goopenai.ChatCompletionContentPartUnionParam{
			OfText: &goopenai.ChatCompletionContentPartTextParam{
				Text: part.Text,
			},
		}, nil
	case part.IsMedia():
		return goopenai.ChatCompletionContentPartUnionParam{
			OfImageURL: &goopenai.ChatCompletionContentPartImageParam{
				ImageURL: goopenai.ChatCompletionContentPartImageImageURLParam{
					URL:    part.Text,
					Detail: "auto",
				},
			},
		}, nil
	default:
		return goopenai.ChatCompletionContentPartUnionParam{}, fmt.Errorf("unknown part type in a request: %#v", part)
	}
}

func convertToolCalls(content []*ai.Part) ([]goopenai.ChatCompletionMessageToolCallParam, error) {
	var toolCalls []goopenai.ChatCompletionMessageToolCallParam
	for _, p := range content {
		if !p.IsToolRequest() {
			continue
		}

		// OpenAI requires arguments even when the tool takes none.
		args := "{}"
		if p.ToolRequest.Input != nil {
			raw, err := json.Marshal(p.ToolRequest.Input)
			if err != nil {
				return nil, err
			}
			args = string(raw)
		}

		toolCalls = append(toolCalls, goopenai.ChatCompletionMessageToolCallParam{
			ID: toolCallID(p.ToolRequest.Ref, p.ToolRequest.Name),
			Function: goopenai.ChatCompletionMessageToolCallFunctionParam{
				Name:      p.ToolRequest.Name,
				Arguments: args,
			},
		})
	}
	return toolCalls, nil
}

func convertTools(inTools []*ai.ToolDefinition) []goopenai.ChatCompletionToolParam {
	var tools []goopenai.ChatCompletionToolParam
	for _, t := range inTools {
		tools = append(tools, goopenai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: goopenai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.InputSchema),
			},
		})
	}
	return tools
}

package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/internal/genkit/plugins/internal/config"
)

const defaultMaxOutputTokens = 4096

// DefineModel creates and registers a new generative model with Genkit.
func DefineModel(g *genkit.Genkit, client *anthropic.Client, labelPrefix, provider, modelName, apiModelName string, caps ai.ModelSupports) ai.Model {
	meta := &ai.ModelInfo{
		Label:    labelPrefix + " - " + modelName,
		Supports: &caps,
	}

	return genkit.DefineModel(
		g,
		provider,
		modelName,
		meta,
		func(ctx context.Context, req *ai.ModelRequest, cb core.StreamCallback[*ai.ModelResponseChunk]) (*ai.ModelResponse, error) {
			if cb == nil {
				return generate(ctx, client, req, apiModelName)
			}
			return generateStream(ctx, client, req, apiModelName, cb)
		},
	)
}

func generate(ctx context.Context, client *anthropic.Client, genRequest *ai.ModelRequest, apiModelName string) (*ai.ModelResponse, error) {
	params, err := buildMessageParams(genRequest, apiModelName)
	if err != nil {
		return nil, err
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message generation failed: %w", err)
	}

	r := translateResponse(*resp)
	r.Request = genRequest
	return r, nil
}

func generateStream(ctx context.Context, client *anthropic.Client, genRequest *ai.ModelRequest, apiModelName string, cb core.StreamCallback[*ai.ModelResponseChunk]) (*ai.ModelResponse, error) {
	params, err := buildMessageParams(genRequest, apiModelName)
	if err != nil {
		return nil, err
	}

	stream := client.Messages.NewStreaming(ctx, params)

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("error accumulating message: %w", err)
		}

		if event, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if delta, ok := event.Delta.AsAny().(anthropic.TextDelta); ok {
				chunk := &ai.ModelResponseChunk{
					Content: []*ai.Part{ai.NewTextPart(delta.Text)},
				}
				if err := cb(ctx, chunk); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic streaming error: %w", err)
	}

	r := translateResponse(message)
	r.Request = genRequest
	return r, nil
}

func buildMessageParams(genRequest *ai.ModelRequest, apiModelName string) (anthropic.MessageNewParams, error) {
	messages, systems, err := convertMessages(genRequest.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(apiModelName),
		Messages:  messages,
		MaxTokens: defaultMaxOutputTokens,
	}

	for _, system := range systems {
		if strings.TrimSpace(system) == "" {
			continue
		}
		params.System = append(params.System, anthropic.TextBlockParam{
			Text: system,
		})
	}

	if genRequest.Config != nil {
		jsonBytes, err := json.Marshal(genRequest.Config)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}

		var cfg config.GenerationReasoningConfig
		if err := json.Unmarshal(jsonBytes, &cfg); err != nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}

		if cfg.MaxOutputTokens > 0 {
			params.MaxTokens = int64(cfg.MaxOutputTokens)
		}
		if cfg.Temperature != nil {
			params.Temperature = anthropic.Float(*cfg.Temperature)
		}
		if cfg.TopP > 0 {
			params.TopP = anthropic.Float(cfg.TopP)
		}
		if cfg.TopK > 0 {
			params.TopK = anthropic.Int(int64(cfg.TopK))
		}
		if len(cfg.StopSequences) > 0 {
			params.StopSequences = cfg.StopSequences
		}
	}

	for _, tool := range genRequest.Tools {
		params.Tools = append(params.Tools, convertTool(tool))
	}

	return params, nil
}

func convertMessages(messages []*ai.Message) ([]anthropic.MessageParam, []string, error) {
	var systems []string
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		var role anthropic.MessageParamRole
		switch msg.Role {
		case ai.RoleUser, ai.RoleTool:
			role = anthropic.MessageParamRoleUser
		case ai.RoleModel:
			role = anthropic.MessageParamRoleAssistant
		case ai.RoleSystem:
			for _, part := range msg.Content {
				if part.IsText() && part.Text != "" {
					systems = append(systems, part.Text)
				}
			}
			continue
		default:
			return nil, nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}

		content, err := convertContent(msg.Content)
		if err != nil {
			return nil, nil, err
		}

		anthropicMessages = append(anthropicMessages, anthropic.MessageParam{
			Role:    role,
			Content: content,
		})
	}

	return anthropicMessages, systems, nil
}

func convertContent(parts []*ai.Part) ([]anthropic.ContentBlockParamUnion, error) {
	var blocks []anthropic.ContentBlockParamUnion

	for _, part := range parts {
		switch {
		case part.IsText():
			blocks = append(blocks, anthropic.NewTextBlock(part.Text))
		case part.IsToolRequest():
			toolReq := part.ToolRequest

			inputMsg := json.RawMessage("{}")
			if toolReq.Input != nil {
				inputJSON, err := json.Marshal(toolReq.Input)
				if err != nil {
					return nil, fmt.Errorf("failed to marshal tool input: %w", err)
				}
				inputMsg = inputJSON
			}

			blocks = append(blocks, anthropic.NewToolUseBlock(toolReq.Ref, inputMsg, toolReq.Name))
		case part.IsToolResponse():
			toolResp := part.ToolResponse

			var content string
			switch v := toolResp.Output.(type) {
			case string:
				content = v
			default:
				jsonBytes, err := json.Marshal(v)
				if err != nil {
					return nil, fmt.Errorf("failed to marshal tool output: %w", err)
				}
				content = string(jsonBytes)
			}

			blocks = append(blocks, anthropic.NewToolResultBlock(toolResp.Ref, content, false))
		default:
			return nil, fmt.Errorf("unsupported part type: %#v", part)
		}
	}

	return blocks, nil
}

func convertTool(tool *ai.ToolDefinition) anthropic.ToolUnionParam {
	inputSchema := anthropic.ToolInputSchemaParam{
		Properties: tool.InputSchema["properties"],
	}
	if required, ok := tool.InputSchema["required"]; ok {
		inputSchema.ExtraFields = map[string]any{
			"required": required,
		}
	}

	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
			InputSchema: inputSchema,
		},
	}
}

func translateResponse(resp anthropic.Message) *ai.ModelResponse {
	r := &ai.ModelResponse{}

	m := &ai.Message{
		Role: ai.RoleModel,
	}
	for _, content := range resp.Content {
		switch block := content.AsAny().(type) {
		case anthropic.TextBlock:
			m.Content = append(m.Content, ai.NewTextPart(block.Text))
		case anthropic.ToolUseBlock:
			m.Content = append(m.Content, ai.NewToolRequestPart(&ai.ToolRequest{
				Ref:   block.ID,
				Name:  block.Name,
				Input: json.RawMessage(block.Input),
			}))
		}
	}
	r.Message = m

	switch resp.StopReason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence, anthropic.StopReasonToolUse:
		r.FinishReason = ai.FinishReasonStop
	case anthropic.StopReasonMaxTokens:
		r.FinishReason = ai.FinishReasonLength
	default:
		if resp.StopReason != "" {
			r.FinishReason = ai.FinishReasonOther
		}
	}

	if resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0 {
		r.Usage = &ai.GenerationUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		}
	}
	r.Custom = resp

	return r
}

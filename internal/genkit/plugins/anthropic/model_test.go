package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/firebase/genkit/go/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageParams(t *testing.T) {
	params, err := buildMessageParams(&ai.ModelRequest{
		Messages: []*ai.Message{
			ai.NewSystemTextMessage("You are Agent Eat."),
			ai.NewUserTextMessage("I want sushi"),
			{
				Role: ai.RoleModel,
				Content: []*ai.Part{ai.NewToolRequestPart(&ai.ToolRequest{
					Ref:   "toolu_1",
					Name:  "FoodSearch",
					Input: map[string]any{"keywords": "sushi", "postal_code": "E1 6AN"},
				})},
			},
			{
				Role: ai.RoleTool,
				Content: []*ai.Part{ai.NewToolResponsePart(&ai.ToolResponse{
					Ref:    "toolu_1",
					Name:   "FoodSearch",
					Output: []map[string]any{{"name": "Salmon Sushi Set"}},
				})},
			},
		},
		Config: &ai.GenerationCommonConfig{Temperature: 0.5},
		Tools: []*ai.ToolDefinition{{
			Name:        "FoodSearch",
			Description: "Search for food",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"keywords": map[string]any{"type": "string"}},
				"required":   []string{"keywords"},
			},
		}},
	}, "claude-3-5-haiku-latest")
	require.NoError(t, err)

	assert.Equal(t, anthropic.Model("claude-3-5-haiku-latest"), params.Model)
	assert.Equal(t, int64(defaultMaxOutputTokens), params.MaxTokens)
	assert.InDelta(t, 0.5, params.Temperature.Value, 1e-9)
	require.Len(t, params.System, 1)
	assert.Equal(t, "You are Agent Eat.", params.System[0].Text)

	require.Len(t, params.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, params.Messages[1].Role)
	require.NotNil(t, params.Messages[1].Content[0].OfToolUse)
	assert.Equal(t, "toolu_1", params.Messages[1].Content[0].OfToolUse.ID)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[2].Role)
	require.NotNil(t, params.Messages[2].Content[0].OfToolResult)
	assert.Equal(t, "toolu_1", params.Messages[2].Content[0].OfToolResult.ToolUseID)

	require.Len(t, params.Tools, 1)
	require.NotNil(t, params.Tools[0].OfTool)
	assert.Equal(t, "FoodSearch", params.Tools[0].OfTool.Name)
	raw, err := json.Marshal(params.Tools[0].OfTool.InputSchema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"required":["keywords"]`)
}

func TestBuildMessageParamsZeroTemperature(t *testing.T) {
	params, err := buildMessageParams(&ai.ModelRequest{
		Messages: []*ai.Message{ai.NewUserTextMessage("I want sushi")},
		Config:   map[string]any{"temperature": 0, "maxOutputTokens": 256},
	}, "claude-3-5-haiku-latest")
	require.NoError(t, err)

	assert.True(t, params.Temperature.Valid())
	assert.Zero(t, params.Temperature.Value)
	assert.Equal(t, int64(256), params.MaxTokens)
}

func TestTranslateResponse(t *testing.T) {
	var msg anthropic.Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Let me look that up."},
			{"type": "tool_use", "id": "toolu_2", "name": "SearchRestaurants", "input": {"cuisine": "chinese"}}
		],
		"usage": {"input_tokens": 12, "output_tokens": 8}
	}`), &msg))

	resp := translateResponse(msg)
	assert.Equal(t, ai.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 20, resp.Usage.TotalTokens)
	require.Len(t, resp.Message.Content, 2)
	assert.Equal(t, "Let me look that up.", resp.Message.Content[0].Text)
	require.True(t, resp.Message.Content[1].IsToolRequest())
	assert.Equal(t, "SearchRestaurants", resp.Message.Content[1].ToolRequest.Name)
	assert.Equal(t, "toolu_2", resp.Message.Content[1].ToolRequest.Ref)
}

package openaiapi

import (
	"encoding/json"
	"testing"

	"github.com/firebase/genkit/go/ai"
	goopenai "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMessages(t *testing.T) {
	msgs, err := convertMessages([]*ai.Message{
		ai.NewSystemTextMessage("you are a food ordering assistant"),
		ai.NewUserTextMessage("find me pizza"),
		{
			Role: ai.RoleModel,
			Content: []*ai.Part{ai.NewToolRequestPart(&ai.ToolRequest{
				Name:  "FoodSearch",
				Input: json.RawMessage(`{"keywords":"pizza","postal_code":"SW1A"}`),
				Ref:   "call_1234",
			})},
		},
		{
			Role: ai.RoleTool,
			Content: []*ai.Part{ai.NewToolResponsePart(&ai.ToolResponse{
				Ref:    "call_1234",
				Name:   "FoodSearch",
				Output: map[string]any{"name": "Margherita Pizza"},
			})},
		},
		ai.NewModelTextMessage("I found a Margherita Pizza."),
	})
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	require.NotNil(t, msgs[0].OfSystem)
	assert.Equal(t, "you are a food ordering assistant", msgs[0].OfSystem.Content.OfString.Value)

	require.NotNil(t, msgs[1].OfUser)
	require.Len(t, msgs[1].OfUser.Content.OfArrayOfContentParts, 1)
	assert.Equal(t, "find me pizza", msgs[1].OfUser.Content.OfArrayOfContentParts[0].OfText.Text)

	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	call := msgs[2].OfAssistant.ToolCalls[0]
	assert.Equal(t, "call_1234", call.ID)
	assert.Equal(t, "FoodSearch", call.Function.Name)
	assert.JSONEq(t, `{"keywords":"pizza","postal_code":"SW1A"}`, call.Function.Arguments)

	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "call_1234", msgs[3].OfTool.ToolCallID)
	assert.JSONEq(t, `{"name":"Margherita Pizza"}`, msgs[3].OfTool.Content.OfString.Value)

	require.NotNil(t, msgs[4].OfAssistant)
	assert.Equal(t, "I found a Margherita Pizza.", msgs[4].OfAssistant.Content.OfString.Value)
}

func TestConvertToolCallWithoutInput(t *testing.T) {
	calls, err := convertToolCalls([]*ai.Part{ai.NewToolRequestPart(&ai.ToolRequest{Name: "PayOrder"})})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "PayOrder", calls[0].ID)
	assert.Equal(t, "{}", calls[0].Function.Arguments)
}

func TestConvertRequest(t *testing.T) {
	req, err := convertRequest("gpt-4o-mini", &ai.ModelRequest{
		Messages: []*ai.Message{ai.NewUserTextMessage("hi")},
		Config: &ai.GenerationCommonConfig{
			MaxOutputTokens: 512,
			Temperature:     0.2,
			StopSequences:   []string{"END"},
		},
		Tools: []*ai.ToolDefinition{{
			Name:        "CalculateTotal",
			Description: "Calculate the total price for the items in the cart.",
			InputSchema: map[string]any{"type": "object"},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, int64(512), req.MaxTokens.Value)
	assert.InDelta(t, 0.2, req.Temperature.Value, 1e-9)
	assert.Equal(t, []string{"END"}, req.Stop.OfStringArray)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "CalculateTotal", req.Tools[0].Function.Name)
	assert.Equal(t, "object", req.Tools[0].Function.Parameters["type"])

	req, err = convertRequest("gpt-4o-mini", &ai.ModelRequest{
		Messages: []*ai.Message{ai.NewUserTextMessage("hi")},
		Config:   map[string]any{"temperature": 0},
	})
	require.NoError(t, err)
	assert.True(t, req.Temperature.Valid())
	assert.Zero(t, req.Temperature.Value)

	req, err = convertRequest("gpt-4o-mini", &ai.ModelRequest{
		Messages: []*ai.Message{ai.NewUserTextMessage("hi")},
	})
	require.NoError(t, err)
	assert.False(t, req.Temperature.Valid())

	_, err = convertRequest("gpt-4o-mini", &ai.ModelRequest{
		Messages: []*ai.Message{{Role: "unknown"}},
	})
	assert.Error(t, err)
}

func TestTranslateResponse(t *testing.T) {
	var completion goopenai.ChatCompletion
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 0,
		"model": "gpt-4o-mini",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "AddToCart", "arguments": "{\"restaurant_name\":\"Xin Kai\"}"}
				}]
			}
		}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`), &completion))

	resp := translateResponse(&completion, false)
	assert.Equal(t, ai.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	require.Len(t, resp.Message.Content, 1)
	part := resp.Message.Content[0]
	require.True(t, part.IsToolRequest())
	assert.Equal(t, "AddToCart", part.ToolRequest.Name)
	assert.Equal(t, "call_1", part.ToolRequest.Ref)

	completion.Choices[0].Message.ToolCalls = nil
	completion.Choices[0].Message.Content = "Added to cart."
	completion.Choices[0].FinishReason = "length"
	resp = translateResponse(&completion, false)
	assert.Equal(t, ai.FinishReasonLength, resp.FinishReason)
	assert.Equal(t, "Added to cart.", resp.Text())
}

package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "Fusion is a nuclear process.",
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	assert.Equal(t, "Fusion is a nuclear process.", result.Content)
	assert.Empty(t, result.ToolCalls)
}

func TestConvertResponseMessage_WithToolCalls(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role: "assistant",
		ToolCalls: []openai.ToolCall{
			{
				ID:   "call_123",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "wikipedia",
					Arguments: `{"query":"nuclear fusion"}`,
				},
			},
		},
	}

	result := convertResponseMessage(msg)

	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_123", result.ToolCalls[0].ID)
	assert.Equal(t, "wikipedia", result.ToolCalls[0].Name)
	assert.Equal(t, `{"query":"nuclear fusion"}`, result.ToolCalls[0].Arguments)
}

func TestConvertMessages_ToolRoundTrip(t *testing.T) {
	messages := []entity.Message{
		entity.UserMessage("fusion"),
		{
			Role:      entity.RoleAssistant,
			ToolCalls: []entity.ToolCall{{ID: "c1", Name: "wikipedia", Arguments: `{"query":"fusion"}`}},
		},
		{Role: entity.RoleTool, ToolCallID: "c1", Name: "wikipedia", Content: "Page: Nuclear fusion"},
	}

	result := convertMessages(messages)

	require.Len(t, result, 3)
	assert.Equal(t, "user", result[0].Role)
	assert.Equal(t, openai.ToolTypeFunction, result[1].ToolCalls[0].Type)
	assert.Equal(t, "c1", result[2].ToolCallID)
	assert.Equal(t, "wikipedia", result[2].Name)
}

func TestAdapter_ChatAgainstServer(t *testing.T) {
	var received openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Answer: 42"}},
			},
		})
	}))
	defer server.Close()

	cfg := DefaultConfig("test-key", "llama3.2")
	cfg.BaseURL = server.URL
	cfg.Logger = logger.NewNop()
	adapter := NewAdapter(cfg)

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages:    []entity.Message{entity.SystemMessage("be brief"), entity.UserMessage("meaning of life")},
		Tools:       []entity.ToolDefinition{{Name: "wikipedia", Description: "lookup", Parameters: map[string]interface{}{"type": "object"}}},
		Temperature: 0.5,
		Stop:        []string{"\nObservation:"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Answer: 42", resp.Message.Content)
	assert.Equal(t, "llama3.2", received.Model)
	assert.InDelta(t, 0.5, received.Temperature, 1e-6)
	assert.Equal(t, []string{"\nObservation:"}, received.Stop)
	require.Len(t, received.Tools, 1)
	assert.Equal(t, "wikipedia", received.Tools[0].Function.Name)
}

func TestAdapter_ChatEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig("test-key", "llama3.2")
	cfg.BaseURL = server.URL
	adapter := NewAdapter(cfg)

	_, err := adapter.Chat(context.Background(), output.ChatRequest{Messages: []entity.Message{entity.UserMessage("hi")}})
	assert.Error(t, err)
}

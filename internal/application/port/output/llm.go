package output

import (
	"context"

	"research-agent/internal/domain/entity"
)

// LLMPort is a single chat-completion call. Implementations return an error
// only when the call itself fails (transport, timeout, empty choice list).
type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Tools       []entity.ToolDefinition
	Temperature float32

	// Stop ends generation early, used by the text protocol so the model does
	// not invent its own observations.
	Stop []string
}

type ChatResponse struct {
	Message entity.Message
}

package langchain

import (
	"context"
	"fmt"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

var _ output.LLMPort = (*Adapter)(nil)

// contentGenerator is the part of llms.Model the adapter needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Adapter serves chat requests through a langchaingo model. It carries no
// native tool schema, so it is paired with the text (ReAct) protocol.
type Adapter struct {
	model   contentGenerator
	timeout time.Duration
	logger  output.LoggerPort
}

type Config struct {
	ServerURL string
	Model     string
	Timeout   time.Duration
	Logger    output.LoggerPort
}

func NewOllamaAdapter(cfg Config) (*Adapter, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewAdapter(llm, cfg.Timeout, cfg.Logger), nil
}

func NewAdapter(model contentGenerator, timeout time.Duration, logger output.LoggerPort) *Adapter {
	return &Adapter{model: model, timeout: timeout, logger: logger}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if len(req.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(req.Stop))
	}

	start := time.Now()
	resp, err := a.model.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	if a.logger != nil {
		a.logger.Debug("LLM response", "elapsed", time.Since(start), "contentLen", len(resp.Choices[0].Content))
	}

	return &output.ChatResponse{
		Message: entity.Message{
			Role:    entity.RoleAssistant,
			Content: resp.Choices[0].Content,
		},
	}, nil
}

func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case entity.RoleAssistant:
			content := msg.Content
			for _, tc := range msg.ToolCalls {
				content += fmt.Sprintf("\nAction: %s\nAction Input: %s", tc.Name, tc.Arguments)
			}
			result = append(result, llms.TextParts(llms.ChatMessageTypeAI, content))
		case entity.RoleTool:
			result = append(result, llms.TextParts(llms.ChatMessageTypeHuman, "Observation: "+msg.Content))
		default:
			result = append(result, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		}
	}
	return result
}

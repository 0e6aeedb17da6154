package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/prompts"
)

const DefaultTemperature = 0.3

var ErrEmptySynthesis = errors.New("synthesis returned empty output")

type Config struct {
	Temperature    float32
	SystemPrompt   string
	InputTemplate  string
	ReportTemplate string
}

// Synthesizer merges both branch outputs with a single tool-less model call
// and renders the labeled report.
type Synthesizer struct {
	cfg    Config
	llm    output.LLMPort
	logger output.LoggerPort
}

func New(cfg Config, llm output.LLMPort, logger output.LoggerPort) *Synthesizer {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = prompts.SynthesisPrompt
	}
	if cfg.InputTemplate == "" {
		cfg.InputTemplate = prompts.SynthesisInputTemplate
	}
	if cfg.ReportTemplate == "" {
		cfg.ReportTemplate = prompts.ReportTemplate
	}
	return &Synthesizer{
		cfg:    cfg,
		llm:    llm,
		logger: logger.WithField("agent", entity.RoleSynthesis.String()),
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, record entity.CombinedRecord) (entity.Report, error) {
	userInput, err := prompts.GenerateSynthesisInput(s.cfg.InputTemplate, record)
	if err != nil {
		return "", fmt.Errorf("render synthesis input: %w", err)
	}

	resp, err := s.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			entity.SystemMessage(strings.TrimSpace(s.cfg.SystemPrompt)),
			entity.UserMessage(userInput),
		},
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("synthesis llm request failed: %w", err)
	}

	analysis := strings.TrimSpace(resp.Message.Content)
	if analysis == "" {
		return "", ErrEmptySynthesis
	}

	report, err := prompts.GenerateReport(s.cfg.ReportTemplate, record, analysis)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	s.logger.Info("Synthesis completed", "reportLen", len(report))
	return report, nil
}

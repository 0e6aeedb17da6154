package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/logger"
)

type fakeLLM struct {
	content  string
	err      error
	requests []output.ChatRequest
}

func (f *fakeLLM) Chat(_ context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: f.content}}, nil
}

func TestSynthesize_RendersLabeledSections(t *testing.T) {
	llm := &fakeLLM{content: "Both sources agree fusion is promising."}
	s := New(Config{Temperature: DefaultTemperature}, llm, logger.NewNop())

	report, err := s.Synthesize(context.Background(), entity.CombinedRecord{
		ResearchOutput: "Fusion fuses light nuclei.",
		WebOutput:      "ITER reached a milestone.",
	})
	require.NoError(t, err)

	academic := strings.Index(report, "## 🎓 Academic Perspective")
	current := strings.Index(report, "## 🌐 Current Developments")
	disclaimer := strings.Index(report, "Disclaimer:")
	analysis := strings.Index(report, "Both sources agree fusion is promising.")

	require.GreaterOrEqual(t, academic, 0)
	assert.Greater(t, current, academic)
	assert.Greater(t, disclaimer, current)
	assert.Greater(t, analysis, disclaimer)

	academicSection := report[academic:current]
	currentSection := report[current:disclaimer]
	assert.Contains(t, academicSection, "Fusion fuses light nuclei.")
	assert.NotContains(t, academicSection, "ITER reached a milestone.")
	assert.Contains(t, currentSection, "ITER reached a milestone.")
	assert.NotContains(t, currentSection, "Fusion fuses light nuclei.")
}

func TestSynthesize_SingleToollessCall(t *testing.T) {
	llm := &fakeLLM{content: "analysis"}
	s := New(Config{Temperature: 0.3}, llm, logger.NewNop())

	_, err := s.Synthesize(context.Background(), entity.CombinedRecord{ResearchOutput: "r", WebOutput: "w"})
	require.NoError(t, err)

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Empty(t, req.Tools)
	assert.Equal(t, float32(0.3), req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, entity.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "Academic Research: r")
	assert.Contains(t, req.Messages[1].Content, "Current Developments: w")
}

func TestSynthesize_ModelErrorPropagates(t *testing.T) {
	boom := errors.New("timeout")
	s := New(Config{}, &fakeLLM{err: boom}, logger.NewNop())

	_, err := s.Synthesize(context.Background(), entity.CombinedRecord{})
	assert.ErrorIs(t, err, boom)
}

func TestSynthesize_EmptyOutput(t *testing.T) {
	s := New(Config{}, &fakeLLM{content: "  \n"}, logger.NewNop())

	_, err := s.Synthesize(context.Background(), entity.CombinedRecord{ResearchOutput: "r", WebOutput: "w"})
	assert.ErrorIs(t, err, ErrEmptySynthesis)
}

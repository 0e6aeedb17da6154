package tool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/logger"
)

type recordingMetrics struct {
	mu    sync.Mutex
	calls map[entity.ToolName][]error
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{calls: map[entity.ToolName][]error{}}
}

func (m *recordingMetrics) ObserveToolCall(tool entity.ToolName, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[tool] = append(m.calls[tool], err)
}

func (m *recordingMetrics) ObserveRun(string, time.Duration)         {}
func (m *recordingMetrics) ObserveAgent(entity.AgentRole, int, bool) {}

type fakeSource struct {
	out   string
	err   error
	input string
}

func (f *fakeSource) Call(_ context.Context, input string) (string, error) {
	f.input = input
	return f.out, f.err
}

type fakeSearch struct {
	results []entity.SearchResult
	err     error
	query   string
}

func (f *fakeSearch) Search(_ context.Context, query string) ([]entity.SearchResult, error) {
	f.query = query
	return f.results, f.err
}

func TestParseQuery(t *testing.T) {
	cases := map[string]string{
		`{"query": "nuclear fusion"}`: "nuclear fusion",
		`nuclear fusion`:              "nuclear fusion",
		`"nuclear fusion"`:            "nuclear fusion",
		"  `tokamak`  ":               "tokamak",
		`{not json`:                   "{not json",
	}
	for in, want := range cases {
		got, err := parseQuery(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "   ", `{"query": ""}`, `""`} {
		_, err := parseQuery(in)
		assert.ErrorIs(t, err, errEmptyQuery, in)
	}
}

func TestWikipediaTool_Execute(t *testing.T) {
	source := &fakeSource{out: "Page: Nuclear fusion\nSummary: Nuclear fusion is a reaction in which two nuclei combine."}
	metrics := newRecordingMetrics()
	tl := NewWikipediaTool(source, metrics, logger.NewNop())

	out, err := tl.Execute(context.Background(), `{"query": "nuclear fusion"}`)
	require.NoError(t, err)

	assert.Equal(t, "nuclear fusion", source.input)
	assert.Contains(t, out, "two nuclei combine")
	assert.Equal(t, []error{nil}, metrics.calls[entity.ToolWikipedia])
	assert.Equal(t, entity.ToolWikipedia, tl.Name())
}

func TestWikipediaTool_SourceFailure(t *testing.T) {
	boom := errors.New("wikipedia unavailable")
	metrics := newRecordingMetrics()
	tl := NewWikipediaTool(&fakeSource{err: boom}, metrics, logger.NewNop())

	_, err := tl.Execute(context.Background(), "fusion")
	require.Error(t, err)

	var toolErr *entity.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, entity.ToolWikipedia, toolErr.Tool)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, entity.ErrToolFailed)
	require.Len(t, metrics.calls[entity.ToolWikipedia], 1)
	assert.Error(t, metrics.calls[entity.ToolWikipedia][0])
}

func TestWikipediaTool_EmptyArguments(t *testing.T) {
	source := &fakeSource{}
	tl := NewWikipediaTool(source, newRecordingMetrics(), logger.NewNop())

	_, err := tl.Execute(context.Background(), "  ")
	assert.ErrorIs(t, err, entity.ErrToolFailed)
	assert.Empty(t, source.input)
}

func TestWebSearchTool_Execute(t *testing.T) {
	search := &fakeSearch{results: []entity.SearchResult{
		{Title: "ITER milestone", URL: "https://iter.org", Snippet: "First plasma <b>scheduled</b>."},
		{Title: "NIF", Snippet: "Ignition repeated."},
	}}
	tl := NewWebSearchTool(search, newRecordingMetrics(), logger.NewNop())

	out, err := tl.Execute(context.Background(), "fusion 2024")
	require.NoError(t, err)

	assert.Equal(t, "fusion 2024", search.query)
	assert.True(t, strings.HasPrefix(out, "[1] ITER milestone\nSource: https://iter.org"), out)
	assert.Contains(t, out, "First plasma scheduled.")
	assert.Contains(t, out, "[2] NIF\nIgnition repeated.")
	assert.NotContains(t, out, "<b>")
}

func TestWebSearchTool_NoResults(t *testing.T) {
	tl := NewWebSearchTool(&fakeSearch{}, newRecordingMetrics(), logger.NewNop())

	out, err := tl.Execute(context.Background(), "obscure")
	require.NoError(t, err)
	assert.Equal(t, "No web results found for obscure.", out)
}

func TestWebSearchTool_Failure(t *testing.T) {
	tl := NewWebSearchTool(&fakeSearch{err: errors.New("quota")}, newRecordingMetrics(), logger.NewNop())

	_, err := tl.Execute(context.Background(), "q")

	var toolErr *entity.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, entity.ToolWebSearch, toolErr.Tool)
}

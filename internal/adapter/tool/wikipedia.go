package tool

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/tools/wikipedia"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/textclean"
)

var _ output.ToolPort = (*WikipediaTool)(nil)

// Caller is an encyclopedia source. langchaingo's wikipedia.Tool satisfies it.
type Caller interface {
	Call(ctx context.Context, input string) (string, error)
}

type WikipediaTool struct {
	source  Caller
	metrics output.MetricsPort
	logger  output.LoggerPort
}

func NewWikipediaTool(source Caller, metrics output.MetricsPort, logger output.LoggerPort) *WikipediaTool {
	return &WikipediaTool{source: source, metrics: metrics, logger: logger}
}

// NewWikipediaSource builds the langchaingo Wikipedia client. The user agent
// is mandatory for the Wikimedia API.
func NewWikipediaSource(userAgent string) Caller {
	source := wikipedia.New(userAgent)
	return &source
}

func (t *WikipediaTool) Name() entity.ToolName { return entity.ToolWikipedia }

func (t *WikipediaTool) Description() string {
	return "Looks up encyclopedic background on a topic in Wikipedia. Input is a short search query."
}

func (t *WikipediaTool) Parameters() map[string]interface{} {
	return queryParameters("Topic to look up, e.g. \"nuclear fusion\"")
}

func (t *WikipediaTool) Execute(ctx context.Context, arguments string) (string, error) {
	query, err := parseQuery(arguments)
	if err != nil {
		return "", t.fail(err)
	}

	t.logger.Debug("Wikipedia lookup", "query", query)

	result, err := t.source.Call(ctx, query)
	if err != nil {
		return "", t.fail(err)
	}
	t.metrics.ObserveToolCall(entity.ToolWikipedia, nil)

	observation := textclean.CleanObservation(result, nil)
	if strings.TrimSpace(observation) == "" {
		return "No Wikipedia article found for " + query + ".", nil
	}
	return observation, nil
}

func (t *WikipediaTool) fail(err error) error {
	t.metrics.ObserveToolCall(entity.ToolWikipedia, err)
	return &entity.ToolError{Tool: entity.ToolWikipedia, Err: err}
}

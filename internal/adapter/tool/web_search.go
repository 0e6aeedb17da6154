package tool

import (
	"context"
	"fmt"
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/textclean"
)

var _ output.ToolPort = (*WebSearchTool)(nil)

type WebSearchTool struct {
	search  output.SearchPort
	metrics output.MetricsPort
	logger  output.LoggerPort
}

func NewWebSearchTool(search output.SearchPort, metrics output.MetricsPort, logger output.LoggerPort) *WebSearchTool {
	return &WebSearchTool{search: search, metrics: metrics, logger: logger}
}

func (t *WebSearchTool) Name() entity.ToolName { return entity.ToolWebSearch }

func (t *WebSearchTool) Description() string {
	return "Searches the web for recent news and developments. Input is a search query."
}

func (t *WebSearchTool) Parameters() map[string]interface{} {
	return queryParameters("Search query, e.g. \"fusion energy 2024 breakthroughs\"")
}

func (t *WebSearchTool) Execute(ctx context.Context, arguments string) (string, error) {
	query, err := parseQuery(arguments)
	if err != nil {
		return "", t.fail(err)
	}

	t.logger.Debug("Web search", "query", query)

	results, err := t.search.Search(ctx, query)
	if err != nil {
		return "", t.fail(err)
	}
	t.metrics.ObserveToolCall(entity.ToolWebSearch, nil)

	if len(results) == 0 {
		return "No web results found for " + query + ".", nil
	}
	return textclean.CleanObservation(formatResults(results), nil), nil
}

func (t *WebSearchTool) fail(err error) error {
	t.metrics.ObserveToolCall(entity.ToolWebSearch, err)
	return &entity.ToolError{Tool: entity.ToolWebSearch, Err: err}
}

func formatResults(results []entity.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&sb, "\nSource: %s", r.URL)
		}
		if r.Snippet != "" {
			sb.WriteString("\n" + r.Snippet)
		}
	}
	return sb.String()
}

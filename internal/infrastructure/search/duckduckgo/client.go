package duckduckgo

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/tools/duckduckgo"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.SearchPort = (*Client)(nil)

const DefaultMaxResults = 5

// caller is the subset of langchaingo's tools.Tool used here.
type caller interface {
	Call(ctx context.Context, input string) (string, error)
}

// Client searches DuckDuckGo through langchaingo's duckduckgo tool. It needs
// no API key and serves as the fallback web search provider.
type Client struct {
	tool caller
}

func New(maxResults int, userAgent string) (*Client, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	tool, err := duckduckgo.New(maxResults, userAgent)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: init: %w", err)
	}
	return &Client{tool: tool}, nil
}

func newWithCaller(c caller) *Client {
	return &Client{tool: c}
}

func (c *Client) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	raw, err := c.tool.Call(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: search failed: %w", err)
	}
	return parseResults(raw), nil
}

// parseResults splits the tool's "Title:/Description:/URL:" blocks. Output in
// any other shape becomes a single snippet.
func parseResults(raw string) []entity.SearchResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var (
		results []entity.SearchResult
		current *entity.SearchResult
	)
	flush := func() {
		if current != nil && (current.Title != "" || current.Snippet != "" || current.URL != "") {
			results = append(results, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Title:"):
			flush()
			current = &entity.SearchResult{Title: strings.TrimSpace(strings.TrimPrefix(line, "Title:"))}
		case strings.HasPrefix(line, "Description:") && current != nil:
			current.Snippet = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		case strings.HasPrefix(line, "URL:") && current != nil:
			current.URL = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
		}
	}
	flush()

	if len(results) == 0 {
		return []entity.SearchResult{{Snippet: raw}}
	}
	return results
}

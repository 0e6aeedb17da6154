package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.SearchPort = (*Client)(nil)

const (
	DefaultEndpoint   = "https://api.tavily.com/search"
	DefaultMaxResults = 5

	maxBackoff = 30 * time.Second
)

var ErrMissingAPIKey = errors.New("tavily: API key is missing")

type Config struct {
	APIKey     string
	Endpoint   string
	Depth      string
	MaxResults int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     output.LoggerPort
}

// Client calls the Tavily search API.
type Client struct {
	apiKey     string
	endpoint   string
	depth      string
	maxResults int
	client     *http.Client
	logger     output.LoggerPort

	// initialBackoff is the first wait after a 429, doubled on each retry.
	initialBackoff time.Duration
}

func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Depth == "" {
		cfg.Depth = "basic"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		apiKey:         cfg.APIKey,
		endpoint:       cfg.Endpoint,
		depth:          cfg.Depth,
		maxResults:     cfg.MaxResults,
		client:         httpClient,
		logger:         cfg.Logger,
		initialBackoff: time.Second,
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	APIKey     string `json:"api_key"`
	Depth      string `json:"search_depth"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts a query to Tavily. HTTP 429 responses are retried with
// exponential backoff until ctx is done.
func (c *Client) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(searchRequest{
		Query:      query,
		APIKey:     c.apiKey,
		Depth:      c.depth,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: encode request: %w", err)
	}

	var resp *http.Response
	delay := c.initialBackoff
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("tavily: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("tavily: request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		if c.logger != nil {
			c.logger.Warn("Tavily rate limited, backing off", "delay", delay.String())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < maxBackoff {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily: http %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]entity.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, entity.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
		if len(results) >= c.maxResults {
			break
		}
	}
	return results, nil
}

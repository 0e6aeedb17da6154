package di

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"research-agent/internal/adapter/tool"
	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/application/service"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/cache"
	"research-agent/internal/infrastructure/llm/langchain"
	"research-agent/internal/infrastructure/llm/openaicompat"
	"research-agent/internal/infrastructure/logger"
	"research-agent/internal/infrastructure/metrics"
	"research-agent/internal/infrastructure/parser"
	"research-agent/internal/infrastructure/prompts"
	"research-agent/internal/infrastructure/search/duckduckgo"
	"research-agent/internal/infrastructure/search/tavily"
	"research-agent/internal/usecase/coordinator"
	"research-agent/internal/usecase/pipeline"
	"research-agent/internal/usecase/reasoning"
	"research-agent/internal/usecase/synthesis"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	ProtocolNative = "native"
	ProtocolReAct  = "react"

	SearchTavily     = "tavily"
	SearchDuckDuckGo = "duckduckgo"
)

type Container struct {
	Logger   output.LoggerPort
	Metrics  *metrics.Prometheus
	Cache    *cache.ReportCache
	LLM      output.LLMPort
	Research input.AgentExecutor
	Web      input.AgentExecutor
	Pipeline input.ResearchPipeline
}

type Config struct {
	LLMProvider string
	LLMBaseURL  string
	LLMAPIKey   string
	LLMModel    string
	LLMTimeout  time.Duration

	// Protocol selects native function calling or the ReAct text format.
	// Empty picks native for openai and react for ollama.
	Protocol string

	ResearchTemperature  float32
	WebTemperature       float32
	SynthesisTemperature float32
	MaxIterations        int
	HandleParsingErrors  bool

	WebSearchProvider  string
	TavilyAPIKey       string
	WikipediaUserAgent string

	CacheSize        int
	BatchConcurrency int

	LogName   string
	LogLevel  string
	LogToFile bool
}

// ConfigFromEnv reads every setting with its default.
func ConfigFromEnv(env output.ConfigPort) Config {
	return Config{
		LLMProvider: strings.ToLower(env.GetWithDefault("LLM_PROVIDER", ProviderOpenAI)),
		LLMBaseURL:  env.GetWithDefault("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:   env.GetWithDefault("LLM_API_KEY", "ollama"),
		LLMModel:    env.GetWithDefault("LLM_MODEL", "llama3.2:3b-instruct-fp16"),
		LLMTimeout:  env.GetDuration("LLM_TIMEOUT", 120*time.Second),

		Protocol: strings.ToLower(env.Get("AGENT_PROTOCOL")),

		ResearchTemperature:  float32(env.GetFloat("RESEARCH_TEMPERATURE", 0.7)),
		WebTemperature:       float32(env.GetFloat("WEB_TEMPERATURE", 0.5)),
		SynthesisTemperature: float32(env.GetFloat("SYNTHESIS_TEMPERATURE", synthesis.DefaultTemperature)),
		MaxIterations:        env.GetInt("AGENT_MAX_ITERATIONS", reasoning.DefaultMaxIterations),
		HandleParsingErrors:  env.GetBool("HANDLE_PARSING_ERRORS", true),

		WebSearchProvider:  strings.ToLower(env.GetWithDefault("WEB_SEARCH_PROVIDER", SearchTavily)),
		TavilyAPIKey:       env.Get("TAVILY_API_KEY"),
		WikipediaUserAgent: env.GetWithDefault("WIKIPEDIA_USER_AGENT", "research-agent/1.0"),

		CacheSize:        env.GetInt("CACHE_SIZE", cache.DefaultSize),
		BatchConcurrency: env.GetInt("BATCH_CONCURRENCY", 0),

		LogName:   "research",
		LogLevel:  env.GetWithDefault("LOG_LEVEL", "info"),
		LogToFile: env.GetBool("LOG_TO_FILE", false),
	}
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{
		Name:   cfg.LogName,
		Level:  cfg.LogLevel,
		ToFile: cfg.LogToFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c, err := build(cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}
	return c, nil
}

func build(cfg Config, log output.LoggerPort) (*Container, error) {
	m := metrics.NewPrometheus()

	llm, err := newLLM(cfg, log)
	if err != nil {
		return nil, err
	}

	p, err := newParser(cfg)
	if err != nil {
		return nil, err
	}

	search, err := newSearch(cfg, log)
	if err != nil {
		return nil, err
	}

	wiki := tool.NewWikipediaTool(tool.NewWikipediaSource(cfg.WikipediaUserAgent), m, log)
	web := tool.NewWebSearchTool(search, m, log)

	research, err := reasoning.New(reasoning.BranchConfig{
		Role:                entity.RoleResearch,
		SystemPrompt:        prompts.ResearchPrompt,
		Reminder:            prompts.ResearchReminder,
		Temperature:         cfg.ResearchTemperature,
		MaxIterations:       cfg.MaxIterations,
		HandleParsingErrors: cfg.HandleParsingErrors,
	}, llm, service.NewToolRegistry(wiki), p, m, log)
	if err != nil {
		return nil, err
	}

	webAgent, err := reasoning.New(reasoning.BranchConfig{
		Role:                entity.RoleWeb,
		SystemPrompt:        prompts.WebPrompt,
		Reminder:            prompts.WebReminder,
		Temperature:         cfg.WebTemperature,
		MaxIterations:       cfg.MaxIterations,
		HandleParsingErrors: cfg.HandleParsingErrors,
	}, llm, service.NewToolRegistry(web), p, m, log)
	if err != nil {
		return nil, err
	}

	reports := cache.NewReportCache(cfg.CacheSize)

	pipe := pipeline.New(
		pipeline.Config{BatchConcurrency: cfg.BatchConcurrency},
		coordinator.New(research, webAgent, log),
		synthesis.New(synthesis.Config{Temperature: cfg.SynthesisTemperature}, llm, log),
		reports,
		m,
		log,
	)

	log.Info("Container ready",
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
		"protocol", protocolFor(cfg),
		"search", cfg.WebSearchProvider,
	)

	return &Container{
		Logger:   log,
		Metrics:  m,
		Cache:    reports,
		LLM:      llm,
		Research: research,
		Web:      webAgent,
		Pipeline: pipe,
	}, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}

func newLLM(cfg Config, log output.LoggerPort) (output.LLMPort, error) {
	switch cfg.LLMProvider {
	case ProviderOpenAI, "":
		return openaicompat.NewAdapter(openAIConfig(cfg, log)), nil
	case ProviderOllama:
		adapter, err := langchain.NewOllamaAdapter(langchain.Config{
			ServerURL: ollamaServerURL(cfg.LLMBaseURL),
			Model:     cfg.LLMModel,
			Timeout:   cfg.LLMTimeout,
			Logger:    log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// openAIConfig starts from the adapter defaults and applies whatever the
// environment set.
func openAIConfig(cfg Config, log output.LoggerPort) openaicompat.Config {
	c := openaicompat.DefaultConfig(cfg.LLMAPIKey, cfg.LLMModel)
	if cfg.LLMBaseURL != "" {
		c.BaseURL = cfg.LLMBaseURL
	}
	if cfg.LLMTimeout > 0 {
		c.Timeout = cfg.LLMTimeout
	}
	c.Logger = log
	return c
}

// ollamaServerURL strips the OpenAI-compatible /v1 suffix; the native Ollama
// API lives at the server root.
func ollamaServerURL(baseURL string) string {
	return strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1")
}

func protocolFor(cfg Config) string {
	if cfg.Protocol != "" {
		return cfg.Protocol
	}
	if cfg.LLMProvider == ProviderOllama {
		return ProtocolReAct
	}
	return ProtocolNative
}

func newParser(cfg Config) (output.ParserPort, error) {
	switch protocolFor(cfg) {
	case ProtocolNative:
		return parser.Native{}, nil
	case ProtocolReAct:
		return parser.ReAct{}, nil
	default:
		return nil, fmt.Errorf("unknown AGENT_PROTOCOL %q", cfg.Protocol)
	}
}

func newSearch(cfg Config, log output.LoggerPort) (output.SearchPort, error) {
	switch cfg.WebSearchProvider {
	case SearchTavily, "":
		if strings.TrimSpace(cfg.TavilyAPIKey) == "" {
			return nil, errors.New("TAVILY_API_KEY is required when WEB_SEARCH_PROVIDER=tavily")
		}
		return tavily.New(tavily.Config{APIKey: cfg.TavilyAPIKey, Logger: log}), nil
	case SearchDuckDuckGo:
		client, err := duckduckgo.New(duckduckgo.DefaultMaxResults, cfg.WikipediaUserAgent)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown WEB_SEARCH_PROVIDER %q", cfg.WebSearchProvider)
	}
}

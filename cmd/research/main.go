// Command research fans a query out to an encyclopedia agent and a web
// search agent, then synthesizes both answers into one report.
//
// Usage:
//
//	research run "What are the latest developments in fusion energy research?"
//	research batch "query one" "query two"
//	research serve --addr :8080
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/getsentry/sentry-go"

	"research-agent/internal/di"
	"research-agent/internal/infrastructure/env"
	"research-agent/internal/infrastructure/httpapi"
)

// defaultQueries are researched when run is given no arguments.
var defaultQueries = []string{
	"What are the latest developments in fusion energy research?",
	"How is artificial intelligence impacting healthcare diagnostics?",
}

type CLI struct {
	Run   RunCmd   `cmd:"" help:"Research queries one after another and print each report."`
	Batch BatchCmd `cmd:"" help:"Research queries in parallel and print the reports."`
	Serve ServeCmd `cmd:"" help:"Start the HTTP API."`

	LogLevel string `help:"Log level (debug, info, warn, error). Overrides LOG_LEVEL."`
}

type RunCmd struct {
	Queries []string `arg:"" optional:"" help:"Queries to research. Defaults to two demo queries."`
}

func (c *RunCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := setup(cli)
	if err != nil {
		return err
	}
	defer container.Close()

	queries := c.Queries
	if len(queries) == 0 {
		queries = defaultQueries
	}

	var failed int
	for _, query := range queries {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Printf("📝 Query: %s\n", query)

		report, err := container.Pipeline.Run(ctx, query)
		if err != nil {
			failed++
			fmt.Printf("\n❌ Research failed: %v\n", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		fmt.Println("\n🔍 Final Synthesized Result:")
		fmt.Println(report)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(queries))
	}
	return nil
}

type BatchCmd struct {
	Queries []string `arg:"" help:"Queries to research in parallel."`
}

func (c *BatchCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := setup(cli)
	if err != nil {
		return err
	}
	defer container.Close()

	reports := container.Pipeline.RunBatch(ctx, c.Queries)

	queries := make([]string, 0, len(reports))
	for q := range reports {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	for _, query := range queries {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Printf("📝 Query: %s\n\n", query)
		fmt.Println(reports[query])
	}

	if missing := distinct(c.Queries) - len(reports); missing > 0 {
		return fmt.Errorf("%d queries failed, see log for details", missing)
	}
	return nil
}

type ServeCmd struct {
	Addr           string        `help:"Address to listen on." default:":8080"`
	RequestTimeout time.Duration `name:"request-timeout" help:"Upper bound for one research request." default:"10m"`
	JSONLogs       bool          `name:"json-logs" help:"Write request logs as JSON."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := setup(cli)
	if err != nil {
		return err
	}
	defer container.Close()

	srv := httpapi.New(httpapi.Config{
		Addr:           c.Addr,
		RequestTimeout: c.RequestTimeout,
		JSONLogs:       c.JSONLogs,
	}, container.Pipeline, container.Metrics.Handler(), container.Logger)

	fmt.Printf("\n🚀 research server ready on %s\n", c.Addr)
	fmt.Printf("   Research:  POST /v1/research\n")
	fmt.Printf("   Batch:     POST /v1/research/batch\n")
	fmt.Printf("   Metrics:   GET  /metrics\n")

	return srv.ListenAndServe(ctx)
}

func setup(cli *CLI) (*di.Container, error) {
	envService := env.NewEnvService()

	cfg := di.ConfigFromEnv(envService)
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	if dsn := envService.Get("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, TracesSampleRate: 0.6}); err != nil {
			fmt.Fprintf(os.Stderr, "sentry disabled: %v\n", err)
		}
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return container, nil
}

func distinct(queries []string) int {
	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		seen[q] = struct{}{}
	}
	return len(seen)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("research"),
		kong.Description("Parallel multi-agent research: encyclopedia + web search + synthesis."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	sentry.Flush(2 * time.Second)
	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	ctx.FatalIfErrorf(err)
}

package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ input.ResearchPipeline = (*UseCase)(nil)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type Coordinator interface {
	Run(ctx context.Context, query string) (*entity.CombinedRecord, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, record entity.CombinedRecord) (entity.Report, error)
}

type Config struct {
	// BatchConcurrency bounds RunBatch. Zero means one goroutine per query.
	BatchConcurrency int
}

type UseCase struct {
	cfg         Config
	coordinator Coordinator
	synthesizer Synthesizer
	cache       output.ReportCache
	metrics     output.MetricsPort
	logger      output.LoggerPort
}

// New wires the pipeline. cache may be nil, in which case Cache is a pure
// pass-through.
func New(
	cfg Config,
	coordinator Coordinator,
	synthesizer Synthesizer,
	cache output.ReportCache,
	metrics output.MetricsPort,
	logger output.LoggerPort,
) *UseCase {
	return &UseCase{
		cfg:         cfg,
		coordinator: coordinator,
		synthesizer: synthesizer,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run researches a single query: both agents in parallel, then synthesis.
// Any failure aborts the run with a *entity.StageError.
func (uc *UseCase) Run(ctx context.Context, query string) (entity.Report, error) {
	log := uc.logger.WithFields(map[string]any{
		"runId": uuid.NewString(),
		"query": query,
	})
	start := time.Now()

	log.Info("Starting research")

	report, err := uc.run(ctx, query, log)
	duration := time.Since(start)
	if err != nil {
		log.Error("Research failed", "error", err, "duration", duration.String())
		uc.metrics.ObserveRun(statusError, duration)
		return "", err
	}

	uc.metrics.ObserveRun(statusSuccess, duration)
	log.Info("Research completed", "duration", duration.String())

	return uc.Cache(query, report), nil
}

func (uc *UseCase) run(ctx context.Context, query string, log output.LoggerPort) (entity.Report, error) {
	log.Debug("Running research and web agents in parallel")

	record, err := uc.coordinator.Run(ctx, query)
	if err != nil {
		var stageErr *entity.StageError
		if errors.As(err, &stageErr) {
			return "", err
		}
		return "", &entity.StageError{Query: query, Stage: entity.RoleResearch, Err: err}
	}

	log.Debug("Synthesizing findings")

	report, err := uc.synthesizer.Synthesize(ctx, entity.CombinedRecord{
		ResearchOutput: record.ResearchOutput,
		WebOutput:      record.WebOutput,
	})
	if err != nil {
		return "", &entity.StageError{Query: query, Stage: entity.RoleSynthesis, Err: err}
	}
	return report, nil
}

// RunBatch researches every distinct query independently. Failed queries are
// logged and left out of the result; they never cancel their siblings.
func (uc *UseCase) RunBatch(ctx context.Context, queries []string) map[string]entity.Report {
	var (
		g       errgroup.Group
		mu      sync.Mutex
		reports = make(map[string]entity.Report, len(queries))
		seen    = make(map[string]struct{}, len(queries))
	)
	if uc.cfg.BatchConcurrency > 0 {
		g.SetLimit(uc.cfg.BatchConcurrency)
	}

	uc.logger.Info("Starting batch", "queries", len(queries))

	for _, query := range queries {
		if _, dup := seen[query]; dup {
			continue
		}
		seen[query] = struct{}{}

		g.Go(func() error {
			report, err := uc.Run(ctx, query)
			if err != nil {
				uc.logger.Warn("Batch query dropped", "query", query, "error", err)
				return nil
			}
			mu.Lock()
			reports[query] = report
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	uc.logger.Info("Batch completed", "succeeded", len(reports), "distinct", len(seen))
	return reports
}

// Cache records (query, report) and returns report unchanged.
func (uc *UseCase) Cache(query string, report entity.Report) entity.Report {
	if uc.cache == nil {
		return report
	}
	return uc.cache.Put(query, report)
}

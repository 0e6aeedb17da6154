package input

import (
	"context"

	"research-agent/internal/domain/entity"
)

// ResearchPipeline is the entry point used by the CLI and the HTTP API.
type ResearchPipeline interface {
	Run(ctx context.Context, query string) (entity.Report, error)
	RunBatch(ctx context.Context, queries []string) map[string]entity.Report
}

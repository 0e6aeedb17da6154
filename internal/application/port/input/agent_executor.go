package input

import (
	"context"

	"research-agent/internal/domain/entity"
)

// AgentExecutor runs one tool-using agent against a query.
type AgentExecutor interface {
	Role() entity.AgentRole
	Run(ctx context.Context, query string) (*entity.AgentResult, error)
}

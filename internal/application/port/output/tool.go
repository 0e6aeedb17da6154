package output

import (
	"context"

	"research-agent/internal/domain/entity"
)

type ToolPort interface {
	Name() entity.ToolName
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, arguments string) (string, error)
}

type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name entity.ToolName) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
}

// SearchPort is a web search backend used by the web search tool.
type SearchPort interface {
	Search(ctx context.Context, query string) ([]entity.SearchResult, error)
}

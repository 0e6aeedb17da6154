package output

import (
	"time"

	"research-agent/internal/domain/entity"
)

type MetricsPort interface {
	ObserveRun(status string, duration time.Duration)
	ObserveAgent(role entity.AgentRole, iterations int, stopped bool)
	ObserveToolCall(tool entity.ToolName, err error)
}

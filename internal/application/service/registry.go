package service

import (
	"sort"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.ToolRegistry = (*ToolRegistryImpl)(nil)

// ToolRegistryImpl holds the tool set of one branch. Each branch owns its own
// registry so tool sets never leak between agents.
type ToolRegistryImpl struct {
	tools map[entity.ToolName]output.ToolPort
}

func NewToolRegistry(tools ...output.ToolPort) *ToolRegistryImpl {
	r := &ToolRegistryImpl{
		tools: make(map[entity.ToolName]output.ToolPort),
	}
	for _, tool := range tools {
		r.Register(tool)
	}
	return r
}

func (r *ToolRegistryImpl) Register(tool output.ToolPort) {
	r.tools[tool.Name()] = tool
}

func (r *ToolRegistryImpl) Get(name entity.ToolName) (output.ToolPort, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// All returns the tools ordered by name so prompts render deterministically.
func (r *ToolRegistryImpl) All() []output.ToolPort {
	result := make([]output.ToolPort, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

func (r *ToolRegistryImpl) Definitions() []entity.ToolDefinition {
	all := r.All()
	result := make([]entity.ToolDefinition, 0, len(all))
	for _, tool := range all {
		result = append(result, entity.ToolDefinition{
			Name:        tool.Name().String(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return result
}

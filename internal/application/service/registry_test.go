package service

import (
	"context"
	"testing"

	"research-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name entity.ToolName
}

func (s stubTool) Name() entity.ToolName { return s.name }
func (s stubTool) Description() string   { return "stub " + s.name.String() }
func (s stubTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (s stubTool) Execute(context.Context, string) (string, error) { return "", nil }

func TestToolRegistry_DefinitionsSortedByName(t *testing.T) {
	registry := NewToolRegistry(stubTool{name: entity.ToolWikipedia}, stubTool{name: entity.ToolWebSearch})

	defs := registry.Definitions()

	require.Len(t, defs, 2)
	assert.Equal(t, "web_search", defs[0].Name)
	assert.Equal(t, "wikipedia", defs[1].Name)
	assert.Equal(t, "stub wikipedia", defs[1].Description)
}

func TestToolRegistry_GetUnknown(t *testing.T) {
	registry := NewToolRegistry(stubTool{name: entity.ToolWikipedia})

	_, ok := registry.Get(entity.ToolWebSearch)
	assert.False(t, ok)

	tool, ok := registry.Get(entity.ToolWikipedia)
	require.True(t, ok)
	assert.Equal(t, entity.ToolWikipedia, tool.Name())
}

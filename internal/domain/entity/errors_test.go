package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageErrorKeepsAgentExhaustedChain(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := fmt.Errorf("pipeline: %w", &StageError{
		Query: "fusion energy research",
		Stage: RoleResearch,
		Err:   &AgentExhaustedError{Agent: RoleResearch, Iteration: 1, Err: cause},
	})

	assert.ErrorIs(t, err, ErrAgentExhausted)
	assert.ErrorIs(t, err, cause)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, RoleResearch, stageErr.Stage)
	assert.Contains(t, err.Error(), "fusion energy research")

	var exhausted *AgentExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Iteration)
}

func TestToolErrorMatchesSentinel(t *testing.T) {
	err := &ToolError{Tool: ToolWikipedia, Err: errors.New("503")}

	assert.ErrorIs(t, err, ErrToolFailed)
	assert.NotErrorIs(t, err, ErrAgentExhausted)
	assert.Equal(t, "tool wikipedia: 503", err.Error())
}

func TestParseErrorMatchesSentinel(t *testing.T) {
	err := &ParseError{Reason: "missing Action Input", Raw: "Action: wikipedia"}

	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "missing Action Input")
}

func TestStepKindString(t *testing.T) {
	assert.Equal(t, "tool_call", ToolCallStep("", ToolCall{Name: "wikipedia"}).Kind.String())
	assert.Equal(t, "final_answer", FinalAnswerStep("", "42").Kind.String())
	assert.Equal(t, "parse_error", ParseErrorStep("", ErrParse).Kind.String())
}

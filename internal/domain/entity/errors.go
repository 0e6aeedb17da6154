package entity

import (
	"errors"
	"fmt"
)

var (
	ErrToolFailed     = errors.New("tool failed")
	ErrParse          = errors.New("could not parse model output")
	ErrAgentExhausted = errors.New("agent model call failed")
)

// ToolError is returned by a tool adapter when its source fails. It is fatal
// to the branch that invoked the tool.
type ToolError struct {
	Tool ToolName
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

func (e *ToolError) Is(target error) bool { return target == ErrToolFailed }

// ParseError describes model output that is neither a tool call nor an answer.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s", ErrParse, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// AgentExhaustedError reports that the model call behind an agent failed
// unrecoverably. Hitting the iteration limit is not an AgentExhaustedError.
type AgentExhaustedError struct {
	Agent     AgentRole
	Iteration int
	Err       error
}

func (e *AgentExhaustedError) Error() string {
	return fmt.Sprintf("%s agent exhausted at iteration %d: %v", e.Agent, e.Iteration, e.Err)
}

func (e *AgentExhaustedError) Unwrap() error { return e.Err }

func (e *AgentExhaustedError) Is(target error) bool { return target == ErrAgentExhausted }

// StageError identifies the query and the pipeline stage that failed.
type StageError struct {
	Query string
	Stage AgentRole
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("query %q failed in %s stage: %v", e.Query, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

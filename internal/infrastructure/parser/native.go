package parser

import (
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.ParserPort = Native{}

// Native reads function-calling replies: tool calls come as structured
// ToolCalls, any other non-empty content is the final answer.
type Native struct{}

func (Native) NativeTools() bool { return true }

func (Native) Parse(msg entity.Message) entity.Step {
	content := strings.TrimSpace(msg.Content)

	if len(msg.ToolCalls) > 0 {
		calls := make([]entity.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			if strings.TrimSpace(tc.Name) == "" {
				return entity.ParseErrorStep(content, &entity.ParseError{Reason: "tool call without a name", Raw: tc.Arguments})
			}
			calls = append(calls, tc)
		}
		return entity.ToolCallStep(content, calls...)
	}

	if content == "" {
		return entity.ParseErrorStep("", &entity.ParseError{Reason: "empty response"})
	}

	return entity.FinalAnswerStep("", content)
}

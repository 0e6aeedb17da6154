package output

import "research-agent/internal/domain/entity"

// ParserPort turns one model reply into a reasoning step.
type ParserPort interface {
	Parse(msg entity.Message) entity.Step
	// NativeTools reports whether tool definitions are sent to the model as
	// function schemas rather than described in the prompt text.
	NativeTools() bool
}

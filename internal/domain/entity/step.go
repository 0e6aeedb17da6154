package entity

type StepKind int

const (
	StepParseError StepKind = iota
	StepToolCall
	StepFinalAnswer
)

func (k StepKind) String() string {
	switch k {
	case StepToolCall:
		return "tool_call"
	case StepFinalAnswer:
		return "final_answer"
	default:
		return "parse_error"
	}
}

// Step is the parsed outcome of one model turn. Exactly one of Answer,
// ToolCalls or Err is meaningful, selected by Kind.
type Step struct {
	Kind      StepKind
	Thought   string
	Answer    string
	ToolCalls []ToolCall
	Err       error
}

func FinalAnswerStep(thought, answer string) Step {
	return Step{Kind: StepFinalAnswer, Thought: thought, Answer: answer}
}

func ToolCallStep(thought string, calls ...ToolCall) Step {
	return Step{Kind: StepToolCall, Thought: thought, ToolCalls: calls}
}

func ParseErrorStep(thought string, err error) Step {
	return Step{Kind: StepParseError, Thought: thought, Err: err}
}

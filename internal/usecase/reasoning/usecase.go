package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/prompts"
	"research-agent/internal/infrastructure/textclean"
)

var _ input.AgentExecutor = (*UseCase)(nil)

const (
	DefaultMaxIterations = 3
	maxObservationLen    = 20000

	// StoppedOutput is returned when the budget runs out before the model
	// produced anything usable.
	StoppedOutput = "Agent stopped due to iteration limit."
)

// observationStop keeps text-protocol models from writing their own
// observations.
var observationStop = []string{"\nObservation:"}

// BranchConfig describes one configured agent: its role prompt, the reminder
// turn appended to the input, sampling temperature and iteration budget.
type BranchConfig struct {
	Role                entity.AgentRole
	SystemPrompt        string
	InputTemplate       string
	Reminder            string
	Temperature         float32
	MaxIterations       int
	HandleParsingErrors bool
}

type UseCase struct {
	cfg          BranchConfig
	llm          output.LLMPort
	tools        output.ToolRegistry
	parser       output.ParserPort
	metrics      output.MetricsPort
	logger       output.LoggerPort
	systemPrompt string
}

func New(
	cfg BranchConfig,
	llm output.LLMPort,
	tools output.ToolRegistry,
	parser output.ParserPort,
	metrics output.MetricsPort,
	logger output.LoggerPort,
) (*UseCase, error) {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.InputTemplate == "" {
		cfg.InputTemplate = prompts.InputTemplate
	}

	systemPrompt, err := prompts.GenerateSystemPrompt(cfg.SystemPrompt, tools.Definitions(), !parser.NativeTools())
	if err != nil {
		return nil, fmt.Errorf("render %s system prompt: %w", cfg.Role, err)
	}

	return &UseCase{
		cfg:          cfg,
		llm:          llm,
		tools:        tools,
		parser:       parser,
		metrics:      metrics,
		logger:       logger.WithField("agent", cfg.Role.String()),
		systemPrompt: systemPrompt,
	}, nil
}

func (uc *UseCase) Role() entity.AgentRole {
	return uc.cfg.Role
}

// Run drives the Thought/Action/Observation loop until the model answers or
// the iteration budget is spent. Running out of budget is not an error: the
// result is marked Stopped and carries the best partial answer.
func (uc *UseCase) Run(ctx context.Context, query string) (*entity.AgentResult, error) {
	userInput, err := prompts.GenerateInput(uc.cfg.InputTemplate, query, uc.cfg.Reminder)
	if err != nil {
		return nil, fmt.Errorf("render %s input: %w", uc.cfg.Role, err)
	}

	messages := []entity.Message{
		entity.SystemMessage(uc.systemPrompt),
		entity.UserMessage(userInput),
	}

	var (
		toolDefs []entity.ToolDefinition
		stop     []string
	)
	if uc.parser.NativeTools() {
		toolDefs = uc.tools.Definitions()
	} else {
		stop = observationStop
	}

	var lastThought, lastObservation string

	for iteration := 1; iteration <= uc.cfg.MaxIterations; iteration++ {
		uc.logger.Debug("Starting iteration", "iteration", iteration)

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: uc.cfg.Temperature,
			Stop:        stop,
		})
		if err != nil {
			uc.logger.Error("LLM request failed", "iteration", iteration, "error", err)
			return nil, &entity.AgentExhaustedError{Agent: uc.cfg.Role, Iteration: iteration, Err: err}
		}

		step := uc.parser.Parse(resp.Message)
		if thought := strings.TrimSpace(step.Thought); thought != "" {
			lastThought = thought
		}

		if step.Kind == entity.StepToolCall {
			if unknown := uc.unknownTool(step.ToolCalls); unknown != "" {
				step = entity.ParseErrorStep(step.Thought, &entity.ParseError{
					Reason: fmt.Sprintf("unknown tool %q, available tools: %s", unknown, uc.toolNames()),
					Raw:    resp.Message.Content,
				})
			}
		}

		switch step.Kind {
		case entity.StepFinalAnswer:
			uc.logger.Info("Agent answered", "iteration", iteration)
			uc.metrics.ObserveAgent(uc.cfg.Role, iteration, false)
			return &entity.AgentResult{Output: step.Answer, Iterations: iteration}, nil

		case entity.StepToolCall:
			messages = append(messages, resp.Message)
			for _, tc := range step.ToolCalls {
				observation, err := uc.executeTool(ctx, tc)
				if err != nil {
					return nil, err
				}
				lastObservation = observation
				messages = append(messages, observationMessage(tc, observation))
			}

		default:
			uc.logger.Warn("Unparseable model output", "iteration", iteration, "error", step.Err)
			if !uc.cfg.HandleParsingErrors {
				return nil, step.Err
			}
			messages = append(messages, uc.correction(resp.Message, step.Err)...)
		}
	}

	best := lastThought
	if best == "" {
		best = lastObservation
	}
	if best == "" {
		best = StoppedOutput
	}

	uc.logger.Warn("Iteration limit reached", "maxIterations", uc.cfg.MaxIterations)
	uc.metrics.ObserveAgent(uc.cfg.Role, uc.cfg.MaxIterations, true)

	return &entity.AgentResult{
		Output:     best,
		Iterations: uc.cfg.MaxIterations,
		Stopped:    true,
	}, nil
}

func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) (string, error) {
	tool, _ := uc.tools.Get(entity.ToolName(tc.Name))

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		var toolErr *entity.ToolError
		if !errors.As(err, &toolErr) {
			err = &entity.ToolError{Tool: tool.Name(), Err: err}
		}
		return "", err
	}

	result = textclean.Truncate(result, maxObservationLen)

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	return result, nil
}

func (uc *UseCase) unknownTool(calls []entity.ToolCall) string {
	for _, tc := range calls {
		if _, ok := uc.tools.Get(entity.ToolName(tc.Name)); !ok {
			return tc.Name
		}
	}
	return ""
}

func (uc *UseCase) toolNames() string {
	tools := uc.tools.All()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name().String())
	}
	return strings.Join(names, ", ")
}

// correction echoes the rejected reply without tool calls, so no call is left
// unanswered, and asks the model to follow the format.
func (uc *UseCase) correction(reply entity.Message, parseErr error) []entity.Message {
	var msgs []entity.Message
	if content := strings.TrimSpace(reply.Content); content != "" {
		msgs = append(msgs, entity.Message{Role: entity.RoleAssistant, Content: content})
	}

	hint := "Call one of the available tools or reply with your final answer."
	if !uc.parser.NativeTools() {
		hint = "Reply with \"Action:\" and \"Action Input:\" to use a tool, or with \"Answer:\" to finish."
	}

	return append(msgs, entity.UserMessage(fmt.Sprintf("Observation: Invalid format (%v). %s", parseErr, hint)))
}

func observationMessage(tc entity.ToolCall, observation string) entity.Message {
	if tc.ID == "" {
		return entity.UserMessage("Observation: " + observation)
	}
	return entity.Message{
		Role:       entity.RoleTool,
		ToolCallID: tc.ID,
		Name:       tc.Name,
		Content:    observation,
	}
}

package parser

import (
	"regexp"
	"strings"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.ParserPort = ReAct{}

var (
	thoughtRe     = regexp.MustCompile(`(?is)^\s*thought\s*:\s*`)
	actionRe      = regexp.MustCompile(`(?im)^\s*action\s*:[ \t]*(.*)$`)
	actionInputRe = regexp.MustCompile(`(?im)^\s*action\s*input\s*:`)
	answerRe      = regexp.MustCompile(`(?im)^\s*(?:final\s+)?answer\s*:`)
	observationRe = regexp.MustCompile(`(?im)^\s*observation\s*:`)
	fenceRe       = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// ReAct parses the plain-text Thought / Action / Action Input / Answer format
// for models without native tool calling.
type ReAct struct{}

func (ReAct) NativeTools() bool { return false }

func (ReAct) Parse(msg entity.Message) entity.Step {
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return entity.ParseErrorStep("", &entity.ParseError{Reason: "empty response"})
	}

	actionLoc := actionRe.FindStringSubmatchIndex(text)
	answerLoc := answerRe.FindStringIndex(text)

	// Whichever marker comes first wins; a model that keeps writing after
	// its Action has hallucinated the rest.
	if answerLoc != nil && (actionLoc == nil || answerLoc[0] < actionLoc[0]) {
		answer := strings.TrimSpace(text[answerLoc[1]:])
		thought := extractThought(text[:answerLoc[0]])
		if answer == "" {
			return entity.ParseErrorStep(thought, &entity.ParseError{Reason: "empty Answer", Raw: text})
		}
		return entity.FinalAnswerStep(thought, answer)
	}

	if actionLoc != nil {
		thought := extractThought(text[:actionLoc[0]])
		name := strings.TrimSpace(strings.Trim(text[actionLoc[2]:actionLoc[3]], "`\"'"))
		if name == "" {
			return entity.ParseErrorStep(thought, &entity.ParseError{Reason: "empty Action", Raw: text})
		}

		rest := text[actionLoc[1]:]
		inputLoc := actionInputRe.FindStringIndex(rest)
		if inputLoc == nil {
			return entity.ParseErrorStep(thought, &entity.ParseError{Reason: "missing Action Input after Action", Raw: text})
		}

		input := rest[inputLoc[1]:]
		if obs := observationRe.FindStringIndex(input); obs != nil {
			input = input[:obs[0]]
		}

		return entity.ToolCallStep(thought, entity.ToolCall{
			Name:      name,
			Arguments: cleanInput(input),
		})
	}

	return entity.ParseErrorStep(extractThought(text), &entity.ParseError{Reason: "no Action or Answer found", Raw: text})
}

func extractThought(text string) string {
	return strings.TrimSpace(thoughtRe.ReplaceAllString(text, ""))
}

func cleanInput(input string) string {
	input = strings.TrimSpace(input)
	if m := fenceRe.FindStringSubmatch(input); m != nil {
		input = m[1]
	}
	return strings.TrimSpace(input)
}

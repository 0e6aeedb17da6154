package prompts

import (
	"bytes"
	"strings"
	"text/template"

	"research-agent/internal/domain/entity"
)

type ToolInfo struct {
	Name        string
	Description string
}

type reactData struct {
	Tools     []ToolInfo
	ToolNames string
}

type inputData struct {
	Input    string
	Reminder string
}

type reportData struct {
	ResearchOutput string
	WebOutput      string
	Analysis       string
}

// GenerateSystemPrompt returns the role prompt, extended with the tool list and
// the Thought/Action/Answer format when the agent speaks the text protocol.
func GenerateSystemPrompt(rolePrompt string, tools []entity.ToolDefinition, textProtocol bool) (string, error) {
	rolePrompt = strings.TrimSpace(rolePrompt)
	if !textProtocol || len(tools) == 0 {
		return rolePrompt, nil
	}

	data := reactData{Tools: make([]ToolInfo, 0, len(tools))}
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		data.Tools = append(data.Tools, ToolInfo{Name: t.Name, Description: t.Description})
		names = append(names, t.Name)
	}
	data.ToolNames = strings.Join(names, ", ")

	format, err := render("react", ReActTemplate, data)
	if err != nil {
		return "", err
	}
	return rolePrompt + "\n" + format, nil
}

// GenerateInput fills the {input} slot of a role template.
func GenerateInput(tmpl, query, reminder string) (string, error) {
	out, err := render("input", tmpl, inputData{Input: query, Reminder: reminder})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func GenerateSynthesisInput(tmpl string, record entity.CombinedRecord) (string, error) {
	return render("synthesis_input", tmpl, record)
}

// GenerateReport places both research inputs and the synthesized analysis into
// their labeled sections.
func GenerateReport(tmpl string, record entity.CombinedRecord, analysis string) (string, error) {
	out, err := render("report", tmpl, reportData{
		ResearchOutput: strings.TrimSpace(record.ResearchOutput),
		WebOutput:      strings.TrimSpace(record.WebOutput),
		Analysis:       strings.TrimSpace(analysis),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

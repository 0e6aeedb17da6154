package prompts

import (
	_ "embed"
)

//go:embed research.txt
var ResearchPrompt string

//go:embed web.txt
var WebPrompt string

//go:embed synthesis.txt
var SynthesisPrompt string

//go:embed input.tmpl
var InputTemplate string

//go:embed synthesis_input.tmpl
var SynthesisInputTemplate string

//go:embed react.tmpl
var ReActTemplate string

//go:embed report.tmpl
var ReportTemplate string

const (
	ResearchReminder = "Remember to cite your sources and provide comprehensive information."
	WebReminder      = "Focus on recent developments and current trends."
)

package entity

// AgentRole names a configured agent inside the research pipeline.
type AgentRole string

const (
	RoleResearch  AgentRole = "research"
	RoleWeb       AgentRole = "web"
	RoleSynthesis AgentRole = "synthesis"
)

func (r AgentRole) String() string {
	return string(r)
}

// AgentResult is the terminal answer of a reasoning run. Stopped is set when
// the run hit its iteration budget and Output holds a best-effort answer.
type AgentResult struct {
	Output     string
	Iterations int
	Stopped    bool
}

// CombinedRecord carries both branch outputs for one query into synthesis.
type CombinedRecord struct {
	ResearchOutput string
	WebOutput      string
}

// Report is the final synthesized answer returned to callers.
type Report = string

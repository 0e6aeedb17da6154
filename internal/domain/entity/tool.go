package entity

type ToolName string

const (
	ToolWikipedia ToolName = "wikipedia"
	ToolWebSearch ToolName = "web_search"
)

func (t ToolName) String() string {
	return string(t)
}

// SearchResult is a single hit returned by a web search provider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}
